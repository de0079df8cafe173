// Package telemetry tracks worker-level counters for transcription runs,
// including the non-fatal degradation events (dropped decode tails, empty
// paragraphs) that would otherwise stay invisible.
package telemetry

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
)

// Recorder tracks cumulative transcription telemetry.
type Recorder struct {
	log *slog.Logger

	totalRuns            atomic.Uint64
	activeRuns           atomic.Int64
	totalSegments        atomic.Uint64
	totalParagraphs      atomic.Uint64
	totalAtoms           atomic.Uint64
	totalDroppedTails    atomic.Uint64
	totalEmptyParagraphs atomic.Uint64
}

// Snapshot captures cumulative metrics recorded so far.
type Snapshot struct {
	TotalRuns            uint64
	ActiveRuns           int64
	TotalSegments        uint64
	TotalParagraphs      uint64
	TotalAtoms           uint64
	TotalDroppedTails    uint64
	TotalEmptyParagraphs uint64
}

// NewRecorder constructs a Recorder using the provided logger.
func NewRecorder(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		log: logger.With("component", "telemetry.Recorder"),
	}
}

// Snapshot returns an immutable view of the recorder totals.
func (r *Recorder) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	return Snapshot{
		TotalRuns:            r.totalRuns.Load(),
		ActiveRuns:           r.activeRuns.Load(),
		TotalSegments:        r.totalSegments.Load(),
		TotalParagraphs:      r.totalParagraphs.Load(),
		TotalAtoms:           r.totalAtoms.Load(),
		TotalDroppedTails:    r.totalDroppedTails.Load(),
		TotalEmptyParagraphs: r.totalEmptyParagraphs.Load(),
	}
}

// RunMetrics accumulates statistics for a single transcription run.
type RunMetrics struct {
	recorder *Recorder
	log      *slog.Logger

	runID        string
	modelVariant string
	language     string

	started         time.Time
	segments        int
	paragraphs      int
	atoms           int
	droppedTails    int
	droppedBytes    int
	emptyParagraphs int
	closed          atomic.Bool
}

// StartRun initialises a RunMetrics instance bound to the recorder.
func (r *Recorder) StartRun(modelVariant, language string) *RunMetrics {
	if r == nil {
		return nil
	}

	runID := xid.New().String()
	r.totalRuns.Add(1)
	r.activeRuns.Add(1)

	return &RunMetrics{
		recorder: r,
		log: r.log.With(
			"run_id", runID,
			"model_variant", modelVariant,
			"language", language,
		),
		runID:        runID,
		modelVariant: modelVariant,
		language:     language,
		started:      time.Now(),
	}
}

// RunID returns the generated identifier for this run.
func (m *RunMetrics) RunID() string {
	if m == nil {
		return ""
	}
	return m.runID
}

// RecordParagraph updates counters for one finalised segment published as a
// paragraph.
func (m *RunMetrics) RecordParagraph(segment, atoms int) {
	if m == nil {
		return
	}
	m.segments++
	m.paragraphs++
	m.atoms += atoms
	if atoms == 0 {
		m.emptyParagraphs++
		m.recorder.totalEmptyParagraphs.Add(1)
	}
	m.recorder.totalSegments.Add(1)
	m.recorder.totalParagraphs.Add(1)
	m.recorder.totalAtoms.Add(uint64(atoms))

	m.log.Debug("paragraph published",
		"segment", segment,
		"atoms", atoms,
	)
}

// RecordDroppedTail counts an undecodable byte tail left over at segment end.
func (m *RunMetrics) RecordDroppedTail(segment, bytes int) {
	if m == nil {
		return
	}
	m.droppedTails++
	m.droppedBytes += bytes
	m.recorder.totalDroppedTails.Add(1)

	m.log.Info("dropping undecodable token tail at segment end",
		"segment", segment,
		"bytes", bytes,
	)
}

// Finish logs a summary and updates active run counters.
func (m *RunMetrics) Finish(err error) {
	if m == nil {
		return
	}
	if !m.closed.CompareAndSwap(false, true) {
		return
	}

	defer m.recorder.activeRuns.Add(-1)

	duration := time.Since(m.started)
	args := []any{
		"duration_ms", duration.Milliseconds(),
		"segments", m.segments,
		"paragraphs", m.paragraphs,
		"atoms", m.atoms,
		"dropped_tails", m.droppedTails,
		"dropped_tail_bytes", m.droppedBytes,
		"empty_paragraphs", m.emptyParagraphs,
	}

	if err != nil {
		m.log.Error("run completed with error", append(args, "error", err)...)
		return
	}

	m.log.Info("run completed", args...)
}
