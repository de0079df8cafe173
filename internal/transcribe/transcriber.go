// Package transcribe turns an audio sample buffer into a live, ordered stream
// of time-aligned paragraphs. A background goroutine drives the blocking
// whisper inference call; its segment callbacks are recombined into atoms,
// assembled into paragraphs and handed to the consumer over a channel, so the
// caller observes results incrementally and in publication order.
package transcribe

import (
	"context"
	"log/slog"
	"strings"

	"github.com/moeffju/transcribee/internal/config"
	"github.com/moeffju/transcribee/internal/document"
	"github.com/moeffju/transcribee/internal/engine"
	"github.com/moeffju/transcribee/internal/telemetry"
)

// Options configure a single transcription run.
type Options struct {
	// Model selects the model variant; empty falls back to the configured one.
	Model string
	// Language forces a language code for every paragraph. Empty or "auto"
	// enables per-call detection.
	Language string
	// Progress, when set, receives coarse progress percentages. It runs on the
	// worker goroutine and must not block.
	Progress func(percent int)
}

// Transcriber runs transcriptions against a model loader.
type Transcriber struct {
	cfg     config.Config
	loader  ContextLoader
	log     *slog.Logger
	metrics *telemetry.Recorder
}

// ContextLoader opens an inference context for a model variant. Satisfied by
// engine.Loader; tests inject scripted contexts.
type ContextLoader interface {
	LoadContext(ctx context.Context, variant string) (engine.Context, string, error)
}

// New returns a Transcriber bound to the given loader.
func New(cfg config.Config, loader ContextLoader, logger *slog.Logger, metrics *telemetry.Recorder) *Transcriber {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = telemetry.NewRecorder(logger)
	}
	return &Transcriber{
		cfg:     cfg,
		loader:  loader,
		log:     logger.With("component", "transcribe.Transcriber"),
		metrics: metrics,
	}
}

// Transcribe resolves the model, then starts one blocking full-buffer
// inference call on a background goroutine and returns a Stream of paragraphs
// in publication order. Model acquisition failures surface here, before any
// inference starts; engine failures surface through Stream.Err. Cancelling
// ctx stops delivery but cannot interrupt an in-flight inference call — the
// worker goroutine runs the engine call to completion.
func (t *Transcriber) Transcribe(ctx context.Context, samples []float32, opts Options) (*Stream, error) {
	ectx, modelPath, err := t.loader.LoadContext(ctx, opts.Model)
	if err != nil {
		return nil, err
	}
	if modelPath != "" {
		t.log.Debug("resolved model path", "path", modelPath)
	}

	variant := opts.Model
	if strings.TrimSpace(variant) == "" {
		variant = t.cfg.ModelVariant
	}
	run := t.metrics.StartRun(variant, opts.Language)

	results := make(chan document.Paragraph, resultBuffer)
	done := make(chan error, 1)
	go t.produce(ctx, ectx, samples, opts, run, results, done)

	return newStream(ctx, results, done), nil
}

// TranscribeClean is Transcribe with the post-processing pipeline applied:
// split-word recombination, then leading-whitespace trimming.
func (t *Transcriber) TranscribeClean(ctx context.Context, samples []float32, opts Options) (*Stream, error) {
	s, err := t.Transcribe(ctx, samples, opts)
	if err != nil {
		return nil, err
	}
	return s.transform(ctx, cleanStages...), nil
}

// produce owns the engine context and the recombiner state for one run. The
// completion signal (the engine call's error value on the done channel) is
// sent only after every paragraph has been published, which the consumer
// relies on when draining.
func (t *Transcriber) produce(ctx context.Context, ectx engine.Context, samples []float32, opts Options, run *telemetry.RunMetrics, results chan<- document.Paragraph, done chan<- error) {
	defer ectx.Close()

	params := engine.Params{
		Language:        opts.Language,
		Threads:         t.cfg.ThreadCount(),
		TokenTimestamps: true,
		OnProgress:      opts.Progress,
		OnNewSegment: func(n int) {
			t.publishSegments(ctx, ectx, opts.Language, run, results, n)
		},
	}
	if t.cfg.MaxSegmentLength != nil {
		params.MaxSegmentLength = *t.cfg.MaxSegmentLength
	}
	if t.cfg.NoContext != nil {
		params.NoContext = *t.cfg.NoContext
	}

	err := ectx.Run(params, samples)
	run.Finish(err)
	done <- err
}

// publishSegments builds one paragraph per newly finalised segment and
// publishes it. Invoked from the engine's segment callback.
func (t *Transcriber) publishSegments(ctx context.Context, ectx engine.Context, langCode string, run *telemetry.RunMetrics, results chan<- document.Paragraph, nNew int) {
	lang := langCode
	if lang == "" || lang == "auto" {
		lang = ectx.DetectedLanguage()
	}

	total := ectx.Segments()
	for segment := total - nNew; segment < total; segment++ {
		var rec tokenRecombiner
		var atoms []document.Atom

		for i := 0; i < ectx.Tokens(segment); i++ {
			tok := ectx.Token(segment, i)
			if ectx.IsSpecial(tok.ID) {
				continue
			}
			if atom, ok := rec.push(tok); ok {
				atoms = append(atoms, atom)
			}
		}
		if rec.pending() > 0 {
			// Best-effort reconstruction: the leftover bytes cannot become
			// valid text within this segment, so they are dropped.
			run.RecordDroppedTail(segment, rec.pending())
		}

		paragraph := document.Paragraph{
			Speaker:  document.UnknownSpeaker,
			Lang:     lang,
			Children: atoms,
		}
		select {
		case results <- paragraph:
			run.RecordParagraph(segment, len(atoms))
		case <-ctx.Done():
			// The consumer has gone away; stop publishing. The inference call
			// itself still runs to completion.
			return
		}
	}
}
