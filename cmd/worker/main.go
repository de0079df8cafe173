package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/moeffju/transcribee/internal/config"
	"github.com/moeffju/transcribee/internal/document"
	"github.com/moeffju/transcribee/internal/engine"
	"github.com/moeffju/transcribee/internal/models"
	"github.com/moeffju/transcribee/internal/telemetry"
	"github.com/moeffju/transcribee/internal/transcribe"
	"github.com/moeffju/transcribee/internal/workerinfo"
)

// sampleRate is the input rate whisper models are trained on.
const sampleRate = 16000

func main() {
	var (
		model    = flag.String("model", "", "model variant, overrides the configured one")
		language = flag.String("language", "", "language code, overrides the configured one ('auto' detects)")
		raw      = flag.Bool("raw", false, "skip the post-processing pipeline")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <audio.wav>\n", workerinfo.Info.BinaryName)
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Loader{}.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("starting worker",
		"worker", workerinfo.Info.Slug,
		"model_variant", cfg.ModelVariant,
		"language", cfg.Language,
		"data_dir", cfg.DataDir,
	)

	recorder := telemetry.NewRecorder(logger)

	manager, err := models.NewManager(cfg.DataDir, logger)
	if err != nil {
		logger.Error("failed to initialise model manager", "error", err)
		os.Exit(1)
	}

	samples, err := readWAV(flag.Arg(0))
	if err != nil {
		logger.Error("failed to read audio", "path", flag.Arg(0), "error", err)
		os.Exit(1)
	}
	logger.Info("audio loaded", "path", flag.Arg(0), "samples", len(samples))

	transcriber := transcribe.New(cfg, engine.NewLoader(cfg, manager, logger), logger, recorder)

	opts := transcribe.Options{
		Model:    *model,
		Language: resolveLanguage(*language, cfg.Language),
		Progress: func(percent int) {
			fmt.Fprintf(os.Stderr, "\rtranscribing... %3d%%", percent)
			if percent >= 100 {
				fmt.Fprintln(os.Stderr)
			}
		},
	}

	var stream *transcribe.Stream
	if *raw {
		stream, err = transcriber.Transcribe(ctx, samples, opts)
	} else {
		stream, err = transcriber.TranscribeClean(ctx, samples, opts)
	}
	if err != nil {
		logger.Error("failed to start transcription", "error", err)
		os.Exit(1)
	}

	if err := emit(os.Stdout, stream, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("transcription interrupted")
		} else {
			logger.Error("transcription failed", "error", err)
		}
		os.Exit(1)
	}

	snapshot := recorder.Snapshot()
	logger.Info("worker finished",
		"paragraphs", snapshot.TotalParagraphs,
		"atoms", snapshot.TotalAtoms,
		"dropped_tails", snapshot.TotalDroppedTails,
		"empty_paragraphs", snapshot.TotalEmptyParagraphs,
	)
}

// emit writes a JSON-lines transcript: a header record identifying the worker
// and run, then one record per paragraph as it arrives.
func emit(out *os.File, stream *transcribe.Stream, opts transcribe.Options) error {
	enc := json.NewEncoder(out)

	header := struct {
		Type     string            `json:"type"`
		Worker   string            `json:"worker"`
		Metadata map[string]string `json:"metadata"`
	}{
		Type:     "header",
		Worker:   workerinfo.Info.Slug,
		Metadata: workerinfo.RunMetadata(opts.Model, opts.Language),
	}
	if err := enc.Encode(header); err != nil {
		return err
	}

	for paragraph := range stream.Paragraphs() {
		record := struct {
			Type string `json:"type"`
			document.Paragraph
		}{Type: "paragraph", Paragraph: paragraph}
		if err := enc.Encode(record); err != nil {
			return err
		}
	}
	return stream.Err()
}

// readWAV decodes a 16 kHz mono WAV file into normalised float32 samples.
func readWAV(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file")
	}
	if dec.SampleRate != sampleRate {
		return nil, fmt.Errorf("expected %d Hz audio, got %d Hz", sampleRate, dec.SampleRate)
	}
	if dec.NumChans != 1 {
		return nil, fmt.Errorf("expected mono audio, got %d channels", dec.NumChans)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode PCM: %w", err)
	}
	return normalise(buf, int(dec.BitDepth)), nil
}

// normalise scales integer PCM samples into [-1, 1].
func normalise(buf *audio.IntBuffer, bitDepth int) []float32 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float32(int64(1) << (bitDepth - 1))
	out := make([]float32, len(buf.Data))
	for i, s := range buf.Data {
		out[i] = float32(s) / scale
	}
	return out
}

func resolveLanguage(flagValue, configured string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	return configured
}

func newLogger(level string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler)
}

func parseLevel(value string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
