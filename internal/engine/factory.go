package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/moeffju/transcribee/internal/config"
	"github.com/moeffju/transcribee/internal/models"
)

// ErrNativeUnavailable indicates the native whisper backend is not compiled in.
var ErrNativeUnavailable = errors.New("engine: native whisper backend unavailable")

// Loader resolves model artefacts through the model manager and opens one
// inference context per transcription run.
type Loader struct {
	cfg     config.Config
	manager *models.Manager
	log     *slog.Logger
}

// NewLoader returns a Loader bound to the given configuration and manager.
func NewLoader(cfg config.Config, manager *models.Manager, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		cfg:     cfg,
		manager: manager,
		log:     logger.With("component", "engine.loader"),
	}
}

// LoadContext ensures the model artefact for variant is present locally and
// opens a fresh context for it. Model acquisition failures are fatal and
// surface here, before any inference starts. An empty variant falls back to
// the configured one.
func (l *Loader) LoadContext(ctx context.Context, variant string) (Context, string, error) {
	if strings.TrimSpace(variant) == "" {
		variant = l.cfg.ModelVariant
	}

	if l.cfg.UseStubEngine {
		l.log.Warn("stub engine forced by configuration")
		return NewPlaceholderContext(variant), "", nil
	}

	if l.manager == nil {
		return nil, "", errors.New("engine: model manager unavailable")
	}

	manifest, err := models.DefaultManifest()
	if err != nil {
		return nil, "", err
	}
	modelPath, err := l.manager.EnsureVariant(ctx, variant, models.EnsureOptions{
		Manifest: manifest,
		Override: l.cfg.ModelPath,
	})
	if err != nil {
		return nil, "", fmt.Errorf("engine: ensure model %q: %w", variant, err)
	}

	if !NativeAvailable() {
		l.log.Warn("native backend disabled at build time; using stub context", "model_path", modelPath)
		return NewPlaceholderContext(variant), modelPath, nil
	}

	native, err := NewNativeContext(modelPath)
	if err != nil {
		return nil, "", err
	}
	l.log.Info("native context ready", "model_path", modelPath)
	return native, modelPath, nil
}
