// Package models acquires and caches whisper model artefacts in the worker's
// data directory.
package models

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const modelsSubdir = "models"

// Manager resolves model variants to local files, downloading them on first
// use.
type Manager struct {
	baseDir string
	log     *slog.Logger
	client  *http.Client
}

// EnsureOptions configures EnsureVariant.
type EnsureOptions struct {
	// Manifest to resolve the variant against; the embedded manifest is used
	// when empty.
	Manifest Manifest
	// Override points at an existing model file and bypasses download.
	Override string
}

// NewManager prepares the models directory under baseDir.
func NewManager(baseDir string, logger *slog.Logger) (*Manager, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, errors.New("models: base directory required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	dir := filepath.Join(baseDir, modelsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("models: create %s: %w", dir, err)
	}
	return &Manager{
		baseDir: baseDir,
		log:     logger.With("component", "models.Manager"),
		client:  &http.Client{Timeout: 30 * time.Minute},
	}, nil
}

// ModelsDir returns the directory model files are stored in.
func (m *Manager) ModelsDir() string {
	return filepath.Join(m.baseDir, modelsSubdir)
}

// Resolve returns the local path for a variant without downloading. An
// override path wins when it exists.
func (m *Manager) Resolve(variant, override string) (string, error) {
	if strings.TrimSpace(override) != "" {
		if _, err := os.Stat(override); err != nil {
			return "", fmt.Errorf("models: override path %s: %w", override, err)
		}
		return override, nil
	}
	manifest, err := DefaultManifest()
	if err != nil {
		return "", err
	}
	v, err := manifest.Variant(variant)
	if err != nil {
		return "", err
	}
	path := filepath.Join(m.ModelsDir(), v.File)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("models: variant %q not present locally: %w", variant, err)
	}
	return path, nil
}

// EnsureVariant returns the local path for a variant, downloading and caching
// the artefact on first use. Network and storage failures propagate to the
// caller.
func (m *Manager) EnsureVariant(ctx context.Context, variant string, opts EnsureOptions) (string, error) {
	if strings.TrimSpace(opts.Override) != "" {
		if _, err := os.Stat(opts.Override); err != nil {
			return "", fmt.Errorf("models: override path %s: %w", opts.Override, err)
		}
		return opts.Override, nil
	}

	manifest := opts.Manifest
	if len(manifest.Variants) == 0 {
		loaded, err := DefaultManifest()
		if err != nil {
			return "", err
		}
		manifest = loaded
	}

	v, err := manifest.Variant(variant)
	if err != nil {
		return "", err
	}

	path := filepath.Join(m.ModelsDir(), v.File)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if v.URL == "" {
		return "", fmt.Errorf("models: variant %q not present locally and has no download URL", variant)
	}

	m.log.Info("downloading model because it does not exist yet",
		"variant", variant,
		"url", v.URL,
		"path", path,
	)
	if err := m.download(ctx, v, path); err != nil {
		return "", err
	}
	return path, nil
}

func (m *Manager) download(ctx context.Context, v Variant, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.URL, nil)
	if err != nil {
		return fmt.Errorf("models: build request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("models: download %s: %w", v.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("models: download %s: unexpected status %s", v.URL, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".download-*")
	if err != nil {
		return fmt.Errorf("models: create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), resp.Body)
	if err != nil {
		return fmt.Errorf("models: write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("models: close %s: %w", tmp.Name(), err)
	}

	if v.SizeBytes > 0 && written != v.SizeBytes {
		return fmt.Errorf("models: size mismatch for %s: got %d bytes, want %d", v.File, written, v.SizeBytes)
	}
	if v.SHA256 != "" {
		sum := hex.EncodeToString(hasher.Sum(nil))
		if !strings.EqualFold(sum, v.SHA256) {
			return fmt.Errorf("models: checksum mismatch for %s: got %s, want %s", v.File, sum, v.SHA256)
		}
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("models: move %s into place: %w", tmp.Name(), err)
	}
	m.log.Info("model downloaded", "path", path, "bytes", written)
	return nil
}
