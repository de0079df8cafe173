package config_test

import (
	"fmt"
	"testing"

	"github.com/moeffju/transcribee/internal/config"
)

func TestLoaderDefaults(t *testing.T) {
	loader := config.Loader{
		Lookup: func(string) (string, bool) { return "", false },
	}
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ModelVariant != config.DefaultModel {
		t.Fatalf("expected model variant %q, got %q", config.DefaultModel, cfg.ModelVariant)
	}
	if cfg.Language != config.DefaultLanguage {
		t.Fatalf("expected language %q, got %q", config.DefaultLanguage, cfg.Language)
	}
	if cfg.LogLevel != config.DefaultLogLevel {
		t.Fatalf("expected log level %q, got %q", config.DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.DataDir != config.DefaultDataDir {
		t.Fatalf("expected data dir %q, got %q", config.DefaultDataDir, cfg.DataDir)
	}
	if cfg.ModelPath != "" {
		t.Fatalf("expected empty model path, got %q", cfg.ModelPath)
	}
	if cfg.UseStubEngine {
		t.Fatalf("expected stub engine disabled by default")
	}
	if cfg.Threads != nil {
		t.Fatalf("expected threads default (nil), got %v", *cfg.Threads)
	}
	if cfg.ThreadCount() != config.DefaultThreads {
		t.Fatalf("expected default thread count %d, got %d", config.DefaultThreads, cfg.ThreadCount())
	}
}

func TestLoaderOverrides(t *testing.T) {
	env := map[string]string{
		"TRANSCRIBEE_WORKER_CONFIG":   `{"model_variant":"small","language":"pl","log_level":"debug","data_dir":"/tmp/data","model_path":"/tmp/models/custom.bin","threads":8,"max_segment_length":60,"no_context":true}`,
		"TRANSCRIBEE_MODEL_VARIANT":   "medium",
		"TRANSCRIBEE_LANGUAGE":        "en",
		"TRANSCRIBEE_LOG_LEVEL":       "warn",
		"TRANSCRIBEE_DATA_DIR":        "/var/lib/transcribee",
		"TRANSCRIBEE_USE_STUB_ENGINE": "true",
	}

	loader := config.Loader{
		Lookup: func(key string) (string, bool) {
			value, ok := env[key]
			return value, ok
		},
	}

	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	assertEqual(t, "medium", cfg.ModelVariant, "model variant")
	assertEqual(t, "en", cfg.Language, "language")
	assertEqual(t, "warn", cfg.LogLevel, "log level")
	assertEqual(t, "/var/lib/transcribee", cfg.DataDir, "data dir")
	assertEqual(t, "/tmp/models/custom.bin", cfg.ModelPath, "model path")
	if !cfg.UseStubEngine {
		t.Fatalf("expected stub engine enabled")
	}
	if cfg.Threads == nil || *cfg.Threads != 8 {
		t.Fatalf("unexpected threads: %v", cfg.Threads)
	}
	if cfg.MaxSegmentLength == nil || *cfg.MaxSegmentLength != 60 {
		t.Fatalf("unexpected max segment length: %v", cfg.MaxSegmentLength)
	}
	if cfg.NoContext == nil || !*cfg.NoContext {
		t.Fatalf("unexpected no_context: %v", cfg.NoContext)
	}
}

func TestLoaderYAMLFile(t *testing.T) {
	env := map[string]string{
		"TRANSCRIBEE_CONFIG_FILE": "/etc/transcribee/worker.yaml",
		// env still wins over the file
		"TRANSCRIBEE_LANGUAGE": "de",
	}
	loader := config.Loader{
		Lookup: func(key string) (string, bool) {
			value, ok := env[key]
			return value, ok
		},
		ReadFile: func(path string) ([]byte, error) {
			if path != "/etc/transcribee/worker.yaml" {
				return nil, fmt.Errorf("unexpected path %q", path)
			}
			return []byte("model_variant: small\nlanguage: pl\nlog_level: debug\nuse_stub_engine: true\nthreads: 2\n"), nil
		},
	}

	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	assertEqual(t, "small", cfg.ModelVariant, "model variant")
	assertEqual(t, "de", cfg.Language, "language")
	assertEqual(t, "debug", cfg.LogLevel, "log level")
	if !cfg.UseStubEngine {
		t.Fatalf("expected stub engine enabled from file")
	}
	if cfg.Threads == nil || *cfg.Threads != 2 {
		t.Fatalf("unexpected threads: %v", cfg.Threads)
	}
}

func TestLoaderRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "bad JSON payload",
			env:  map[string]string{"TRANSCRIBEE_WORKER_CONFIG": "{nope"},
		},
		{
			name: "negative threads",
			env:  map[string]string{"TRANSCRIBEE_WORKER_CONFIG": `{"threads":-1}`},
		},
		{
			name: "negative segment length",
			env:  map[string]string{"TRANSCRIBEE_WORKER_CONFIG": `{"max_segment_length":-2}`},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			loader := config.Loader{
				Lookup: func(key string) (string, bool) {
					value, ok := tc.env[key]
					return value, ok
				},
			}
			if _, err := loader.Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func assertEqual(t *testing.T, want, got, label string) {
	t.Helper()
	if want != got {
		t.Fatalf("unexpected %s: want %q, got %q", label, want, got)
	}
}
