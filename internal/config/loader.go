package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader loads configuration from a YAML file and environment variables, in
// that order of precedence (env wins). Tests can override Lookup and ReadFile
// to inject deterministic inputs.
type Loader struct {
	Lookup   func(string) (string, bool)
	ReadFile func(string) ([]byte, error)
}

// Load retrieves the worker configuration and validates it.
func (l Loader) Load() (Config, error) {
	if l.Lookup == nil {
		l.Lookup = os.LookupEnv
	}
	if l.ReadFile == nil {
		l.ReadFile = os.ReadFile
	}

	var cfg Config

	if path, ok := l.Lookup("TRANSCRIBEE_CONFIG_FILE"); ok && strings.TrimSpace(path) != "" {
		raw, err := l.ReadFile(strings.TrimSpace(path))
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := applyYAML(raw, &cfg); err != nil {
			return Config{}, err
		}
	}

	if raw, ok := l.Lookup("TRANSCRIBEE_WORKER_CONFIG"); ok && strings.TrimSpace(raw) != "" {
		if err := applyJSON(raw, &cfg); err != nil {
			return Config{}, err
		}
	}

	overrideString(l.Lookup, "TRANSCRIBEE_MODEL_VARIANT", &cfg.ModelVariant)
	overrideString(l.Lookup, "TRANSCRIBEE_LANGUAGE", &cfg.Language)
	overrideString(l.Lookup, "TRANSCRIBEE_LOG_LEVEL", &cfg.LogLevel)
	overrideString(l.Lookup, "TRANSCRIBEE_DATA_DIR", &cfg.DataDir)
	overrideString(l.Lookup, "TRANSCRIBEE_MODEL_PATH", &cfg.ModelPath)
	overrideBool(l.Lookup, "TRANSCRIBEE_USE_STUB_ENGINE", &cfg.UseStubEngine)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type filePayload struct {
	ModelVariant     string `json:"model_variant" yaml:"model_variant"`
	Language         string `json:"language" yaml:"language"`
	LogLevel         string `json:"log_level" yaml:"log_level"`
	DataDir          string `json:"data_dir" yaml:"data_dir"`
	ModelPath        string `json:"model_path" yaml:"model_path"`
	UseStubEngine    *bool  `json:"use_stub_engine" yaml:"use_stub_engine"`
	Threads          *int   `json:"threads" yaml:"threads"`
	MaxSegmentLength *int   `json:"max_segment_length" yaml:"max_segment_length"`
	NoContext        *bool  `json:"no_context" yaml:"no_context"`
}

func applyYAML(raw []byte, cfg *Config) error {
	var payload filePayload
	if err := yaml.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("config: decode YAML config: %w", err)
	}
	payload.apply(cfg)
	return nil
}

func applyJSON(raw string, cfg *Config) error {
	var payload filePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return fmt.Errorf("config: decode TRANSCRIBEE_WORKER_CONFIG: %w", err)
	}
	payload.apply(cfg)
	return nil
}

func (p filePayload) apply(cfg *Config) {
	if p.ModelVariant != "" {
		cfg.ModelVariant = p.ModelVariant
	}
	if p.Language != "" {
		cfg.Language = p.Language
	}
	if p.LogLevel != "" {
		cfg.LogLevel = p.LogLevel
	}
	if p.DataDir != "" {
		cfg.DataDir = p.DataDir
	}
	if p.ModelPath != "" {
		cfg.ModelPath = p.ModelPath
	}
	if p.UseStubEngine != nil {
		cfg.UseStubEngine = *p.UseStubEngine
	}
	// threads: 0 requests auto selection and stays nil
	if p.Threads != nil && *p.Threads != 0 {
		cfg.Threads = p.Threads
	}
	if p.MaxSegmentLength != nil {
		cfg.MaxSegmentLength = p.MaxSegmentLength
	}
	if p.NoContext != nil {
		cfg.NoContext = p.NoContext
	}
}

func overrideString(lookup func(string) (string, bool), key string, target *string) {
	if lookup == nil || target == nil {
		return
	}
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func overrideBool(lookup func(string) (string, bool), key string, target *bool) {
	if lookup == nil || target == nil {
		return
	}
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			*target = parsed
		}
	}
}
