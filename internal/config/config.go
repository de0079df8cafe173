package config

import "fmt"

const (
	DefaultModel    = "base"
	DefaultLanguage = "auto"
	DefaultLogLevel = "info"
	DefaultDataDir  = "data"
	// DefaultThreads matches the thread count the upstream whisper.cpp CLI
	// defaults to.
	DefaultThreads = 4
)

// Config captures worker bootstrap configuration from environment variables,
// an injected JSON payload (`TRANSCRIBEE_WORKER_CONFIG`) or a YAML file.
type Config struct {
	ModelVariant  string
	Language      string
	LogLevel      string
	DataDir       string
	ModelPath     string
	UseStubEngine bool
	Threads       *int
	// MaxSegmentLength caps segment length in characters; nil or 0 means
	// unlimited.
	MaxSegmentLength *int
	// NoContext disables feeding transcribed text back into decoding.
	NoContext *bool
}

// Validate applies defaults, checks required fields, and rejects out-of-range
// values.
func (c *Config) Validate() error {
	if c.ModelVariant == "" {
		c.ModelVariant = DefaultModel
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.Threads != nil && *c.Threads < 0 {
		return fmt.Errorf("config: threads must be >= 0, got %d", *c.Threads)
	}
	if c.MaxSegmentLength != nil && *c.MaxSegmentLength < 0 {
		return fmt.Errorf("config: max_segment_length must be >= 0, got %d", *c.MaxSegmentLength)
	}
	return nil
}

// ThreadCount returns the configured thread count or the default.
func (c Config) ThreadCount() int {
	if c.Threads != nil && *c.Threads > 0 {
		return *c.Threads
	}
	return DefaultThreads
}
