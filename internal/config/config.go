// Package config provides configuration types and defaults for sidediff.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/sidediff/internal/diff"
	"github.com/zjrosen/sidediff/internal/log"
)

// Config holds all configuration options for sidediff.
type Config struct {
	Diff    DiffConfig      `mapstructure:"diff"`
	Fold    FoldConfig      `mapstructure:"fold"`
	Output  OutputConfig    `mapstructure:"output"`
	Cache   CacheConfig     `mapstructure:"cache"`
	Server  ServerConfig    `mapstructure:"server"`
	Batch   BatchConfig     `mapstructure:"batch"`
	Watch   WatchConfig     `mapstructure:"watch"`
	Tracing TracingConfig   `mapstructure:"tracing"`
	Log     LogConfig       `mapstructure:"log"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// DiffConfig holds the engine defaults used when a request does not set them.
type DiffConfig struct {
	Method          string `mapstructure:"method"`            // any name accepted by diff.ParseMethod
	DisableWordDiff bool   `mapstructure:"disable_word_diff"` // report paired lines without tokens
	LinesOffset     int    `mapstructure:"lines_offset"`      // added to every line number
}

// Options converts the section into engine options. semantic comes from the
// semantic-cleanup feature flag.
func (d DiffConfig) Options(semantic bool) diff.Options {
	m, _ := diff.ParseMethod(d.Method)
	return diff.Options{
		DisableWordDiff: d.DisableWordDiff,
		CompareMethod:   m,
		LinesOffset:     d.LinesOffset,
		SemanticCleanup: semantic,
	}
}

// FoldConfig controls hiding of unchanged lines.
type FoldConfig struct {
	DiffOnly     bool `mapstructure:"diff_only"`
	ContextLines int  `mapstructure:"context_lines"`
}

// OutputConfig selects how results are written.
type OutputConfig struct {
	Format string `mapstructure:"format"` // "json" (default) or "yaml"
}

// CacheConfig holds result cache configuration.
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// BatchConfig holds batch run configuration.
type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// WatchConfig holds file watcher configuration.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// File is the debug log path. Empty disables file logging unless --debug is set.
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/sidediff/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/sidediff/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sidediff", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Diff: DiffConfig{
			Method: string(diff.DefaultMethod),
		},
		Fold: FoldConfig{
			DiffOnly:     false,
			ContextLines: 3,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Cache: CacheConfig{
			TTL:             10 * time.Minute,
			CleanupInterval: 15 * time.Minute,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8417",
			MaxBodyBytes: 8 << 20,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Log: LogConfig{
			Level: "info",
		},
		Flags: map[string]bool{},
	}
}

// Validate checks the whole configuration and joins every problem found.
func Validate(cfg Config) error {
	return errors.Join(
		ValidateDiff(cfg.Diff),
		ValidateFold(cfg.Fold),
		ValidateOutput(cfg.Output),
		ValidateServer(cfg.Server),
		ValidateBatch(cfg.Batch),
		ValidateTracing(cfg.Tracing),
		ValidateLog(cfg.Log),
	)
}

// ValidateDiff checks diff defaults. An empty method uses the default.
func ValidateDiff(d DiffConfig) error {
	if d.Method != "" {
		if _, ok := diff.ParseMethod(d.Method); !ok {
			return fmt.Errorf("diff.method %q is not a known method", d.Method)
		}
	}
	return nil
}

// ValidateFold checks fold configuration.
func ValidateFold(f FoldConfig) error {
	if f.ContextLines < 0 {
		return fmt.Errorf("fold.context_lines must be >= 0, got %d", f.ContextLines)
	}
	return nil
}

// ValidateOutput checks the output format.
func ValidateOutput(o OutputConfig) error {
	switch o.Format {
	case "", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("output.format must be \"json\" or \"yaml\", got %q", o.Format)
	}
}

// ValidateServer checks server configuration.
func ValidateServer(s ServerConfig) error {
	if s.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must be >= 0, got %d", s.MaxBodyBytes)
	}
	return nil
}

// ValidateBatch checks batch configuration.
func ValidateBatch(b BatchConfig) error {
	if b.Workers < 0 {
		return fmt.Errorf("batch.workers must be >= 0, got %d", b.Workers)
	}
	return nil
}

// ValidateLog checks the log level name.
func ValidateLog(l LogConfig) error {
	if l.Level == "" {
		return nil
	}
	if _, ok := log.ParseLevel(l.Level); !ok {
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", l.Level)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}

	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# sidediff configuration

# Engine defaults, overridden per request
diff:
  # Intra-line granularity: chars, words, words_with_space, lines,
  # trimmed_lines, sentences, css, json (jsdiff names like diffWords work too)
  method: chars
  disable_word_diff: false
  lines_offset: 0

# Hide unchanged lines outside the context of a change
fold:
  diff_only: false
  context_lines: 3

output:
  format: json   # json or yaml

# In-memory result cache (enable with the result-cache flag)
cache:
  ttl: 10m
  cleanup_interval: 15m

server:
  addr: 127.0.0.1:8417
  max_body_bytes: 8388608
  read_timeout: 30s
  write_timeout: 60s

batch:
  workers: 4

watch:
  debounce: 200ms

log:
  # file: /tmp/sidediff.log
  level: info

tracing:
  enabled: false
  exporter: file          # none, file, stdout, otlp
  # file_path: ~/.config/sidediff/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0

flags:
  semantic-cleanup: false
  result-cache: false
`
}

// WriteDefaultConfig creates a config file at the given path with default settings.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
