package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/zjrosen/sidediff/internal/log"
)

// LocalConfigPath is the project-local config file, checked before the user config.
const LocalConfigPath = ".sidediff/config.yaml"

// UserConfigDir returns ~/.config/sidediff or empty string if home dir unavailable.
func UserConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sidediff")
}

// SetDefaults registers every default so that env vars and partial files
// layer over them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("diff.method", d.Diff.Method)
	v.SetDefault("diff.disable_word_diff", d.Diff.DisableWordDiff)
	v.SetDefault("diff.lines_offset", d.Diff.LinesOffset)
	v.SetDefault("fold.diff_only", d.Fold.DiffOnly)
	v.SetDefault("fold.context_lines", d.Fold.ContextLines)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("batch.workers", d.Batch.Workers)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
}

// Load reads configuration into a Config. When cfgFile is empty the lookup
// order is LocalConfigPath, then UserConfigDir()/config.yaml; a missing file
// is not an error. Environment variables override file values, with the
// key path upper-cased and joined by "_" (SIDEDIFF_DIFF_METHOD).
// Returns the config file used, or "" when none was found.
func Load(v *viper.Viper, cfgFile string) (Config, string, error) {
	SetDefaults(v)
	v.SetEnvPrefix("SIDEDIFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return Config{}, "", fmt.Errorf("reading config: %w", err)
		}
		v.SetConfigFile(cfgFile)
	} else if _, err := os.Stat(LocalConfigPath); err == nil {
		v.SetConfigFile(LocalConfigPath)
	} else {
		if dir := UserConfigDir(); dir != "" {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, "", fmt.Errorf("reading config: %w", err)
		}
		log.Debug(log.CatConfig, "No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Tracing.FilePath == "" {
		cfg.Tracing.FilePath = DefaultTracesFilePath()
	}
	if err := Validate(cfg); err != nil {
		return Config{}, "", fmt.Errorf("invalid configuration: %w", err)
	}

	used := v.ConfigFileUsed()
	log.Debug(log.CatConfig, "Loaded config", "path", used, "method", cfg.Diff.Method)
	return cfg, used, nil
}
