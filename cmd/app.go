package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/sidediff/internal/cachemanager"
	"github.com/zjrosen/sidediff/internal/config"
	"github.com/zjrosen/sidediff/internal/diff"
	"github.com/zjrosen/sidediff/internal/flags"
	"github.com/zjrosen/sidediff/internal/log"
	"github.com/zjrosen/sidediff/internal/tracing"
)

// app is the state shared by every subcommand once configuration is loaded.
type app struct {
	cfgFile string
	debug   bool

	cfg     config.Config
	cfgPath string // file the config was read from, "" when none
	flags   *flags.Registry
	tracing *tracing.Provider
	cache   *cachemanager.InMemoryCacheManager[string, diff.Result]
	engine  *cachemanager.DiffEngine

	cleanup []func()
}

// setup loads configuration and builds logging, tracing and the engine.
func (a *app) setup() error {
	if a.debug || os.Getenv("SIDEDIFF_DEBUG") != "" {
		if err := a.initLog(os.Getenv("SIDEDIFF_LOG"), log.LevelDebug); err != nil {
			return err
		}
	}

	cfg, used, err := config.Load(viper.New(), a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg, a.cfgPath = cfg, used

	// An explicit log file in config applies when debug logging is off.
	if !a.debug && os.Getenv("SIDEDIFF_DEBUG") == "" && cfg.Log.File != "" {
		level, _ := log.ParseLevel(cfg.Log.Level)
		if err := a.initLog(cfg.Log.File, level); err != nil {
			return err
		}
	}

	a.flags = flags.New(cfg.Flags)

	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.Tracing.FilePath,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
		ServiceName:  tracing.DefaultServiceName,
		SetGlobal:    true,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	a.tracing = provider

	a.cache = cachemanager.NewInMemoryCacheManager[string, diff.Result]("results", cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	a.engine = cachemanager.NewDiffEngine(a.cache, cfg.Cache.TTL, a.flags.Enabled(flags.FlagResultCache))

	log.Debug(log.CatConfig, "Startup complete",
		"config", a.cfgPath,
		"method", cfg.Diff.Method,
		"tracing", provider.Enabled(),
		"cache", a.engine.Enabled())
	return nil
}

// initLog logs to path, or to stderr when path is empty.
func (a *app) initLog(path string, level log.Level) error {
	if path == "" {
		log.InitWriter(os.Stderr, level)
		a.cleanup = append(a.cleanup, log.Reset)
		return nil
	}
	closeLog, err := log.Init(path)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	log.SetMinLevel(level)
	a.cleanup = append(a.cleanup, func() {
		log.Reset()
		closeLog()
	})
	return nil
}

// teardown flushes traces and closes the log. Safe to call after a failed
// setup and more than once.
func (a *app) teardown() error {
	var errs []error
	if a.tracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracing.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flushing traces: %w", err))
		}
		a.tracing = nil
	}
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
	return errors.Join(errs...)
}

// options returns the engine defaults from config and feature flags.
func (a *app) options() diff.Options {
	return a.cfg.Diff.Options(a.flags.Enabled(flags.FlagSemanticCleanup))
}

// configPath is where config subcommands write: the loaded file, or the
// project-local default.
func (a *app) configPath() string {
	if a.cfgFile != "" {
		return a.cfgFile
	}
	if a.cfgPath != "" {
		return a.cfgPath
	}
	return config.LocalConfigPath
}
