package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/voice-fingerprint/internal/config"
	"github.com/jonathan/voice-fingerprint/internal/db"
	"github.com/jonathan/voice-fingerprint/internal/locking"
	"github.com/jonathan/voice-fingerprint/internal/logging"
	"github.com/jonathan/voice-fingerprint/internal/metrics"
	"github.com/jonathan/voice-fingerprint/internal/store"
	"github.com/jonathan/voice-fingerprint/internal/voice"
)

// app holds everything a command needs, built from configuration.
type app struct {
	cfg     *config.Config
	logger  *logrus.Logger
	metrics *metrics.Metrics
	store   store.Store
	voice   *voice.Service
	closers []func() error
}

// loadConfig reads configuration with flag overrides applied last.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openApp wires the service. With persistent false nothing is written to
// disk and profiles live only for the command's lifetime.
func openApp(ctx context.Context, opts *rootOptions, errOut io.Writer, persistent bool) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewWithOutput(errOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}

	if persistent {
		a.store, err = openStore(ctx, cfg, logging.Component(logger, "store"))
		if err != nil {
			return nil, err
		}
	} else {
		a.store = store.NewMemoryStore()
	}
	a.closers = append(a.closers, a.store.Close)

	var locker locking.Locker
	if cfg.RedisURL != "" {
		redisLocker, err := locking.NewRedisLocker(ctx, cfg.RedisURL, logging.Component(logger, "locking"))
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, redisLocker.Close)
		locker = redisLocker
	}

	a.voice = voice.NewService(a.store, locker, voice.OptionsFromConfig(cfg), logging.Component(logger, "voice"), a.metrics)
	return a, nil
}

// openStore picks PostgreSQL when a database URL is configured, else SQLite.
func openStore(ctx context.Context, cfg *config.Config, log *logrus.Entry) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Debug("Using PostgreSQL store")
		return database, nil
	}

	sqlite, err := store.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	log.WithField("path", cfg.SQLitePath).Debug("Using SQLite store")
	return sqlite, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// writeJSON prints v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := fmt.Fprintln(out, string(jsonBytes)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
