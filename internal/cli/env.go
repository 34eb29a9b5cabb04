package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/codalotl/draftpatch/internal/config"
	"github.com/codalotl/draftpatch/internal/metrics"
	"github.com/codalotl/draftpatch/internal/session"
	"github.com/codalotl/draftpatch/internal/simplelogger"
	"github.com/codalotl/draftpatch/internal/snapshot"
	"github.com/codalotl/draftpatch/internal/snapshot/badgerblob"
	"github.com/codalotl/draftpatch/internal/snapshot/fsblob"
	"github.com/codalotl/draftpatch/internal/snapshot/redisblob"
	"github.com/codalotl/draftpatch/internal/snapshot/sqliteblob"
	"github.com/prometheus/client_golang/prometheus"
)

// sqliteFile is the database file name inside store.path for the sqlite backend.
const sqliteFile = "snapshots.db"

// env is the per-invocation state shared by all commands. Config is loaded once, on first use.
type env struct {
	cfgFile string

	once   sync.Once
	cfg    config.Config
	cfgErr error
	logger *slog.Logger

	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newEnv() *env {
	reg := prometheus.NewRegistry()
	return &env{registry: reg, metrics: metrics.New(reg)}
}

func (e *env) config() (config.Config, error) {
	e.once.Do(func() {
		e.cfg, e.cfgErr = config.Load(config.LoadOptions{File: e.cfgFile})
		if e.cfgErr != nil {
			return
		}
		level, err := simplelogger.ParseLevel(e.cfg.Log.Level)
		if err != nil {
			e.cfgErr = fmt.Errorf("invalid configuration: %w", err)
			return
		}
		e.logger = simplelogger.New(e.cfg.Log.File, level)
	})
	return e.cfg, e.cfgErr
}

func (e *env) sessionOptions(cfg config.Config) []session.Option {
	return []session.Option{
		session.WithLogger(e.logger),
		session.WithMetrics(e.metrics),
		session.WithResolveOptions(cfg.ResolveOptions()),
	}
}

// withStore opens the configured blob store, runs fn, and closes the store.
func (e *env) withStore(ctx context.Context, fn func(cfg config.Config, store snapshot.BlobStore) error) error {
	cfg, err := e.config()
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(ctx, cfg.Store, e.logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			e.logger.Warn("close store", "backend", cfg.Store.Backend, "error", err)
		}
	}()
	return fn(cfg, store)
}

func (e *env) restore(ctx context.Context, cfg config.Config, store snapshot.BlobStore) (*session.Session, error) {
	st, err := snapshot.Load(ctx, store, cfg.Session)
	if errors.Is(err, snapshot.ErrNotFound) {
		return nil, fmt.Errorf("no session %q: run 'draftpatch init <file>' first", cfg.Session)
	}
	if err != nil {
		return nil, err
	}
	return session.Restore(st, e.sessionOptions(cfg)...)
}

// view loads the session for a read-only command.
func (e *env) view(ctx context.Context, fn func(cfg config.Config, s *session.Session) error) error {
	return e.withStore(ctx, func(cfg config.Config, store snapshot.BlobStore) error {
		s, err := e.restore(ctx, cfg, store)
		if err != nil {
			return err
		}
		return fn(cfg, s)
	})
}

// mutate loads the session, runs fn, and saves the session if fn succeeds.
func (e *env) mutate(ctx context.Context, fn func(cfg config.Config, s *session.Session) error) error {
	return e.withStore(ctx, func(cfg config.Config, store snapshot.BlobStore) error {
		s, err := e.restore(ctx, cfg, store)
		if err != nil {
			return err
		}
		if err := fn(cfg, s); err != nil {
			return err
		}
		return snapshot.Save(ctx, store, cfg.Session, s.Snapshot())
	})
}

// openStore opens the backend named by cfg. The returned close func is never nil on success.
func openStore(ctx context.Context, cfg config.Store, logger *slog.Logger) (snapshot.BlobStore, func() error, error) {
	switch cfg.Backend {
	case "fs":
		s, err := fsblob.New(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	case "badger":
		s, err := badgerblob.Open(badgerblob.Config{Path: cfg.Path, SyncWrites: true, Logger: logger})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "sqlite":
		s, err := sqliteblob.Open(filepath.Join(cfg.Path, sqliteFile))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "redis":
		s, err := redisblob.Open(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
