// Package app builds the shared runtime (logger, trending store, TMDB client,
// search service) from a Config. The binaries under cmd/ differ only in the
// surface they put on top.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abelbrown/reelfind/internal/config"
	"github.com/abelbrown/reelfind/internal/otel"
	"github.com/abelbrown/reelfind/internal/search"
	"github.com/abelbrown/reelfind/internal/store"
	"github.com/abelbrown/reelfind/internal/tmdb"
	"github.com/abelbrown/reelfind/internal/trending"
)

// Options adjusts what New builds.
type Options struct {
	// Comp names the process in log events ("tui", "trendingd", "mcp").
	Comp string
	// LocalOnly forces a database backend even when the config says remote.
	// trendingd uses it so it never proxies to itself.
	LocalOnly bool
}

// App is the wired runtime. Close releases everything New opened.
type App struct {
	Config   *config.Config
	Log      *otel.Logger
	Ring     *otel.RingBuffer
	TMDB     *tmdb.Client
	Trending trending.Store
	Search   *search.Service

	closers []func() error
}

// New opens the log file and trending backend and wires the search service.
// A missing API key is not an error: fetches fail until one is configured.
func New(cfg *config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg}

	log, err := openLog(cfg.Log)
	if err != nil {
		return nil, err
	}
	a.Log = log
	a.Ring = otel.NewRingBuffer(otel.DefaultRingSize)
	a.Log.SetRingBuffer(a.Ring)
	a.closers = append(a.closers, func() error { a.Log.Close(); return nil })

	tcfg := cfg.Trending
	if opts.LocalOnly && tcfg.Backend == config.BackendRemote {
		tcfg.Backend = config.BackendSQLite
		tcfg.DSN = config.DefaultConfig().Trending.DSN
	}
	st, closeStore, err := OpenTrending(tcfg, cfg.TMDB.Timeout)
	if err != nil {
		a.Log.Error(otel.KindStoreError, opts.Comp, err)
		a.Close()
		return nil, err
	}
	a.Trending = st
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}

	a.TMDB = tmdb.NewClient(cfg.TMDB.APIKey, tmdb.Options{
		BaseURL:           cfg.TMDB.BaseURL,
		Language:          cfg.TMDB.Language,
		Timeout:           cfg.TMDB.Timeout,
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
	})
	a.Search = search.NewService(a.TMDB, a.Trending, a.Log)

	a.Log.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindStartup,
		Comp:  opts.Comp,
		Extra: map[string]any{
			"trending_backend": tcfg.Backend,
			"api_key":          a.TMDB.Available(),
		},
	})
	return a, nil
}

// OpenTrending builds the configured trending backend. The returned close
// func is nil when there is nothing to release.
func OpenTrending(cfg config.TrendingConfig, timeout time.Duration) (trending.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendRemote:
		return trending.NewClient(cfg.URL, cfg.Token, timeout), nil, nil
	case config.BackendSQLite, config.BackendPostgres:
		if cfg.Backend == config.BackendSQLite && cfg.DSN != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0755); err != nil {
				return nil, nil, fmt.Errorf("create data directory: %w", err)
			}
		}
		st, err := store.Open(cfg.Backend, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open trending store: %w", err)
		}
		return trending.NewLocal(st), st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown trending backend %q", cfg.Backend)
	}
}

func openLog(cfg config.LogConfig) (*otel.Logger, error) {
	if cfg.Path == "" {
		return otel.NewNullLogger(), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	log, err := otel.OpenFile(cfg.Path)
	if err != nil {
		return nil, err
	}
	log.SetLevel(cfg.Level)
	return log, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if i == 0 {
			a.Log.Info(otel.KindShutdown, "app", "closing")
		}
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
