package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/vidasana/turnos/internal/config"
	"github.com/vidasana/turnos/internal/domain/directory"
	"github.com/vidasana/turnos/internal/domain/identity"
	"github.com/vidasana/turnos/internal/domain/turno"
	"github.com/vidasana/turnos/internal/platform/apiclient"
	"github.com/vidasana/turnos/internal/platform/kvstore"
	"github.com/vidasana/turnos/internal/platform/notify"
)

// app holds the client-side components for one command invocation.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	out      io.Writer
	client   *apiclient.Client
	store    kvstore.Store
	auth     *identity.Service
	notifier notify.Notifier
	closeFn  func() error
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return logger.Level(cfg.Level())
}

func newApp(ctx context.Context, out io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	store, closeFn, err := openSessionStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := apiclient.New(cfg.APIBaseURL,
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithLogger(logger),
	)
	session := identity.NewSession(store, logger)
	return &app{
		cfg:      cfg,
		logger:   logger,
		out:      out,
		client:   client,
		store:    store,
		auth:     identity.NewService(identity.NewRESTRemote(client), session, client, logger),
		notifier: notify.NewConsole(out, logger),
		closeFn:  closeFn,
	}, nil
}

func openSessionStore(ctx context.Context, cfg *config.Config) (kvstore.Store, func() error, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		rs, err := kvstore.NewRedisStore(ctx, cfg.RedisURL, "turnos:")
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		return rs, rs.Close, nil
	default:
		fs, err := kvstore.NewFileStore(cfg.SessionDir)
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		return fs, func() error { return nil }, nil
	}
}

func (a *app) Close() {
	if err := a.closeFn(); err != nil {
		a.logger.Warn().Err(err).Msg("closing session store")
	}
}

// restore returns the persisted identity or a user-facing error when nobody
// is logged in.
func (a *app) restore(ctx context.Context) (identity.Identity, error) {
	ident, err := a.auth.Restore(ctx)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("no hay sesión activa: ejecute 'turnos login' primero")
	}
	return ident, nil
}

func (a *app) directory() *directory.Cache {
	return directory.NewCache(directory.NewRESTRemote(a.client), a.logger)
}

// dashboard builds and mounts the dashboard of the logged-in identity.
// Load failures are already notified; the dashboard is returned degraded.
func (a *app) dashboard(ctx context.Context) (*turno.Dashboard, error) {
	ident, err := a.restore(ctx)
	if err != nil {
		return nil, err
	}
	repo := turno.NewRepository(turno.NewRESTRemote(a.client), a.logger)
	d := turno.NewDashboard(ident, a.directory(), repo, a.notifier, a.logger)
	if err := d.Mount(ctx); err != nil {
		a.logger.Debug().Err(err).Msg("dashboard mounted with errors")
	}
	return d, nil
}
