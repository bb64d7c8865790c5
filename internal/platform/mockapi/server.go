package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/vidasana/turnos/internal/platform/middleware"
)

// Options configure a mock server.
type Options struct {
	SigningKey     []byte
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	Seed           bool
	Password       string
	CORSOrigins    []string
}

// Server bundles the echo instance with its backing store.
type Server struct {
	Echo   *echo.Echo
	Store  *Store
	logger zerolog.Logger
}

func NewServer(opts Options, logger zerolog.Logger) (*Server, error) {
	store := NewStore()
	if opts.Seed {
		if err := Seed(store, time.Now(), opts.Password); err != nil {
			return nil, err
		}
	}
	return newServer(store, opts, logger), nil
}

func newServer(store *Store, opts Options, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	if len(opts.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: opts.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
			AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		}))
	}
	e.Use(middleware.RequestTimeout(opts.RequestTimeout))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h := NewHandler(store, NewIssuer(opts.SigningKey, opts.TokenTTL), logger)
	h.RegisterRoutes(e.Group(""))

	return &Server{Echo: e, Store: store, logger: logger}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("starting mock api")
		if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("mock api: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down mock api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mock api shutdown: %w", err)
	}
	s.logger.Info().Msg("mock api stopped")
	return nil
}
