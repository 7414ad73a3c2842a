package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	nrecho "github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/Caleb-rg/logger/internal/auth"
	"github.com/Caleb-rg/logger/internal/config"
	"github.com/Caleb-rg/logger/internal/handler"
	"github.com/Caleb-rg/logger/internal/repository"
)

// Server holds the Echo app and dependencies.
type Server struct {
	Echo   *echo.Echo
	Config *config.Config
	logger zerolog.Logger
}

// New builds the Echo server and registers routes. Caller must provide a
// non-nil pool; app may be nil when APM is disabled.
func New(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger, app *newrelic.Application) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	if app != nil {
		e.Use(nrecho.Middleware(app))
	}
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	logHandler := &handler.LogHandler{
		Store:        repository.NewLogRepository(pool),
		Guard:        auth.NewGuard(cfg.Key),
		Limit:        cfg.Limit,
		QueryTimeout: cfg.QueryDeadline(),
		Logger:       logger,
	}

	e.GET("/", logHandler.Liveness)
	e.POST("/log", logHandler.Ingest)
	e.GET("/giveme", logHandler.Retrieve)

	return &Server{Echo: e, Config: cfg, logger: logger}
}

// Start runs the HTTP server until the context is cancelled or the listener
// fails. On cancel the server shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		if err := s.Shutdown(context.Background()); err != nil {
			s.logger.Error().Err(err).Msg("shutdown")
		}
	}()
	s.logger.Info().Str("addr", s.Config.Addr()).Msg("listening")
	if err := s.Echo.Start(s.Config.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting new requests and drains in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
