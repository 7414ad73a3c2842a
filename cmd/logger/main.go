package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/Caleb-rg/logger/internal/config"
	"github.com/Caleb-rg/logger/internal/database"
	"github.com/Caleb-rg/logger/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	logger = logger.Level(cfg.ZerologLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.RunMigrations(ctx, cfg.DatabaseURL(), logger); err != nil {
		logger.Fatal().Err(err).Msg("migrations")
	}

	var app *newrelic.Application
	if cfg.NewRelicLicenseKey != "" {
		app, err = newrelic.NewApplication(
			newrelic.ConfigAppName("logger"),
			newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("new relic")
		}
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL(), int32(cfg.DBMaxConns), logger, app)
	if err != nil {
		logger.Fatal().Err(err).Msg("database pool")
	}
	defer pool.Close()

	srv := server.New(cfg, pool, logger, app)
	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}
