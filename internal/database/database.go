// Package database owns the connection pool and schema migrations.
package database

import (
	"context"
	"fmt"

	pgxzerolog "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/multitracer"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// NewPool builds a pgx pool from the connection string, attaches query
// tracing, and pings once so a dead store fails the process before it serves
// traffic. app may be nil when APM is disabled.
func NewPool(ctx context.Context, databaseURL string, maxConns int32, logger zerolog.Logger, app *newrelic.Application) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = maxConns

	tracers := []pgx.QueryTracer{
		&tracelog.TraceLog{
			Logger:   pgxzerolog.NewLogger(logger),
			LogLevel: tracelog.LogLevelDebug,
		},
	}
	if app != nil {
		tracers = append(tracers, nrpgx5.NewTracer())
	}
	poolCfg.ConnConfig.Tracer = multitracer.New(tracers...)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
