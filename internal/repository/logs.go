package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Caleb-rg/logger/internal/model"
)

// ErrInvalidInput marks caller mistakes, as opposed to storage failures.
var ErrInvalidInput = errors.New("invalid input")

// Querier is the subset of pgxpool.Pool the repository needs. Tests substitute
// a mock pool.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// The two retrieval shapes are fixed templates selected by the unbounded
// flag; the limit is always bound as a parameter, never spliced into the text.
const (
	insertLog = `
		INSERT INTO logs (id, name, data, created)
		VALUES ($1, $2, $3, $4)`

	selectRecentLogs = `
		SELECT id, name, data, created
		FROM logs
		ORDER BY created DESC, id DESC
		LIMIT $1`

	selectAllLogs = `
		SELECT id, name, data, created
		FROM logs
		ORDER BY created DESC, id DESC`
)

// LogRepository persists and reads log entries.
type LogRepository struct {
	db Querier
}

// NewLogRepository returns a LogRepository using the given pool.
func NewLogRepository(db Querier) *LogRepository {
	return &LogRepository{db: db}
}

// Insert writes one entry in a single statement and returns its generated id.
// The timestamp is captured here so clients can never control it.
func (r *LogRepository) Insert(ctx context.Context, name string, data json.RawMessage) (uuid.UUID, error) {
	if name == "" {
		return uuid.Nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	id := uuid.New()
	if _, err := r.db.Exec(ctx, insertLog, id, name, data, time.Now().UTC()); err != nil {
		return uuid.Nil, fmt.Errorf("insert log: %w", err)
	}
	return id, nil
}

// List returns entries newest first. When unbounded is false the result is
// capped at limit; otherwise every stored entry is returned. The secondary id
// sort keeps the order stable when created timestamps collide.
func (r *LogRepository) List(ctx context.Context, unbounded bool, limit int) ([]model.LogEntry, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if unbounded {
		rows, err = r.db.Query(ctx, selectAllLogs)
	} else {
		rows, err = r.db.Query(ctx, selectRecentLogs, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("select logs: %w", err)
	}
	defer rows.Close()

	var entries []model.LogEntry
	for rows.Next() {
		var e model.LogEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Data, &e.Created); err != nil {
			return nil, fmt.Errorf("scan log row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read log rows: %w", err)
	}
	return entries, nil
}
