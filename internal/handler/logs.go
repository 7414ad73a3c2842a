package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Caleb-rg/logger/internal/auth"
	"github.com/Caleb-rg/logger/internal/model"
	"github.com/Caleb-rg/logger/internal/response"
)

// LogStore is what the handler needs from the repository.
type LogStore interface {
	Insert(ctx context.Context, name string, data json.RawMessage) (uuid.UUID, error)
	List(ctx context.Context, unbounded bool, limit int) ([]model.LogEntry, error)
}

// LogHandler serves the ingest and retrieval routes. The write path is open;
// the read path is gated by the Guard.
type LogHandler struct {
	Store        LogStore
	Guard        *auth.Guard
	Limit        int
	QueryTimeout time.Duration
	Logger       zerolog.Logger
}

type ingestRequest struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// Liveness answers the probe on GET /.
func (h *LogHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": ":)"})
}

// Ingest handles POST /log: validate the body, persist one entry.
func (h *LogHandler) Ingest(c echo.Context) error {
	var req ingestRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid JSON body")
	}
	if req.Name == "" {
		return response.BadRequest(c, "name must be a non-empty string")
	}
	if !isJSONObject(req.Data) {
		return response.BadRequest(c, "data must be a JSON object")
	}

	ctx, cancel := h.storeCtx(c)
	defer cancel()

	id, err := h.Store.Insert(ctx, req.Name, req.Data)
	if err != nil {
		h.Logger.Error().Err(err).Str("name", req.Name).Msg("persist log entry")
		return response.InternalError(c, "Could not log data")
	}

	h.Logger.Debug().Stringer("id", id).Str("name", req.Name).Msg("log entry stored")
	return response.OK(c, nil)
}

// Retrieve handles GET /giveme: authorize, then run the bounded or unbounded
// query. A malformed or absent all parameter means bounded.
func (h *LogHandler) Retrieve(c echo.Context) error {
	key := c.QueryParam("key")
	unbounded, err := strconv.ParseBool(c.QueryParam("all"))
	if err != nil {
		unbounded = false
	}

	if !h.Guard.Authorize(key) {
		return response.Unauthorized(c)
	}

	ctx, cancel := h.storeCtx(c)
	defer cancel()

	entries, err := h.Store.List(ctx, unbounded, h.Limit)
	if err != nil {
		h.Logger.Error().Err(err).Bool("all", unbounded).Msg("list log entries")
		return response.InternalError(c, "Could not get data")
	}
	if entries == nil {
		entries = []model.LogEntry{}
	}
	return response.OK(c, entries)
}

// storeCtx derives a deadline-bound context for a store call so a hung store
// cannot pin a handler slot indefinitely.
func (h *LogHandler) storeCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), h.QueryTimeout)
}

// isJSONObject reports whether raw is a well-formed JSON object. An empty
// object passes; null, arrays, strings and a missing field do not.
func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(raw)
}
