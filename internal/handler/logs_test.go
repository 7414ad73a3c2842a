package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Caleb-rg/logger/internal/auth"
	"github.com/Caleb-rg/logger/internal/model"
)

type stubStore struct {
	insertCalls int
	gotName     string
	gotData     json.RawMessage
	insertErr   error

	listCalls    int
	gotUnbounded bool
	gotLimit     int
	entries      []model.LogEntry
	listErr      error
}

func (s *stubStore) Insert(_ context.Context, name string, data json.RawMessage) (uuid.UUID, error) {
	s.insertCalls++
	s.gotName = name
	s.gotData = data
	if s.insertErr != nil {
		return uuid.Nil, s.insertErr
	}
	return uuid.New(), nil
}

func (s *stubStore) List(_ context.Context, unbounded bool, limit int) ([]model.LogEntry, error) {
	s.listCalls++
	s.gotUnbounded = unbounded
	s.gotLimit = limit
	return s.entries, s.listErr
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newHandler(store *stubStore) *LogHandler {
	return &LogHandler{
		Store:        store,
		Guard:        auth.NewGuard("secret"),
		Limit:        100,
		QueryTimeout: time.Second,
		Logger:       zerolog.Nop(),
	}
}

func doRequest(t *testing.T, h echo.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func postLog(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/log", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestLogHandler_Liveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	h := newHandler(&stubStore{})
	require.NoError(t, h.Liveness(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":":)"}`, rec.Body.String())
}

func TestLogHandler_Ingest(t *testing.T) {
	t.Run("valid body is persisted verbatim", func(t *testing.T) {
		store := &stubStore{}
		rec, env := doRequest(t, newHandler(store).Ingest, postLog(`{"name":"api","data":{"x":1,"nested":{"y":[1,2]}}}`))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, http.StatusOK, env.Status)
		require.Equal(t, "OK", env.Message)
		require.Nil(t, env.Data)
		require.Equal(t, 1, store.insertCalls)
		require.Equal(t, "api", store.gotName)
		require.JSONEq(t, `{"x":1,"nested":{"y":[1,2]}}`, string(store.gotData))
	})

	t.Run("empty data object is accepted", func(t *testing.T) {
		store := &stubStore{}
		rec, _ := doRequest(t, newHandler(store).Ingest, postLog(`{"name":"api","data":{}}`))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, 1, store.insertCalls)
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		store := &stubStore{}
		rec, _ := doRequest(t, newHandler(store).Ingest, postLog(`{"name":"api","data":{},"extra":true}`))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		store := &stubStore{}
		rec, env := doRequest(t, newHandler(store).Ingest, postLog(`{"data":{"x":1}}`))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, http.StatusBadRequest, env.Status)
		require.Contains(t, env.Message, "name")
		require.Zero(t, store.insertCalls)
	})

	t.Run("string data is rejected without writing", func(t *testing.T) {
		store := &stubStore{}
		rec, env := doRequest(t, newHandler(store).Ingest, postLog(`{"name":"api","data":"not an object"}`))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, env.Message, "data")
		require.Zero(t, store.insertCalls)
	})

	t.Run("missing data is rejected", func(t *testing.T) {
		store := &stubStore{}
		rec, _ := doRequest(t, newHandler(store).Ingest, postLog(`{"name":"api"}`))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Zero(t, store.insertCalls)
	})

	t.Run("malformed JSON is rejected", func(t *testing.T) {
		store := &stubStore{}
		rec, _ := doRequest(t, newHandler(store).Ingest, postLog(`{"name":`))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Zero(t, store.insertCalls)
	})

	t.Run("storage failure maps to 500 with matching body status", func(t *testing.T) {
		store := &stubStore{insertErr: errors.New("pool exhausted")}
		rec, env := doRequest(t, newHandler(store).Ingest, postLog(`{"name":"api","data":{}}`))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, http.StatusInternalServerError, env.Status)
		require.Equal(t, "Could not log data", env.Message)
	})
}

func TestLogHandler_Retrieve(t *testing.T) {
	now := time.Now().UTC()
	entries := []model.LogEntry{
		{ID: uuid.New(), Name: "b", Data: json.RawMessage(`{"x":2}`), Created: now},
		{ID: uuid.New(), Name: "a", Data: json.RawMessage(`{"x":1}`), Created: now.Add(-time.Second)},
	}

	get := func(query string) *http.Request {
		return httptest.NewRequest(http.MethodGet, "/giveme"+query, nil)
	}

	t.Run("missing key is unauthorized regardless of store state", func(t *testing.T) {
		store := &stubStore{listErr: errors.New("down")}
		rec, env := doRequest(t, newHandler(store).Retrieve, get(""))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, http.StatusUnauthorized, env.Status)
		require.Equal(t, "Unauthorized", env.Message)
		require.Zero(t, store.listCalls)
	})

	t.Run("wrong key is unauthorized", func(t *testing.T) {
		store := &stubStore{}
		rec, _ := doRequest(t, newHandler(store).Retrieve, get("?key=nope&all=true"))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Zero(t, store.listCalls)
	})

	t.Run("correct key returns entries newest first", func(t *testing.T) {
		store := &stubStore{entries: entries}
		rec, env := doRequest(t, newHandler(store).Retrieve, get("?key=secret"))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "OK", env.Message)
		require.False(t, store.gotUnbounded)
		require.Equal(t, 100, store.gotLimit)

		var got []model.LogEntry
		require.NoError(t, json.Unmarshal(env.Data, &got))
		require.Len(t, got, 2)
		require.Equal(t, "b", got[0].Name)
		require.Equal(t, "a", got[1].Name)
		require.JSONEq(t, `{"x":2}`, string(got[0].Data))
	})

	t.Run("all=true runs the unbounded shape", func(t *testing.T) {
		store := &stubStore{entries: entries}
		_, _ = doRequest(t, newHandler(store).Retrieve, get("?key=secret&all=true"))
		require.True(t, store.gotUnbounded)
	})

	t.Run("malformed all is treated as false", func(t *testing.T) {
		store := &stubStore{entries: entries}
		rec, _ := doRequest(t, newHandler(store).Retrieve, get("?key=secret&all=banana"))
		require.Equal(t, http.StatusOK, rec.Code)
		require.False(t, store.gotUnbounded)
	})

	t.Run("empty store returns an empty array, not null", func(t *testing.T) {
		store := &stubStore{}
		rec, env := doRequest(t, newHandler(store).Retrieve, get("?key=secret"))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "[]", strings.TrimSpace(string(env.Data)))
	})

	t.Run("storage failure maps to 500 with matching body status", func(t *testing.T) {
		store := &stubStore{listErr: errors.New("down")}
		rec, env := doRequest(t, newHandler(store).Retrieve, get("?key=secret&all=true"))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, http.StatusInternalServerError, env.Status)
		require.Equal(t, "Could not get data", env.Message)
	})
}
