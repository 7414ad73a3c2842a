package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LogEntry is the persisted log event. Entries are append-only: id and
// created are assigned server-side at write time and never change, and no
// update or delete path exists.
type LogEntry struct {
	ID      uuid.UUID       `db:"id" json:"id"`
	Name    string          `db:"name" json:"name"`
	Data    json.RawMessage `db:"data" json:"data"`
	Created time.Time       `db:"created" json:"created"`
}
