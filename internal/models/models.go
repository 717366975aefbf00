package models

import (
	"time"
)

// RollEntry is one notable roll kept in the history database.
type RollEntry struct {
	ID        int64
	Timestamp time.Time
	Kind      string // "partial" or "combo"
	Required  string
	Desired   string
	Text      string
}
