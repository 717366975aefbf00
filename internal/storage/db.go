package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"trait-roller/internal/models"
	"trait-roller/pkg/logger"
)

type DB struct {
	db  *sql.DB
	log *logger.Logger
	now func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS rolls (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp DATETIME NOT NULL,
    kind TEXT NOT NULL,
    required TEXT NOT NULL,
    desired TEXT NOT NULL,
    ocr_text TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS rolls_timestamp ON rolls (timestamp);
`

// Open opens (creating if needed) the history database at path.
func Open(path string, log *logger.Logger) (*DB, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode so the CLI can read while the daemon writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Debug("Roll history opened", "path", path)
	return &DB{db: db, log: log, now: time.Now}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// AddRoll stores one roll.
func (d *DB) AddRoll(kind, required, desired, text string) error {
	query := `
		INSERT INTO rolls (timestamp, kind, required, desired, ocr_text)
		VALUES (?, ?, ?, ?, ?)
	`
	ts := d.now().UTC().Truncate(time.Second)
	if _, err := d.db.Exec(query, ts, kind, required, desired, text); err != nil {
		return fmt.Errorf("failed to insert roll: %w", err)
	}
	return nil
}

// GetRolls returns up to limit rolls, newest first. limit <= 0 means all.
func (d *DB) GetRolls(limit int) ([]models.RollEntry, error) {
	d.log.Debug("Retrieving rolls from database", "limit", limit)

	query := `
        SELECT id, timestamp, kind, required, desired, ocr_text
        FROM rolls
        ORDER BY timestamp DESC, id DESC
    `
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		d.log.Error("Failed to query rolls", err)
		return nil, fmt.Errorf("failed to query rolls: %w", err)
	}
	defer rows.Close()

	var rolls []models.RollEntry
	for rows.Next() {
		var r models.RollEntry
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Kind, &r.Required, &r.Desired, &r.Text); err != nil {
			d.log.Error("Failed to scan roll", err)
			return nil, fmt.Errorf("failed to scan roll: %w", err)
		}
		rolls = append(rolls, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rolls: %w", err)
	}

	d.log.Debug("Total rolls retrieved", "count", len(rolls))
	return rolls, nil
}

// CountByKind tallies stored rolls per kind.
func (d *DB) CountByKind() (map[string]int, error) {
	rows, err := d.db.Query("SELECT kind, COUNT(*) FROM rolls GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("failed to count rolls: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan roll count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

// Cleanup deletes rolls older than olderThan.
func (d *DB) Cleanup(olderThan time.Duration) error {
	cutoff := d.now().UTC().Truncate(time.Second).Add(-olderThan)
	res, err := d.db.Exec("DELETE FROM rolls WHERE timestamp < ?", cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup old rolls: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		d.log.Info("Removed old rolls", "count", n, "older_than", olderThan)
	}
	return nil
}
