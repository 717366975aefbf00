package macro

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"trait-roller/internal/apperr"
	"trait-roller/internal/input"
	"trait-roller/pkg/logger"
)

const (
	typeClick = "click"
	typeDelay = "delay"
)

// Record is the on-disk form of one item. Files written before delay items
// existed have no type and may carry a per-click delay_ms.
type Record struct {
	Type         string `json:"type,omitempty"`
	X            *int   `json:"x,omitempty"`
	Y            *int   `json:"y,omitempty"`
	Button       string `json:"button,omitempty"`
	RandomOffset *int   `json:"random_offset,omitempty"`
	DelayMs      *int   `json:"delay_ms,omitempty"`
}

func intPtr(v int) *int { return &v }

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// FromRecord converts a stored record into an Item. A record without a type
// is a legacy click; its delay_ms is discarded.
func FromRecord(r Record) (Item, error) {
	switch r.Type {
	case "", typeClick:
		if r.X == nil || r.Y == nil {
			return nil, apperr.NewInvalid("click record is missing coordinates")
		}
		btn := input.Left
		if r.Button != "" {
			b, err := input.ParseButton(r.Button)
			if err != nil {
				return nil, apperr.NewInvalid(err.Error())
			}
			btn = b
		}
		off := deref(r.RandomOffset)
		if err := validateOffset(off); err != nil {
			return nil, err
		}
		return Click{X: *r.X, Y: *r.Y, Button: btn, RandomOffset: off}, nil
	case typeDelay:
		if r.DelayMs == nil {
			return nil, apperr.NewInvalid("delay record is missing delay_ms")
		}
		if err := validateDelay(*r.DelayMs); err != nil {
			return nil, err
		}
		return Delay{Ms: *r.DelayMs}, nil
	}
	return nil, apperr.NewInvalid(fmt.Sprintf("unknown item type %q", r.Type))
}

// ToRecord converts an Item into its stored form.
func ToRecord(item Item) Record {
	switch it := item.(type) {
	case Click:
		return Record{
			Type:         typeClick,
			X:            intPtr(it.X),
			Y:            intPtr(it.Y),
			Button:       string(it.Button),
			RandomOffset: intPtr(it.RandomOffset),
		}
	case Delay:
		return Record{Type: typeDelay, DelayMs: intPtr(it.Ms)}
	}
	return Record{}
}

// Decode parses a sequence file body.
func Decode(data []byte) ([]Item, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(records))
	for i, r := range records {
		item, err := FromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Encode renders items as an indented JSON list.
func Encode(items []Item) ([]byte, error) {
	records := make([]Record, len(items))
	for i, it := range items {
		records[i] = ToRecord(it)
	}
	return json.MarshalIndent(records, "", "  ")
}

// Load reads a sequence file. A missing file is NotFound; anything else that
// goes wrong is a PersistenceFailure.
func Load(path string, log *logger.Logger) ([]Item, error) {
	log.Debug("Loading click sequence", "path", path)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.NewNotFound("no saved sequence found")
	}
	if err != nil {
		log.Error("Failed to read click sequence", err, "path", path)
		return nil, apperr.NewPersistenceFailure("read", path, err)
	}

	items, err := Decode(data)
	if err != nil {
		log.Error("Failed to parse click sequence", err, "path", path)
		return nil, apperr.NewPersistenceFailure("parse", path, err)
	}

	log.Info("Click sequence loaded", "path", path, "items", len(items))
	return items, nil
}

// Save writes items to path, creating its directory if needed.
func Save(path string, items []Item, log *logger.Logger) error {
	if len(items) == 0 {
		return apperr.NewInvalid("no sequence to save")
	}

	data, err := Encode(items)
	if err != nil {
		return apperr.NewPersistenceFailure("encode", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Error("Failed to create sequence directory", err, "path", path)
		return apperr.NewPersistenceFailure("write", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Error("Failed to write click sequence", err, "path", path)
		return apperr.NewPersistenceFailure("write", path, err)
	}

	log.Info("Click sequence saved", "path", path, "items", len(items))
	return nil
}
