package macro

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trait-roller/internal/apperr"
	"trait-roller/internal/input"
	"trait-roller/pkg/logger"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "click_sequence.json")
	items := []Item{
		Click{X: 0, Y: 0, Button: input.Left},
		Delay{Ms: 500},
		Click{X: 200, Y: 200, Button: input.Right, RandomOffset: 10},
	}

	require.NoError(t, Save(path, items, logger.Nop()))
	loaded, err := Load(path, logger.Nop())

	require.NoError(t, err)
	assert.Equal(t, items, loaded)
}

func TestLoadMigratesLegacyRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "click_sequence.json")
	legacy := `[
  {"x": 10, "y": 20, "button": "right", "delay_ms": 300},
  {"x": 30, "y": 40, "button": "left"},
  {"type": "delay", "delay_ms": 800}
]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	loaded, err := Load(path, logger.Nop())

	require.NoError(t, err)
	assert.Equal(t, []Item{
		Click{X: 10, Y: 20, Button: input.Right},
		Click{X: 30, Y: 40, Button: input.Left},
		Delay{Ms: 800},
	}, loaded)

	// the migrated click no longer carries delay_ms when written back
	rec := ToRecord(loaded[0])
	assert.Nil(t, rec.DelayMs)
	assert.Equal(t, "click", rec.Type)
}

func TestFromRecordRejectsBadRecords(t *testing.T) {
	ms := 10
	x, y := 1, 2
	off := 60
	for name, rec := range map[string]Record{
		"no coordinates": {Type: "click"},
		"short delay":    {Type: "delay", DelayMs: &ms},
		"missing delay":  {Type: "delay"},
		"big offset":     {X: &x, Y: &y, RandomOffset: &off},
		"bad button":     {X: &x, Y: &y, Button: "middle"},
		"unknown type":   {Type: "scroll"},
	} {
		_, err := FromRecord(rec)
		assert.True(t, apperr.IsCode(err, apperr.ErrValidationFailure), name)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"), logger.Nop())
	assert.True(t, apperr.IsCode(err, apperr.ErrNotFound))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = Load(bad, logger.Nop())
	assert.True(t, apperr.IsCode(err, apperr.ErrPersistenceFailure))
}

func TestSaveRejectsEmptySequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seq.json")
	err := Save(path, nil, logger.Nop())
	assert.True(t, apperr.IsCode(err, apperr.ErrValidationFailure))
	assert.NoFileExists(t, path)
}
