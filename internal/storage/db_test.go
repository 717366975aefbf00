package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAddAndGetRolls(t *testing.T) {
	db := openTemp(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	db.now = func() time.Time { return clock }

	require.NoError(t, db.AddRoll("partial", "tough", "", "Tough, Optimist"))
	clock = base.Add(time.Minute)
	require.NoError(t, db.AddRoll("combo", "tough", "jogger", "Tough, Jogger"))

	rolls, err := db.GetRolls(0)
	require.NoError(t, err)
	require.Len(t, rolls, 2)
	assert.Equal(t, "combo", rolls[0].Kind)
	assert.Equal(t, "jogger", rolls[0].Desired)
	assert.True(t, rolls[0].Timestamp.Equal(base.Add(time.Minute)))
	assert.Equal(t, "partial", rolls[1].Kind)
	assert.Equal(t, "Tough, Optimist", rolls[1].Text)

	limited, err := db.GetRolls(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	counts, err := db.CountByKind()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"partial": 1, "combo": 1}, counts)
}

func TestCleanup(t *testing.T) {
	db := openTemp(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	db.now = func() time.Time { return clock }

	require.NoError(t, db.AddRoll("partial", "tough", "", "old"))
	clock = base.Add(23 * time.Hour)
	require.NoError(t, db.AddRoll("partial", "tough", "", "recent"))

	clock = base.Add(25 * time.Hour)
	require.NoError(t, db.Cleanup(24*time.Hour))

	rolls, err := db.GetRolls(0)
	require.NoError(t, err)
	require.Len(t, rolls, 1)
	assert.Equal(t, "recent", rolls[0].Text)
}
