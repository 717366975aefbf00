package logview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu      sync.Mutex
	entries []Entry
}

func (c *collector) add(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
}

func (c *collector) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Message
	}
	return out
}

func TestParseLine(t *testing.T) {
	e := ParseLine("2024-03-01 10:15:30 COMBO: tough + jogger")
	assert.Equal(t, "COMBO: tough + jogger", e.Message)
	assert.Equal(t, 2024, e.Time.Year())
	assert.Equal(t, 30, e.Time.Second())

	raw := ParseLine("continuation without timestamp")
	assert.True(t, raw.Time.IsZero())
	assert.Equal(t, "continuation without timestamp", raw.Message)
}

func writeLines(t *testing.T, path string, n int) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	require.NoError(t, err)
	defer f.Close()
	for i := 1; i <= n; i++ {
		_, err := fmt.Fprintf(f, "2024-03-01 10:00:%02d line %d\n", i, i)
		require.NoError(t, err)
	}
}

func TestTailKeepsLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	writeLines(t, path, 5)

	c := &collector{}
	offset, err := NewLogWatcher(path, nil, c.add).Tail(2)

	require.NoError(t, err)
	assert.Equal(t, []string{"line 4", "line 5"}, c.messages())
	info, _ := os.Stat(path)
	assert.Equal(t, info.Size(), offset)
}

func TestTailMissingFile(t *testing.T) {
	_, err := NewLogWatcher(filepath.Join(t.TempDir(), "nope.log"), nil, func(Entry) {}).Tail(10)
	assert.Error(t, err)
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	writeLines(t, path, 1)

	c := &collector{}
	w := NewLogWatcher(path, nil, c.add)
	w.poll = 10 * time.Millisecond
	offset, err := w.Tail(0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Follow(ctx, offset) }()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("2024-03-01 10:01:00 Started\n2024-03-01 10:01:01 Stop")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(c.messages()) == 2 }, 2*time.Second, 10*time.Millisecond)

	_, err = f.WriteString("ped\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Eventually(t, func() bool { return len(c.messages()) == 3 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"line 1", "Started", "Stopped"}, c.messages())
}
