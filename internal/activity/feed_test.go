package activity

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu     sync.Mutex
	events []Event
}

func (m *memorySink) Write(ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *memorySink) messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev.Message)
	}
	return out
}

func TestFeedPreservesOrderAndDedupes(t *testing.T) {
	sink := &memorySink{}
	feed := NewFeed(nil, sink)

	for _, msg := range []string{"Started", "Error: x", "Error: x", "Error: x", "Stopped", "Error: x"} {
		feed.Publish(msg)
	}
	feed.Close()

	assert.Equal(t, []string{"Started", "Error: x", "Stopped", "Error: x"}, sink.messages())
}

func TestFeedFansOutToAllSinks(t *testing.T) {
	a, b := &memorySink{}, &memorySink{}
	feed := NewFeed(nil, a)
	feed.AddSink(b)

	feed.Publishf("COMBO: %s + %s", "tough", "jogger")
	feed.Close()

	assert.Equal(t, []string{"COMBO: tough + jogger"}, a.messages())
	assert.Equal(t, []string{"COMBO: tough + jogger"}, b.messages())
}

func TestFeedConcurrentProducers(t *testing.T) {
	sink := &memorySink{}
	feed := NewFeed(nil, sink)

	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				feed.Publishf("producer %d line %d", p, i)
			}
		}(p)
	}
	wg.Wait()
	feed.Close()

	assert.Len(t, sink.messages(), 800)
}

func TestFeedIgnoresPublishAfterClose(t *testing.T) {
	sink := &memorySink{}
	feed := NewFeed(nil, sink)
	feed.Close()
	feed.Publish("late")
	feed.Close()

	assert.Empty(t, sink.messages())
}

func TestWriterSinkFormat(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf)

	ts := time.Date(2026, 1, 2, 15, 4, 5, 0, time.Local)
	require.NoError(t, sink.Write(Event{Time: ts, Message: "Button set: (100, 200)"}))

	assert.Equal(t, "15:04:05 Button set: (100, 200)\n", buf.String())
}

func TestFileSinkAppendsTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "activity.log")
	sink, err := OpenFileSink(path)
	require.NoError(t, err)

	feed := NewFeed(nil, sink)
	feed.Publish("Started")
	feed.Publish("Stopped")
	feed.Close()
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} Started`, lines[0])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} Stopped`, lines[1])
}
