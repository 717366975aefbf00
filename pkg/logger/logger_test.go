package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(WithoutFile(), WithWriter(&buf), WithLevel(zerolog.DebugLevel))
	require.NoError(t, err)

	log.Debug("capture done", "width", 300)
	log.Error("ocr failed", errors.New("boom"), "attempt", 2)

	out := buf.String()
	assert.Contains(t, out, `"message":"capture done"`)
	assert.Contains(t, out, `"width":300`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"file":"logger_test.go"`)
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(WithoutFile(), WithWriter(&buf), WithLevel(zerolog.WarnLevel))
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestLoggerWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	log, err := NewLogger(WithFile(path))
	require.NoError(t, err)

	log.Info("written to disk", "key", "value")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to disk")
	assert.Contains(t, string(data), "key=value")
}

func TestAddWriter(t *testing.T) {
	log, err := NewLogger(WithoutFile())
	require.NoError(t, err)

	var buf bytes.Buffer
	log.AddWriter(&buf)
	log.Info("late writer")

	assert.Contains(t, buf.String(), "late writer")
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	log.Info("nothing")
	log.Error("nothing", errors.New("x"))
	assert.NoError(t, log.Close())
}
