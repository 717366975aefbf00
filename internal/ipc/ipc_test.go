package ipc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trait-roller/internal/apperr"
	"trait-roller/pkg/logger"
)

func startServer(t *testing.T, setup func(*Server)) string {
	t.Helper()
	// Unix socket paths are length-limited, so avoid the long t.TempDir().
	dir, err := os.MkdirTemp("", "tr")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "s.sock")

	srv := NewServer(path, logger.Nop())
	setup(srv)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	return path
}

func TestRoundTrip(t *testing.T) {
	got := make(chan []string, 1)
	path := startServer(t, func(s *Server) {
		s.Handle("list", func(args []string) (Result, error) {
			got <- args
			return Result{Message: "2 items", Lines: []string{"a", "b"}}, nil
		})
	})

	resp, err := SendCommand(path, logger.Nop(), "list", "x", "y")

	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Equal(t, "2 items", resp.Message)
	assert.Equal(t, []string{"a", "b"}, resp.Lines)
	assert.Equal(t, []string{"x", "y"}, <-got)
}

func TestErrorCarriesCode(t *testing.T) {
	path := startServer(t, func(s *Server) {
		s.Handle("edit", func([]string) (Result, error) {
			return Result{}, apperr.NewBusy("sequence is locked while recording")
		})
	})

	resp, err := SendCommand(path, logger.Nop(), "edit")

	require.NoError(t, err)
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, string(apperr.ErrBusy), resp.Code)
	assert.Contains(t, resp.Message, "locked")
}

func TestUnknownCommand(t *testing.T) {
	path := startServer(t, func(*Server) {})

	resp, err := SendCommand(path, logger.Nop(), "hideout")

	require.NoError(t, err)
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "Unknown command", resp.Message)
}

func TestServeRemovesSocketOnStop(t *testing.T) {
	dir, err := os.MkdirTemp("", "tr")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "s.sock")

	// a stale file from a crashed daemon must not prevent startup
	require.NoError(t, os.WriteFile(path, nil, 0644))

	srv := NewServer(path, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	require.Eventually(t, func() bool {
		_, err := SendCommand(path, logger.Nop(), "ping")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestCommandsSorted(t *testing.T) {
	s := NewServer("", logger.Nop())
	s.Handle("stopAll", nil)
	s.Handle("playSequence", nil)
	assert.Equal(t, []string{"playSequence", "stopAll"}, s.Commands())
	assert.Equal(t, DefaultSocketPath, s.path)
}

func TestSendCommandWithoutDaemon(t *testing.T) {
	_, err := SendCommand(filepath.Join(t.TempDir(), "none.sock"), logger.Nop(), "status")
	assert.Error(t, err)
}
