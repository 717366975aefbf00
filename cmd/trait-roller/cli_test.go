package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trait-roller/internal/app"
	"trait-roller/internal/ipc"
	"trait-roller/pkg/logger"
)

func TestPrintResponse(t *testing.T) {
	tests := []struct {
		name    string
		resp    ipc.Response
		out     string
		wantErr string
	}{
		{
			name: "message only",
			resp: ipc.Response{Status: ipc.StatusSuccess, Message: "Roller started"},
			out:  "Roller started\n",
		},
		{
			name: "lines replace message",
			resp: ipc.Response{Status: ipc.StatusSuccess, Message: "2 items", Lines: []string{"  1. DELAY 50ms", "  2. DELAY 60ms"}},
			out:  "  1. DELAY 50ms\n  2. DELAY 60ms\n",
		},
		{
			name:    "error with code",
			resp:    ipc.Response{Status: ipc.StatusError, Message: "anchor is not set", Code: "NOT_CONFIGURED"},
			wantErr: "anchor is not set (NOT_CONFIGURED)",
		},
		{
			name:    "error without code",
			resp:    ipc.Response{Status: ipc.StatusError, Message: "Unknown command"},
			wantErr: "Unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := printResponse(&buf, tt.resp)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.out, buf.String())
		})
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	a := newCLIApp()
	a.Writer = &buf
	err := a.Run(append([]string{"trait-roller"}, args...))
	return buf.String(), err
}

func TestSeqCommandForwardsArguments(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dir, err := os.MkdirTemp("", "tr")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "s.sock")

	got := make(chan []string, 1)
	srv := ipc.NewServer(path, logger.Nop())
	srv.Handle(app.CmdSeqInsertDelay, func(args []string) (ipc.Result, error) {
		got <- args
		return ipc.Result{Message: "Inserted 500ms delay at 3"}, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	defer func() {
		cancel()
		<-done
	}()
	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	out, err := runCLI(t, "--socket", path, "seq", "insert-delay", "2", "500")

	require.NoError(t, err)
	assert.Equal(t, "Inserted 500ms delay at 3\n", out)
	assert.Equal(t, []string{"2", "500"}, <-got)
}

func TestSeqCommandChecksArgumentCount(t *testing.T) {
	_, err := runCLI(t, "seq", "delete")
	assert.ErrorContains(t, err, "expects 1 arguments")
}

func TestHotkeyWithoutDaemon(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := runCLI(t, "--socket", filepath.Join(t.TempDir(), "none.sock"), "roll")

	assert.ErrorContains(t, err, "daemon not reachable")
}

func TestLogPrintsTail(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	logPath := filepath.Join(home, "trait-roller", "logs", "activity.log")
	require.NoError(t, os.MkdirAll(filepath.Dir(logPath), 0755))
	require.NoError(t, os.WriteFile(logPath, []byte(
		"2024-03-01 10:00:00 Started\n"+
			"2024-03-01 10:00:01 Found MUST HAVE: tough (no second trait)\n"+
			"2024-03-01 10:00:06 Stopped\n"), 0644))

	out, err := runCLI(t, "log", "-n", "2")

	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 10:00:01 Found MUST HAVE: tough (no second trait)\n2024-03-01 10:00:06 Stopped\n", out)
}

func TestBindsIncludesCustomSocket(t *testing.T) {
	out, err := runCLI(t, "--socket", "/tmp/other.sock", "binds")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "bindn = , F7, exec, "))
	assert.True(t, strings.HasSuffix(lines[0], " --socket /tmp/other.sock anchor"))
}
