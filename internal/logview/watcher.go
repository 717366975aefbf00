// Package logview reads the activity log back for the `log` command: the last
// lines, then optionally everything appended afterwards.
package logview

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"trait-roller/pkg/logger"
)

// Only lines that start with a full timestamp are parsed
var timestampRegex = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) (.*)$`)

const timestampLayout = "2006-01-02 15:04:05"

// Entry is one activity log line. Time is zero for lines without a timestamp.
type Entry struct {
	Time    time.Time
	Message string
	Raw     string
}

// ParseLine splits an activity log line into its timestamp and message.
func ParseLine(line string) Entry {
	m := timestampRegex.FindStringSubmatch(line)
	if m == nil {
		return Entry{Message: line, Raw: line}
	}
	ts, err := time.ParseInLocation(timestampLayout, m[1], time.Local)
	if err != nil {
		return Entry{Message: line, Raw: line}
	}
	return Entry{Time: ts, Message: m[2], Raw: line}
}

// Increase scanner buffer size to handle long lines
const maxScanTokenSize = 1024 * 1024

type LogWatcher struct {
	path    string
	log     *logger.Logger
	poll    time.Duration
	handler func(Entry)
}

func NewLogWatcher(path string, log *logger.Logger, handler func(Entry)) *LogWatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &LogWatcher{path: path, log: log, poll: 500 * time.Millisecond, handler: handler}
}

// Tail sends the last n lines (all when n <= 0) to the handler and returns
// the offset just past them.
func (w *LogWatcher) Tail(n int) (int64, error) {
	file, err := os.Open(w.path)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if n > 0 && len(lines) > n {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read log file: %w", err)
	}

	for _, line := range lines {
		w.handler(ParseLine(line))
	}

	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("failed to get log offset: %w", err)
	}
	return offset, nil
}

// Follow polls the file from offset until ctx is done, handing every new
// complete line to the handler. A truncated file is re-read from the start.
func (w *LogWatcher) Follow(ctx context.Context, offset int64) error {
	file, err := os.Open(w.path)
	if err != nil {
		w.log.Error("Failed to open log file", err)
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	w.log.Debug("Following log file", "path", w.path, "offset", offset)

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	var partial []byte
	buf := make([]byte, 32*1024)

	for {
		stat, err := file.Stat()
		if err != nil {
			w.log.Error("Failed to stat file", err)
		} else {
			if stat.Size() < offset {
				w.log.Info("File was truncated, resetting",
					"old_size", offset,
					"new_size", stat.Size())
				offset = 0
				partial = nil
			}
			if stat.Size() > offset {
				offset, partial, err = w.readFrom(file, offset, partial, buf)
				if err != nil {
					w.log.Error("Failed to read new log lines", err)
				}
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// readFrom reads everything after offset, emits complete lines and returns
// the new offset plus any trailing partial line.
func (w *LogWatcher) readFrom(file *os.File, offset int64, partial, buf []byte) (int64, []byte, error) {
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, partial, err
	}
	for {
		n, err := file.Read(buf)
		if n > 0 {
			offset += int64(n)
			partial = append(partial, buf[:n]...)
			for {
				i := bytes.IndexByte(partial, '\n')
				if i < 0 {
					break
				}
				w.handler(ParseLine(string(partial[:i])))
				partial = partial[i+1:]
			}
			if len(partial) > maxScanTokenSize {
				w.handler(ParseLine(string(partial)))
				partial = nil
			}
		}
		if err == io.EOF {
			return offset, partial, nil
		}
		if err != nil {
			return offset, partial, err
		}
	}
}
