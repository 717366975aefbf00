package activity

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"trait-roller/pkg/core"
)

const (
	displayTimeFormat = "15:04:05"
	fileTimeFormat    = "2006-01-02 15:04:05"
)

// WriterSink prints "HH:MM:SS msg" lines, used for the terminal and the panel.
type WriterSink struct {
	mu  sync.Mutex
	out io.Writer
}

func NewWriterSink(out io.Writer) *WriterSink {
	return &WriterSink{out: out}
}

func (w *WriterSink) Write(ev Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := fmt.Fprintf(w.out, "%s %s\n", ev.Time.Format(displayTimeFormat), ev.Message)
	return err
}

// FileSink appends "YYYY-MM-DD HH:MM:SS msg" lines to the activity log.
type FileSink struct {
	file *os.File
	zlog zerolog.Logger
}

// OpenFileSink opens (or creates) the log file for appending.
func OpenFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create activity log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open activity log: %w", err)
	}

	w := zerolog.ConsoleWriter{
		Out:        f,
		NoColor:    true,
		TimeFormat: fileTimeFormat,
		PartsOrder: []string{zerolog.TimestampFieldName, zerolog.MessageFieldName},
	}
	return &FileSink{file: f, zlog: zerolog.New(w)}, nil
}

func (s *FileSink) Write(ev Event) error {
	s.zlog.Log().Time(zerolog.TimestampFieldName, ev.Time).Msg(ev.Message)
	return nil
}

func (s *FileSink) Close() error {
	return s.file.Close()
}

// LoggerSink mirrors activity into the structured debug log.
type LoggerSink struct {
	log core.Logger
}

func NewLoggerSink(log core.Logger) *LoggerSink {
	return &LoggerSink{log: log}
}

func (s *LoggerSink) Write(ev Event) error {
	s.log.Debug("Activity", "message", ev.Message)
	return nil
}
