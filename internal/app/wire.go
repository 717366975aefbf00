package app

import (
	"context"
	"os"

	"trait-roller/internal/activity"
	"trait-roller/internal/capture"
	"trait-roller/internal/input"
	"trait-roller/internal/storage"
	"trait-roller/internal/wm"
	"trait-roller/pkg/global"
)

// Runtime is a TraitRoller wired to the real desktop.
type Runtime struct {
	Roller  *TraitRoller
	Feed    *activity.Feed
	closers []func() error
}

// NewRuntime builds the application from the global config, logger and
// notifier. Optional pieces (history, window focus, sound) that fail to
// initialize are logged and left out.
func NewRuntime(ctx context.Context) (*Runtime, error) {
	cfg, log, notifier := global.GetAll()
	r := &Runtime{}

	sinks := []activity.Sink{activity.NewWriterSink(os.Stdout), activity.NewLoggerSink(log)}
	if fs, err := activity.OpenFileSink(cfg.GetActivityLogPath()); err != nil {
		log.Warn("Activity log file unavailable", "error", err)
	} else {
		sinks = append(sinks, fs)
		r.closers = append(r.closers, fs.Close)
	}
	r.Feed = activity.NewFeed(log, sinks...)

	ocr, err := capture.NewTesseract(cfg.GetOCRLanguage())
	if err != nil {
		r.Close()
		return nil, err
	}
	r.closers = append([]func() error{ocr.Close}, r.closers...)

	deps := Deps{
		Config:   cfg,
		Log:      log,
		Feed:     r.Feed,
		Pointer:  input.NewRobot(log),
		Listener: input.NewHookListener(log),
		Capturer: capture.Screen{},
		OCR:      ocr,
	}

	if db, err := storage.Open(cfg.GetHistoryPath(), log); err != nil {
		log.Warn("Roll history disabled", "error", err)
	} else {
		deps.History = db
		r.closers = append([]func() error{db.Close}, r.closers...)
	}

	if m, err := wm.NewManager(log); err != nil {
		log.Warn("Game window focus disabled", "error", err)
	} else {
		deps.Focuser = m
	}

	var sound SoundPlayer
	if sn := global.GetSoundNotifier(); sn != nil {
		sound = sn
	}
	deps.Notifier = NewComboNotifier(sound, notifier, log)

	r.Roller = New(deps, WithBaseContext(ctx))
	return r, nil
}

// Close stops the loops, flushes the feed and releases resources.
func (r *Runtime) Close() {
	if r.Roller != nil {
		r.Roller.Shutdown()
	}
	if r.Feed != nil {
		r.Feed.Close()
	}
	for _, c := range r.closers {
		c()
	}
}
