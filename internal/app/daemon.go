package app

import (
	"context"
	"time"

	fyneapp "fyne.io/fyne/v2/app"

	"trait-roller/internal/ipc"
	"trait-roller/internal/rofi"
)

const (
	historyRetention = 24 * time.Hour
	historySweep     = time.Hour
)

// DaemonOptions configure RunDaemon.
type DaemonOptions struct {
	SocketPath string
	// Headless skips the desktop panel; the activity feed goes to stdout only.
	Headless bool
}

// RunDaemon serves hotkey commands until ctx is done or the panel is closed.
func (r *Runtime) RunDaemon(ctx context.Context, opts DaemonOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := r.Roller
	srv := ipc.NewServer(opts.SocketPath, t.log)
	menu := rofi.NewSequenceEditor(t.seq, t.cfg.GetRofiThemePath(), t.log)
	t.RegisterCommands(srv, menu)

	if opts.Headless {
		return t.Serve(ctx, srv, nil)
	}

	a := fyneapp.NewWithID("trait-roller")
	panel := NewPanel(a, t, t.cfg, menu, t.log)
	r.Feed.AddSink(panel)

	errc := make(chan error, 1)
	go func() {
		errc <- t.Serve(ctx, srv, panel.Reload)
		a.Quit()
	}()

	t.log.Info("Showing control panel")
	panel.ShowAndRun()
	cancel()
	return <-errc
}

// Serve runs the IPC server, config reloading and history cleanup until ctx
// is done, then stops every loop.
func (t *TraitRoller) Serve(ctx context.Context, srv *ipc.Server, onReload func()) error {
	if t.history != nil {
		go t.sweepHistory(ctx)
	}

	if t.cfg.GetPath() != "" {
		err := t.cfg.Watch(ctx, func() {
			t.feed.Publish("Config loaded")
			if onReload != nil {
				onReload()
			}
		})
		if err != nil {
			t.log.Warn("Config hot reload disabled", "error", err)
		}
	}

	err := srv.Serve(ctx)
	t.Shutdown()
	return err
}

func (t *TraitRoller) sweepHistory(ctx context.Context) {
	ticker := time.NewTicker(historySweep)
	defer ticker.Stop()
	for {
		if err := t.history.Cleanup(historyRetention); err != nil {
			t.log.Error("Failed to clean roll history", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
