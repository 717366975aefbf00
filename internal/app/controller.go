package app

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"trait-roller/internal/apperr"
	"trait-roller/internal/capture"
	"trait-roller/internal/macro"
	"trait-roller/internal/roller"
	"trait-roller/internal/session"
)

const defaultRollDelay = 25 * time.Millisecond

var previewFrame = color.RGBA{R: 255, A: 255}

// SetAnchor stores the current pointer position as the re-roll button and
// writes a preview of the capture region.
func (t *TraitRoller) SetAnchor() (roller.Point, error) {
	x, y := t.pointer.Position()
	p := roller.Point{X: x, Y: y}

	t.mu.Lock()
	t.anchor = &p
	t.mu.Unlock()

	t.feed.Publishf("Button set: %s", p)
	t.setStatus(fmt.Sprintf("Button at %s", p))
	t.savePreview(p)
	return p, nil
}

func (t *TraitRoller) layout() roller.Layout {
	c := t.cfg.GetCapture()
	return roller.Layout{OffsetX: c.OffsetX, OffsetY: c.OffsetY, Width: c.Width, Height: c.Height}
}

func (t *TraitRoller) savePreview(p roller.Point) {
	if t.capturer == nil {
		return
	}
	rect := t.layout().Region(p)
	img, err := t.capturer.Capture(rect)
	if err != nil {
		t.log.Warn("Failed to capture region preview", "region", rect.String(), "error", err)
		return
	}
	path := t.cfg.GetPreviewPath()
	if err := capture.SavePreview(path, capture.Outline(img, previewFrame)); err != nil {
		t.log.Warn("Failed to save region preview", "error", err)
		return
	}
	t.log.Debug("Region preview saved", "path", path, "region", rect.String())
}

// parseRollDelay reads the pacing delay in milliseconds. Malformed or
// negative values use the 25ms default.
func parseRollDelay(s string) time.Duration {
	ms, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || ms < 0 {
		return defaultRollDelay
	}
	return time.Duration(ms * float64(time.Millisecond))
}

func (t *TraitRoller) rollParams() roller.Params {
	p := roller.Params{
		Layout:   t.layout(),
		Required: roller.ParseTraitList(t.cfg.GetListA()),
		Desired:  roller.ParseTraitList(t.cfg.GetListB()),
		Delay:    parseRollDelay(t.cfg.GetDelay()),
		LogOCR:   t.cfg.GetLogOCR(),
	}
	if a, ok := t.Anchor(); ok {
		p.Anchor = &a
	}
	return p
}

// ToggleRolling starts the roller, or asks the running one to stop.
func (t *TraitRoller) ToggleRolling() (string, error) {
	if t.session.RequestStop(session.Rolling) {
		t.setStatus("Stopped")
		return "Stopping roller", nil
	}

	params := t.rollParams()
	if err := params.Validate(); err != nil {
		if apperr.IsCode(err, apperr.ErrNotConfigured) {
			t.feed.Publish("Set button first")
		}
		return "", err
	}

	tok, ok := t.session.TryStart(t.base, session.Rolling)
	if !ok {
		return "", apperr.NewBusy("roller is already running")
	}

	t.focusGame()

	timings := roller.DefaultTimings()
	timings.Hold = t.cfg.GetHold()
	opts := []roller.Option{
		roller.WithTimings(timings),
		roller.WithChangeDetector(&capture.ChangeDetector{}),
	}
	if t.notifier != nil {
		opts = append(opts, roller.WithNotifier(t.notifier))
	}
	if t.history != nil {
		opts = append(opts, roller.WithHistory(t.history))
	}
	opts = append(opts, t.rollerOpts...)

	reader := capture.NewReader(t.capturer, t.ocr, t.cfg.GetThreshold())
	loop := roller.NewLoop(reader, t.pointer, t.feed, t.log, opts...)

	t.setStatus("ROLLING... toggle again to stop")
	t.goLoop(tok, func(ctx context.Context) {
		out, err := loop.Run(ctx, params)
		if err != nil {
			t.log.Error("Roller ended with error", err, "iterations", out.Iterations)
			t.setStatus("Stopped after errors")
			return
		}
		t.log.Info("Roller finished", "iterations", out.Iterations, "combo", out.Reason == roller.FoundCombo)
		if out.Reason == roller.FoundCombo {
			t.setStatus(fmt.Sprintf("Found %s + %s", out.Result.Required, out.Result.Desired))
		} else {
			t.setStatus("Stopped")
		}
	})
	return "Roller started", nil
}

// ToggleRecording starts appending clicks, or stops the running recorder.
func (t *TraitRoller) ToggleRecording() (string, error) {
	if t.session.RequestStop(session.Recording) {
		return "Stopping recording", nil
	}

	tok, ok := t.session.TryStart(t.base, session.Recording)
	if !ok {
		return "", apperr.NewBusy("cannot record while a sequence is playing")
	}

	rec := macro.NewRecorder(t.listener, t.pointer, t.seq, t.feed, t.log)
	t.setStatus("Recording...")
	t.goLoop(tok, func(ctx context.Context) {
		if err := rec.Record(ctx); err != nil {
			t.feed.Publishf("Error: %v", err)
		}
		t.setStatus(fmt.Sprintf("Recording stopped - %d items saved", t.seq.Len()))
	})
	return "Recording started", nil
}

// PlaySequence replays a snapshot of the sequence. Later edits do not affect
// a playback in progress.
func (t *TraitRoller) PlaySequence() (string, error) {
	if t.session.Active(session.Playing) {
		return "", apperr.NewBusy("sequence is already playing")
	}
	items := t.seq.Items()
	if len(items) == 0 {
		return "", apperr.NewNotFound("click sequence is empty")
	}

	tok, ok := t.session.TryStart(t.base, session.Playing)
	if !ok {
		return "", apperr.NewBusy("cannot play while recording")
	}

	opts := macro.ParsePlayOptions(t.cfg.GetPlayDelay(), t.cfg.GetRepeatCount())
	playerOpts := append([]macro.PlayerOption{
		macro.WithProgress(func(p macro.Progress) { t.setStatus(p.String()) }),
	}, t.playerOpts...)
	player := macro.NewPlayer(t.pointer, t.log, playerOpts...)

	t.focusGame()
	t.setStatus("Playing sequence...")
	t.feed.Publishf("Playing sequence: %d items x %d", len(items), opts.Repeats)

	t.goLoop(tok, func(ctx context.Context) {
		err := player.Play(ctx, items, opts)
		switch {
		case errors.Is(err, context.Canceled):
			t.setStatus("Playback stopped")
			t.feed.Publish("Playback stopped")
		case err != nil:
			t.setStatus("Playback failed")
			t.feed.Publishf("Error: %v", err)
		default:
			t.setStatus("Playback completed")
			t.feed.Publish("Playback completed")
		}
	})
	return fmt.Sprintf("Playing %d items", len(items)), nil
}

// StopAll cancels every running loop.
func (t *TraitRoller) StopAll() string {
	stopped := t.session.StopAll()
	if len(stopped) == 0 {
		return "Nothing running"
	}
	names := make([]string, len(stopped))
	for i, k := range stopped {
		names[i] = k.String()
	}
	return "Stopping " + strings.Join(names, ", ")
}

// focusGame is best effort: a missing window or WM only gets logged.
func (t *TraitRoller) focusGame() {
	if t.focuser == nil {
		return
	}
	found, err := t.focuser.FocusGame(t.cfg.GetWindowClasses())
	if err != nil {
		t.log.Warn("Failed to focus game window", "error", err)
		return
	}
	if !found {
		t.log.Debug("Game window not open")
	}
}

// Status describes the current state, one fact per line.
func (t *TraitRoller) Status() []string {
	rolling, recording, playing := t.session.Snapshot()
	anchor := "not set"
	if a, ok := t.Anchor(); ok {
		anchor = a.String()
	}
	return []string{
		"Button: " + anchor,
		fmt.Sprintf("Rolling: %t", rolling),
		fmt.Sprintf("Recording: %t", recording),
		fmt.Sprintf("Playing: %t", playing),
		fmt.Sprintf("Sequence: %d items", t.seq.Len()),
		"Status: " + t.StatusLine(),
	}
}

// ListSequence renders the sequence in its display format.
func (t *TraitRoller) ListSequence() []string {
	return macro.FormatAll(t.seq.Items())
}

// InsertDelay inserts after selected (1-based, 0 for the end).
func (t *TraitRoller) InsertDelay(selected, ms int) (string, error) {
	pos, err := t.seq.InsertDelay(selected-1, ms)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Inserted %dms delay at %d", ms, pos+1), nil
}

// EditDelay changes item n (1-based).
func (t *TraitRoller) EditDelay(n, ms int) (string, error) {
	if err := t.seq.EditDelay(n-1, ms); err != nil {
		return "", err
	}
	return fmt.Sprintf("Item %d delay set to %dms", n, ms), nil
}

// SetClickOffset changes the jitter of click n (1-based).
func (t *TraitRoller) SetClickOffset(n, off int) (string, error) {
	if err := t.seq.SetClickOffset(n-1, off); err != nil {
		return "", err
	}
	return fmt.Sprintf("Item %d offset set to ±%dpx", n, off), nil
}

// DeleteItem removes item n (1-based).
func (t *TraitRoller) DeleteItem(n int) (string, error) {
	if err := t.seq.Delete(n - 1); err != nil {
		return "", err
	}
	return fmt.Sprintf("Item %d deleted", n), nil
}

func (t *TraitRoller) ClearSequence() (string, error) {
	if err := t.seq.Clear(); err != nil {
		return "", err
	}
	t.setStatus("Sequence cleared")
	return "Sequence cleared", nil
}

func (t *TraitRoller) SaveSequence() (string, error) {
	if err := macro.Save(t.cfg.GetSequencePath(), t.seq.Items(), t.log); err != nil {
		return "", err
	}
	t.setStatus("Sequence saved")
	return "Sequence saved", nil
}

// LoadSequence replaces the in-memory sequence only when the file reads
// cleanly.
func (t *TraitRoller) LoadSequence() (string, error) {
	if !t.session.Editable() {
		return "", apperr.NewBusy("sequence is locked while recording or playing")
	}
	items, err := macro.Load(t.cfg.GetSequencePath(), t.log)
	if err != nil {
		return "", err
	}
	if err := t.seq.Replace(items); err != nil {
		return "", err
	}
	msg := fmt.Sprintf("Sequence loaded - %d items", len(items))
	t.setStatus(msg)
	return msg, nil
}

func (t *TraitRoller) SaveConfig() (string, error) {
	if err := t.cfg.Save(""); err != nil {
		t.feed.Publishf("Save failed: %v", err)
		return "", err
	}
	t.feed.Publish("Config saved")
	return "Config saved", nil
}

// History lists recent notable rolls, newest first, plus per-kind totals.
func (t *TraitRoller) History(limit int) ([]string, error) {
	if t.history == nil {
		return nil, apperr.NewNotConfigured("roll history")
	}
	rolls, err := t.history.GetRolls(limit)
	if err != nil {
		return nil, err
	}
	counts, err := t.history.CountByKind()
	if err != nil {
		return nil, err
	}

	lines := []string{fmt.Sprintf("combos: %d, partials: %d", counts["combo"], counts["partial"])}
	for _, r := range rolls {
		line := fmt.Sprintf("%s %-7s %s", r.Timestamp.Local().Format("2006-01-02 15:04:05"), r.Kind, r.Required)
		if r.Desired != "" {
			line += " + " + r.Desired
		}
		lines = append(lines, line)
	}
	return lines, nil
}
