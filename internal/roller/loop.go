// Package roller drives the re-roll loop: capture the trait panel, read it,
// match it against the required and desired lists, and click on until a
// combo shows up.
package roller

import (
	"context"
	"errors"
	"image"
	"time"

	"trait-roller/internal/activity"
	"trait-roller/internal/apperr"
	"trait-roller/internal/capture"
	"trait-roller/internal/session"
	"trait-roller/pkg/logger"
)

// State names where an iteration currently is.
type State int

const (
	Idle State = iota
	Settling
	Capturing
	Deciding
	Holding
	Clicking
	Pacing
)

func (s State) String() string {
	switch s {
	case Settling:
		return "settling"
	case Capturing:
		return "capturing"
	case Deciding:
		return "deciding"
	case Holding:
		return "holding"
	case Clicking:
		return "clicking"
	case Pacing:
		return "pacing"
	}
	return "idle"
}

// Timings are the fixed waits of one iteration.
type Timings struct {
	// Settle lets the game redraw after the previous click.
	Settle time.Duration
	// Hold keeps a partial match on screen for the user to look at.
	Hold time.Duration
	// ErrorBackoff follows a failed capture, read or click.
	ErrorBackoff time.Duration
	// MaxConsecutiveFailures ends the run; zero means never.
	MaxConsecutiveFailures int
}

func DefaultTimings() Timings {
	return Timings{
		Settle:                 100 * time.Millisecond,
		Hold:                   5 * time.Second,
		ErrorBackoff:           100 * time.Millisecond,
		MaxConsecutiveFailures: 50,
	}
}

// TextReader is the capture pipeline; capture.Reader implements it.
type TextReader interface {
	Read(rect image.Rectangle) (string, *image.Gray, error)
}

// Clicker issues the re-roll click.
type Clicker interface {
	Click(x, y int) error
}

// Notifier shows the success message. It may block until dismissed.
type Notifier interface {
	Notify(title, message string) error
}

// History stores notable rolls.
type History interface {
	AddRoll(kind, required, desired, text string) error
}

// Params is everything one run needs, fixed for its duration.
type Params struct {
	Anchor   *Point
	Layout   Layout
	Required TraitList
	Desired  TraitList
	Delay    time.Duration
	LogOCR   bool
}

// Validate reports NotConfigured when no anchor has been set.
func (p Params) Validate() error {
	if p.Anchor == nil {
		return apperr.NewNotConfigured("anchor")
	}
	return p.Layout.Validate()
}

// StopReason says why Run returned.
type StopReason int

const (
	Cancelled StopReason = iota
	FoundCombo
	TooManyFailures
)

// Outcome summarises a finished run.
type Outcome struct {
	Reason     StopReason
	Result     MatchResult
	Iterations int
}

type Loop struct {
	reader   TextReader
	clicker  Clicker
	feed     activity.Publisher
	log      *logger.Logger
	notifier Notifier
	history  History
	detector *capture.ChangeDetector
	timings  Timings
	sleep    session.Sleeper
	now      func() time.Time
	onState  func(State)
}

type Option func(*Loop)

func WithTimings(t Timings) Option { return func(l *Loop) { l.timings = t } }

func WithSleeper(s session.Sleeper) Option { return func(l *Loop) { l.sleep = s } }

func WithClock(now func() time.Time) Option { return func(l *Loop) { l.now = now } }

// WithStateHook observes every state transition, in order.
func WithStateHook(fn func(State)) Option { return func(l *Loop) { l.onState = fn } }

func WithNotifier(n Notifier) Option { return func(l *Loop) { l.notifier = n } }

func WithHistory(h History) Option { return func(l *Loop) { l.history = h } }

// WithChangeDetector warns in the debug log when a capture is identical to
// the one before it.
func WithChangeDetector(d *capture.ChangeDetector) Option {
	return func(l *Loop) { l.detector = d }
}

func NewLoop(reader TextReader, clicker Clicker, feed activity.Publisher, log *logger.Logger, opts ...Option) *Loop {
	if log == nil {
		log = logger.Nop()
	}
	l := &Loop{
		reader:  reader,
		clicker: clicker,
		feed:    feed,
		log:     log,
		timings: DefaultTimings(),
		sleep:   session.Sleep,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loop) setState(s State) {
	if l.onState != nil {
		l.onState(s)
	}
}

// Run loops until ctx is cancelled, a combo is found or too many
// consecutive iterations fail. Cancellation is observed at the top of each
// iteration and at every wait; an in-flight read is never interrupted.
func (l *Loop) Run(ctx context.Context, p Params) (Outcome, error) {
	if err := p.Validate(); err != nil {
		return Outcome{}, err
	}

	anchor := *p.Anchor
	rect := p.Layout.Region(anchor)
	if l.detector != nil {
		l.detector.Reset()
	}

	l.log.Info("Roller started",
		"anchor", anchor.String(),
		"region", rect.String(),
		"required", len(p.Required),
		"desired", len(p.Desired),
		"delay", p.Delay)
	l.feed.Publish("Started")
	defer func() {
		l.setState(Idle)
		l.feed.Publish("Stopped")
	}()

	var out Outcome
	failures := 0

	// fail logs err and backs off. It returns a non-nil error once the run
	// should end.
	fail := func(err error) error {
		failures++
		l.log.Error("Roll iteration failed", err, "consecutive", failures)
		l.feed.Publishf("Error: %v", err)
		if limit := l.timings.MaxConsecutiveFailures; limit > 0 && failures >= limit {
			l.feed.Publishf("Giving up after %d consecutive errors", failures)
			out.Reason = TooManyFailures
			return err
		}
		if werr := l.sleep(ctx, l.timings.ErrorBackoff); werr != nil {
			return werr
		}
		return nil
	}

	for {
		if ctx.Err() != nil {
			return out, nil
		}
		start := l.now()
		out.Iterations++

		l.setState(Settling)
		if err := l.sleep(ctx, l.timings.Settle); err != nil {
			return out, nil
		}

		l.setState(Capturing)
		text, bin, err := l.reader.Read(rect)
		if err != nil {
			if stop := fail(err); stop != nil {
				return out, l.stopError(stop)
			}
			continue
		}
		l.checkChanged(bin, out.Iterations)

		l.setState(Deciding)
		res := Match(text, p.Required, p.Desired)
		l.report(res, text, p.LogOCR)

		switch res.Kind {
		case Combo:
			out.Reason = FoundCombo
			out.Result = res
			l.record(res, text)
			l.feed.Publish("★★★ FOUND COMBO ★★★")
			if l.notifier != nil {
				if err := l.notifier.Notify("SUCCESS", "Found trait combo!"); err != nil {
					l.log.Error("Failed to show combo notification", err)
				}
			}
			return out, nil
		case Partial:
			l.record(res, text)
			l.feed.Publishf("Found MUST HAVE trait but no second trait - pausing %s", l.timings.Hold)
			l.feed.Publish("Waiting for user to decide...")
			l.setState(Holding)
			if err := l.sleep(ctx, l.timings.Hold); err != nil {
				return out, nil
			}
		}

		// A stop requested during a read or a hold must not click past the
		// current subject.
		if ctx.Err() != nil {
			return out, nil
		}

		l.setState(Clicking)
		if err := l.clicker.Click(anchor.X, anchor.Y); err != nil {
			if stop := fail(err); stop != nil {
				return out, l.stopError(stop)
			}
			continue
		}
		failures = 0

		l.setState(Pacing)
		if wait := p.Delay - l.now().Sub(start); wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return out, nil
			}
		}
	}
}

// stopError hides context errors, which are a normal way to end a run.
func (l *Loop) stopError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (l *Loop) report(res MatchResult, text string, logOCR bool) {
	preview := Preview(text, ocrPreviewLen)
	switch res.Kind {
	case None:
		if logOCR && preview != "" {
			l.feed.Publishf("OCR: %s", preview)
		}
	case Partial:
		if logOCR {
			l.feed.Publishf("OCR: %s", preview)
		}
		l.feed.Publishf("Found MUST HAVE: %s (no second trait)", res.Required)
	case Combo:
		if logOCR {
			l.feed.Publishf("OCR: %s", preview)
		}
		l.feed.Publishf("COMBO: %s + %s", res.Required, res.Desired)
	}
}

func (l *Loop) record(res MatchResult, text string) {
	if l.history == nil {
		return
	}
	if err := l.history.AddRoll(res.Kind.String(), res.Required, res.Desired, Preview(text, 200)); err != nil {
		l.log.Error("Failed to record roll", err, "kind", res.Kind.String())
	}
}

func (l *Loop) checkChanged(bin *image.Gray, iteration int) {
	if l.detector == nil || bin == nil {
		return
	}
	changed, err := l.detector.Changed(bin)
	if err != nil {
		l.log.Debug("Failed to hash capture", "error", err)
		return
	}
	if !changed && iteration > 1 {
		l.log.Warn("Capture unchanged since the last click", "iteration", iteration)
	}
}
