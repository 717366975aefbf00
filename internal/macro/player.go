package macro

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"trait-roller/internal/apperr"
	"trait-roller/internal/input"
	"trait-roller/internal/session"
	"trait-roller/pkg/logger"
)

const (
	DefaultInterStep = 100 * time.Millisecond
	MinInterStep     = 50 * time.Millisecond
	DefaultRepeats   = 1
)

// PlayOptions are the user-tunable playback settings.
type PlayOptions struct {
	InterStep time.Duration
	Repeats   int
}

// ParsePlayOptions reads the delay (milliseconds, fractions allowed) and
// repeat count as typed. Each malformed value falls back to its default; the
// delay is floored at MinInterStep.
func ParsePlayOptions(delayMs, repeats string) PlayOptions {
	opts := PlayOptions{InterStep: DefaultInterStep, Repeats: DefaultRepeats}

	if ms, err := strconv.ParseFloat(strings.TrimSpace(delayMs), 64); err == nil && ms >= 0 {
		opts.InterStep = max(time.Duration(ms*float64(time.Millisecond)), MinInterStep)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(repeats)); err == nil && n > 0 {
		opts.Repeats = n
	}
	return opts
}

// Timings are the fixed waits of playback.
type Timings struct {
	Settle         time.Duration
	BetweenRepeats time.Duration
	MoveSettle     time.Duration
	PressHold      time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		Settle:         500 * time.Millisecond,
		BetweenRepeats: time.Second,
		MoveSettle:     input.MoveSettle,
		PressHold:      input.PressHold,
	}
}

// Driver is the part of input.Pointer playback needs.
type Driver interface {
	MoveTo(x, y int)
	Press(x, y int, b input.Button) error
	Release(x, y int, b input.Button) error
}

// Progress is reported before each item is played.
type Progress struct {
	Repeat, Repeats int
	Item, Items     int
}

func (p Progress) String() string {
	return fmt.Sprintf("Playing %d/%d - Item %d/%d", p.Repeat, p.Repeats, p.Item, p.Items)
}

type Player struct {
	driver     Driver
	log        *logger.Logger
	timings    Timings
	sleep      session.Sleeper
	jitter     func(off int) int
	onProgress func(Progress)
}

type PlayerOption func(*Player)

func WithPlayerTimings(t Timings) PlayerOption { return func(p *Player) { p.timings = t } }

func WithPlayerSleeper(s session.Sleeper) PlayerOption { return func(p *Player) { p.sleep = s } }

// WithJitter replaces the random offset source; fn returns a value in [-off, off].
func WithJitter(fn func(off int) int) PlayerOption { return func(p *Player) { p.jitter = fn } }

func WithProgress(fn func(Progress)) PlayerOption { return func(p *Player) { p.onProgress = fn } }

func NewPlayer(driver Driver, log *logger.Logger, opts ...PlayerOption) *Player {
	if log == nil {
		log = logger.Nop()
	}
	p := &Player{
		driver:  driver,
		log:     log,
		timings: DefaultTimings(),
		sleep:   session.Sleep,
		jitter:  uniformJitter,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func uniformJitter(off int) int {
	return rand.IntN(2*off+1) - off
}

// Play runs items opts.Repeats times. It returns ctx.Err() when cancelled,
// which is checked before every item and during every wait.
func (p *Player) Play(ctx context.Context, items []Item, opts PlayOptions) error {
	if len(items) == 0 {
		return apperr.NewInvalid("sequence is empty")
	}
	if opts.Repeats < 1 {
		opts.Repeats = DefaultRepeats
	}

	p.log.Info("Playback started", "items", len(items), "repeats", opts.Repeats, "inter_step", opts.InterStep)

	if err := p.sleep(ctx, p.timings.Settle); err != nil {
		return err
	}

	for r := 0; r < opts.Repeats; r++ {
		if r > 0 {
			if err := p.sleep(ctx, p.timings.BetweenRepeats); err != nil {
				return err
			}
		}

		for i, item := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			if p.onProgress != nil {
				p.onProgress(Progress{Repeat: r + 1, Repeats: opts.Repeats, Item: i + 1, Items: len(items)})
			}

			if err := p.play(ctx, item); err != nil {
				return err
			}

			if i < len(items)-1 && padAfter(item, items[i+1]) {
				if err := p.sleep(ctx, opts.InterStep); err != nil {
					return err
				}
			}
		}
	}

	p.log.Info("Playback completed", "repeats", opts.Repeats)
	return nil
}

// padAfter reports whether the inter-step gap goes between cur and next.
// Explicit delays carry their own timing and are never padded on either side.
func padAfter(cur, next Item) bool {
	_, curDelay := cur.(Delay)
	_, nextDelay := next.(Delay)
	return !curDelay && !nextDelay
}

func (p *Player) play(ctx context.Context, item Item) error {
	switch it := item.(type) {
	case Delay:
		return p.sleep(ctx, time.Duration(it.Ms)*time.Millisecond)
	case Click:
		return p.click(ctx, it)
	}
	return nil
}

// click moves, settles, then holds the button rather than clicking instantly.
// The button is always released, even when cancelled mid-hold.
func (p *Player) click(ctx context.Context, c Click) error {
	x, y := c.X, c.Y
	if c.RandomOffset > 0 {
		x += p.jitter(c.RandomOffset)
		y += p.jitter(c.RandomOffset)
	}

	p.driver.MoveTo(x, y)
	if err := p.sleep(ctx, p.timings.MoveSettle); err != nil {
		return err
	}

	if err := p.driver.Press(x, y, c.Button); err != nil {
		p.log.Warn("Failed to press mouse button", "x", x, "y", y, "button", c.Button, "error", err)
		return nil
	}
	holdErr := p.sleep(ctx, p.timings.PressHold)
	if err := p.driver.Release(x, y, c.Button); err != nil {
		p.log.Warn("Failed to release mouse button", "x", x, "y", y, "button", c.Button, "error", err)
	}
	return holdErr
}
