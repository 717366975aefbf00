package app

import (
	"context"
	"sync"
	"time"

	"trait-roller/internal/activity"
	"trait-roller/internal/capture"
	"trait-roller/internal/input"
	"trait-roller/internal/macro"
	"trait-roller/internal/models"
	"trait-roller/internal/roller"
	"trait-roller/internal/session"
	"trait-roller/pkg/config"
	"trait-roller/pkg/logger"
)

// GameFocuser raises the game window before synthetic input.
type GameFocuser interface {
	FocusGame(classNames []string) (bool, error)
}

// HistoryStore keeps notable rolls.
type HistoryStore interface {
	roller.History
	GetRolls(limit int) ([]models.RollEntry, error)
	CountByKind() (map[string]int, error)
	Cleanup(olderThan time.Duration) error
}

// Deps are the outside-world boundaries of the application. Focuser,
// History and Notifier may be nil.
type Deps struct {
	Config   *config.Config
	Log      *logger.Logger
	Feed     *activity.Feed
	Pointer  input.Pointer
	Listener input.Listener
	Capturer capture.Capturer
	OCR      capture.Recognizer
	Notifier roller.Notifier
	History  HistoryStore
	Focuser  GameFocuser
}

// TraitRoller owns the session, the click sequence and every long-running loop.
type TraitRoller struct {
	cfg      *config.Config
	log      *logger.Logger
	feed     *activity.Feed
	pointer  input.Pointer
	listener input.Listener
	capturer capture.Capturer
	ocr      capture.Recognizer
	notifier roller.Notifier
	history  HistoryStore
	focuser  GameFocuser

	session *session.Session
	seq     *macro.Sequence

	rollerOpts []roller.Option
	playerOpts []macro.PlayerOption

	base context.Context
	wg   sync.WaitGroup

	mu       sync.RWMutex
	anchor   *roller.Point
	status   string
	onStatus func(string)
}

type Option func(*TraitRoller)

// WithRollerOptions is appended to the options of every roller run.
func WithRollerOptions(opts ...roller.Option) Option {
	return func(t *TraitRoller) { t.rollerOpts = append(t.rollerOpts, opts...) }
}

// WithPlayerOptions is appended to the options of every playback.
func WithPlayerOptions(opts ...macro.PlayerOption) Option {
	return func(t *TraitRoller) { t.playerOpts = append(t.playerOpts, opts...) }
}

// WithBaseContext parents every loop's context.
func WithBaseContext(ctx context.Context) Option {
	return func(t *TraitRoller) { t.base = ctx }
}

func New(deps Deps, opts ...Option) *TraitRoller {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	t := &TraitRoller{
		cfg:      deps.Config,
		log:      log,
		feed:     deps.Feed,
		pointer:  deps.Pointer,
		listener: deps.Listener,
		capturer: deps.Capturer,
		ocr:      deps.OCR,
		notifier: deps.Notifier,
		history:  deps.History,
		focuser:  deps.Focuser,
		session:  session.New(),
		base:     context.Background(),
		status:   "Idle",
	}
	t.seq = macro.NewSequence(t.session.Editable)
	for _, opt := range opts {
		opt(t)
	}

	t.session.OnChange(func(kind session.Kind, active bool) {
		t.log.Debug("Session changed", "kind", kind.String(), "active", active)
	})
	return t
}

// Sequence exposes the click sequence, e.g. for the rofi editor.
func (t *TraitRoller) Sequence() *macro.Sequence {
	return t.seq
}

// Session exposes the loop flags.
func (t *TraitRoller) Session() *session.Session {
	return t.session
}

// OnStatus registers the status line observer (the panel label).
func (t *TraitRoller) OnStatus(fn func(string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStatus = fn
}

func (t *TraitRoller) setStatus(s string) {
	t.mu.Lock()
	t.status = s
	fn := t.onStatus
	t.mu.Unlock()

	t.log.Debug("Status", "text", s)
	if fn != nil {
		fn(s)
	}
}

// StatusLine returns the latest status text.
func (t *TraitRoller) StatusLine() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Anchor returns the re-roll button position, if set.
func (t *TraitRoller) Anchor() (roller.Point, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.anchor == nil {
		return roller.Point{}, false
	}
	return *t.anchor, true
}

// goLoop runs fn in a tracked goroutine that finishes tok on exit.
func (t *TraitRoller) goLoop(tok *session.Token, fn func(ctx context.Context)) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer tok.Finish()
		fn(tok.Ctx)
	}()
}

// Shutdown stops every loop and waits for them to exit.
func (t *TraitRoller) Shutdown() {
	t.session.StopAll()
	t.wg.Wait()
}
