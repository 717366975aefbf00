package macro

import (
	"context"

	"trait-roller/internal/activity"
	"trait-roller/internal/input"
	"trait-roller/pkg/logger"
)

// PositionSource reports where the pointer is.
type PositionSource interface {
	Position() (x, y int)
}

// Recorder appends a Click to a Sequence for every physical button press.
type Recorder struct {
	listener input.Listener
	pointer  PositionSource
	seq      *Sequence
	feed     activity.Publisher
	log      *logger.Logger
}

func NewRecorder(listener input.Listener, pointer PositionSource, seq *Sequence, feed activity.Publisher, log *logger.Logger) *Recorder {
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{listener: listener, pointer: pointer, seq: seq, feed: feed, log: log}
}

// Record listens until ctx is done. Existing items are kept; new clicks are
// appended after them.
func (r *Recorder) Record(ctx context.Context) error {
	events, err := r.listener.Listen(ctx)
	if err != nil {
		r.log.Error("Failed to start mouse listener", err)
		return err
	}

	if n := r.seq.Len(); n > 0 {
		r.feed.Publishf("Continuing recording... %d clicks so far", n)
	} else {
		r.feed.Publish("Recording... click anywhere, toggle recording again to stop")
	}

	for ev := range events {
		x, y := r.pointer.Position()
		n := r.seq.Append(Click{X: x, Y: y, Button: ev.Button})
		r.log.Debug("Recorded click", "x", x, "y", y, "button", ev.Button, "items", n)
		r.feed.Publish(Format(n-1, Click{X: x, Y: y, Button: ev.Button}))
	}

	r.feed.Publishf("Recording stopped - %d items saved", r.seq.Len())
	return nil
}
