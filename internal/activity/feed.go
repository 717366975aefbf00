// Package activity is the user-facing event log: any goroutine may publish,
// a single drain goroutine dedupes and fans out to the display and the log file.
package activity

import (
	"fmt"
	"sync"
	"time"

	"trait-roller/pkg/logger"
)

// Event is one line of activity.
type Event struct {
	Time    time.Time
	Message string
}

// Sink receives events in publish order from the drain goroutine.
type Sink interface {
	Write(Event) error
}

// Publisher is what loops depend on.
type Publisher interface {
	Publish(msg string)
	Publishf(format string, args ...any)
}

// Feed is an unbounded single-consumer queue.
type Feed struct {
	mu      sync.Mutex
	pending []Event
	sinks   []Sink
	closed  bool
	wake    chan struct{}
	done    chan struct{}
	last    string
	now     func() time.Time
	log     *logger.Logger
}

// NewFeed starts the drain goroutine.
func NewFeed(log *logger.Logger, sinks ...Sink) *Feed {
	if log == nil {
		log = logger.Nop()
	}
	f := &Feed{
		sinks: sinks,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
		now:   time.Now,
		log:   log,
	}
	go f.drain()
	return f
}

// AddSink attaches another output. Events already drained are not replayed.
func (f *Feed) AddSink(s Sink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, s)
}

// Publish enqueues a message. It never blocks.
func (f *Feed) Publish(msg string) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.pending = append(f.pending, Event{Time: f.now(), Message: msg})
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// Publishf formats and enqueues a message.
func (f *Feed) Publishf(format string, args ...any) {
	f.Publish(fmt.Sprintf(format, args...))
}

// Close flushes queued events and stops the drain goroutine.
func (f *Feed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		<-f.done
		return
	}
	f.closed = true
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
	<-f.done
}

func (f *Feed) drain() {
	defer close(f.done)
	for range f.wake {
		f.mu.Lock()
		batch := f.pending
		f.pending = nil
		sinks := append([]Sink(nil), f.sinks...)
		closed := f.closed
		f.mu.Unlock()

		for _, ev := range batch {
			if ev.Message == f.last {
				continue
			}
			f.last = ev.Message
			for _, s := range sinks {
				if err := s.Write(ev); err != nil {
					f.log.Error("Activity sink write failed", err, "message", ev.Message)
				}
			}
		}

		if closed {
			return
		}
	}
}
