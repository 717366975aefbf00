// Package session tracks which long-running loops are active and hands each
// run its own cancellation token.
package session

import (
	"context"
	"fmt"
	"sync"
)

// Kind identifies a loop.
type Kind int

const (
	Rolling Kind = iota
	Recording
	Playing
	kindCount
)

func (k Kind) String() string {
	switch k {
	case Rolling:
		return "rolling"
	case Recording:
		return "recording"
	case Playing:
		return "playing"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// conflicts lists kinds that may not run alongside the key.
var conflicts = map[Kind][]Kind{
	Recording: {Playing},
	Playing:   {Recording},
}

type slot struct {
	active bool
	gen    uint64
	cancel context.CancelFunc
}

// Session owns one cancellation token per loop kind.
type Session struct {
	mu    sync.Mutex
	slots [kindCount]slot
	gen   uint64
	// onChange, if set, is called after every transition with the new state.
	onChange func(kind Kind, active bool)
}

// New creates an idle session.
func New() *Session {
	return &Session{}
}

// OnChange registers a transition observer. It is called without the lock held.
func (s *Session) OnChange(fn func(kind Kind, active bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Token is the handle a running loop holds. Ctx is cancelled by RequestStop.
type Token struct {
	Ctx  context.Context
	kind Kind
	gen  uint64
	s    *Session
}

// Kind returns the loop kind the token was issued for.
func (t *Token) Kind() Kind { return t.kind }

// Finish clears the flag for this run. Safe to call more than once, and a
// no-op once a newer run of the same kind has started.
func (t *Token) Finish() {
	t.s.mu.Lock()
	sl := &t.s.slots[t.kind]
	if !sl.active || sl.gen != t.gen {
		t.s.mu.Unlock()
		return
	}
	sl.cancel()
	sl.active = false
	sl.cancel = nil
	fn := t.s.onChange
	t.s.mu.Unlock()

	if fn != nil {
		fn(t.kind, false)
	}
}

// TryStart marks kind as active and returns its token. It returns false when
// the kind is already running or a conflicting kind is.
func (s *Session) TryStart(parent context.Context, kind Kind) (*Token, bool) {
	s.mu.Lock()
	if s.slots[kind].active {
		s.mu.Unlock()
		return nil, false
	}
	for _, other := range conflicts[kind] {
		if s.slots[other].active {
			s.mu.Unlock()
			return nil, false
		}
	}

	ctx, cancel := context.WithCancel(parent)
	s.gen++
	s.slots[kind] = slot{active: true, gen: s.gen, cancel: cancel}
	tok := &Token{Ctx: ctx, kind: kind, gen: s.gen, s: s}
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(kind, true)
	}
	return tok, true
}

// RequestStop cancels the running loop of the given kind. The flag itself is
// cleared by the loop when it observes the cancellation and calls Finish.
func (s *Session) RequestStop(kind Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slots[kind]
	if !sl.active {
		return false
	}
	sl.cancel()
	return true
}

// StopAll requests every active loop to stop and returns the kinds it signalled.
func (s *Session) StopAll() []Kind {
	var stopped []Kind
	for k := Kind(0); k < kindCount; k++ {
		if s.RequestStop(k) {
			stopped = append(stopped, k)
		}
	}
	return stopped
}

// Active reports whether a loop of the given kind is running.
func (s *Session) Active(kind Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[kind].active
}

// Editable reports whether the click sequence may be mutated right now.
func (s *Session) Editable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.slots[Recording].active && !s.slots[Playing].active
}

// Snapshot returns the three flags at once.
func (s *Session) Snapshot() (rolling, recording, playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[Rolling].active, s.slots[Recording].active, s.slots[Playing].active
}
