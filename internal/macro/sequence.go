package macro

import (
	"fmt"
	"sync"

	"trait-roller/internal/apperr"
)

// NoSelection inserts at the end of the sequence.
const NoSelection = -1

// Sequence is the in-memory click sequence. Edits are refused while the
// guard reports the sequence as locked (recording or playback running);
// Append is how the recorder writes and is never guarded.
type Sequence struct {
	mu       sync.Mutex
	items    []Item
	editable func() bool
}

// NewSequence creates an empty sequence. editable may be nil.
func NewSequence(editable func() bool) *Sequence {
	return &Sequence{editable: editable}
}

// Items returns a copy of the current items.
func (s *Sequence) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

func (s *Sequence) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Append adds an item at the end.
func (s *Sequence) Append(item Item) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
	return len(s.items)
}

func (s *Sequence) checkEditable() error {
	if s.editable != nil && !s.editable() {
		return apperr.NewBusy("sequence cannot be edited while recording or playing")
	}
	return nil
}

func (s *Sequence) checkIndex(i int) error {
	if i < 0 || i >= len(s.items) {
		return apperr.NewNotFound(fmt.Sprintf("no item %d in a sequence of %d", i+1, len(s.items)))
	}
	return nil
}

// InsertDelay inserts a delay after the selected index, or at the end for
// NoSelection. It returns the index of the new item.
func (s *Sequence) InsertDelay(selected, ms int) (int, error) {
	if err := s.checkEditable(); err != nil {
		return 0, err
	}
	if err := validateDelay(ms); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	pos := len(s.items)
	if selected != NoSelection {
		if err := s.checkIndex(selected); err != nil {
			return 0, err
		}
		pos = selected + 1
	}
	s.insertAt(pos, Delay{Ms: ms})
	return pos, nil
}

// InsertDelayAfter inserts a delay directly after item i.
func (s *Sequence) InsertDelayAfter(i, ms int) (int, error) {
	if i == NoSelection {
		return 0, apperr.NewNotFound("no item selected")
	}
	return s.InsertDelay(i, ms)
}

func (s *Sequence) insertAt(pos int, item Item) {
	s.items = append(s.items, nil)
	copy(s.items[pos+1:], s.items[pos:])
	s.items[pos] = item
}

// EditDelay changes the duration of the delay at i.
func (s *Sequence) EditDelay(i, ms int) error {
	if err := s.checkEditable(); err != nil {
		return err
	}
	if err := validateDelay(ms); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if _, ok := s.items[i].(Delay); !ok {
		return apperr.NewInvalid(fmt.Sprintf("item %d is not a delay", i+1))
	}
	s.items[i] = Delay{Ms: ms}
	return nil
}

// SetClickOffset changes the random offset of the click at i.
func (s *Sequence) SetClickOffset(i, off int) error {
	if err := s.checkEditable(); err != nil {
		return err
	}
	if err := validateOffset(off); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(i); err != nil {
		return err
	}
	c, ok := s.items[i].(Click)
	if !ok {
		return apperr.NewInvalid(fmt.Sprintf("item %d is not a click", i+1))
	}
	c.RandomOffset = off
	s.items[i] = c
	return nil
}

// Delete removes item i.
func (s *Sequence) Delete(i int) error {
	if err := s.checkEditable(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// Clear empties the sequence.
func (s *Sequence) Clear() error {
	if err := s.checkEditable(); err != nil {
		return err
	}
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	return nil
}

// Replace swaps in a loaded sequence.
func (s *Sequence) Replace(items []Item) error {
	if err := s.checkEditable(); err != nil {
		return err
	}
	s.mu.Lock()
	s.items = append([]Item(nil), items...)
	s.mu.Unlock()
	return nil
}
