// Package macro records, edits, stores and replays click/delay sequences.
package macro

import (
	"fmt"

	"trait-roller/internal/apperr"
	"trait-roller/internal/input"
)

// Limits enforced at the edit boundary.
const (
	MinDelayMs = 50
	MaxDelayMs = 30000
	MaxOffset  = 50
)

// Item is either a Click or a Delay.
type Item interface {
	isItem()
}

// Click presses Button at (X, Y), each coordinate shifted by a uniform random
// amount in [-RandomOffset, RandomOffset].
type Click struct {
	X, Y         int
	Button       input.Button
	RandomOffset int
}

// Delay pauses playback.
type Delay struct {
	Ms int
}

func (Click) isItem() {}
func (Delay) isItem() {}

func validateDelay(ms int) error {
	if ms < MinDelayMs || ms > MaxDelayMs {
		return apperr.NewOutOfRange("delay_ms", ms, MinDelayMs, MaxDelayMs)
	}
	return nil
}

func validateOffset(off int) error {
	if off < 0 || off > MaxOffset {
		return apperr.NewOutOfRange("random_offset", off, 0, MaxOffset)
	}
	return nil
}

// Format renders one numbered line of the sequence listing.
func Format(i int, item Item) string {
	switch it := item.(type) {
	case Click:
		line := fmt.Sprintf("%3d. %s click at (%d, %d)", i+1, it.Button.Title(), it.X, it.Y)
		if it.RandomOffset > 0 {
			line += fmt.Sprintf(" [±%dpx]", it.RandomOffset)
		}
		return line
	case Delay:
		return fmt.Sprintf("%3d. DELAY %dms", i+1, it.Ms)
	}
	return fmt.Sprintf("%3d. ?", i+1)
}

// FormatAll renders the whole listing.
func FormatAll(items []Item) []string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = Format(i, it)
	}
	return lines
}
