package roller

import (
	"fmt"
	"image"

	"trait-roller/internal/apperr"
)

// Point is a screen coordinate, used for the re-roll button anchor.
type Point struct {
	X, Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Layout places the trait capture rectangle relative to the anchor.
// The defaults were measured against RimWorld's character creation screen
// at 1920x1080.
type Layout struct {
	OffsetX int `json:"offset_x"`
	OffsetY int `json:"offset_y"`
	Width   int `json:"width"`
	Height  int `json:"height"`
}

var DefaultLayout = Layout{OffsetX: -770, OffsetY: 280, Width: 300, Height: 100}

// Region returns the capture rectangle for anchor.
func (l Layout) Region(anchor Point) image.Rectangle {
	x := anchor.X + l.OffsetX
	y := anchor.Y + l.OffsetY
	return image.Rect(x, y, x+l.Width, y+l.Height)
}

func (l Layout) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return apperr.NewInvalid(fmt.Sprintf("capture size must be positive, got %dx%d", l.Width, l.Height))
	}
	return nil
}
