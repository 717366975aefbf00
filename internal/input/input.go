package input

import (
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"

	"trait-roller/pkg/logger"
)

// Button is a mouse button identity as stored in sequence files.
type Button string

const (
	Left  Button = "left"
	Right Button = "right"
)

// ParseButton accepts "left"/"right"; anything else is an error.
func ParseButton(s string) (Button, error) {
	switch Button(s) {
	case Left, Right:
		return Button(s), nil
	}
	return "", fmt.Errorf("unknown mouse button %q", s)
}

// Title returns the display name used in sequence listings.
func (b Button) Title() string {
	if b == Right {
		return "Right"
	}
	return "Left"
}

// Pointer is the synthetic input boundary used by the roller and the player.
type Pointer interface {
	Position() (x, y int)
	MoveTo(x, y int)
	Press(x, y int, b Button) error
	Release(x, y int, b Button) error
	Click(x, y int) error
}

// Robot drives the real pointer through robotgo.
type Robot struct {
	log *logger.Logger
}

func NewRobot(log *logger.Logger) *Robot {
	return &Robot{log: log}
}

func (r *Robot) Position() (int, int) {
	return robotgo.Location()
}

func (r *Robot) MoveTo(x, y int) {
	robotgo.Move(x, y)
}

func (r *Robot) Press(x, y int, b Button) error {
	r.log.Debug("Pressing mouse button", "x", x, "y", y, "button", b)
	robotgo.Move(x, y)
	robotgo.Toggle(string(b), "down")
	return nil
}

func (r *Robot) Release(x, y int, b Button) error {
	r.log.Debug("Releasing mouse button", "x", x, "y", y, "button", b)
	robotgo.Move(x, y)
	robotgo.Toggle(string(b), "up")
	return nil
}

func (r *Robot) Click(x, y int) error {
	robotgo.Move(x, y)
	robotgo.Click(string(Left))
	return nil
}

// HumanClick timing: settle after moving, then hold the button.
const (
	MoveSettle = 20 * time.Millisecond
	PressHold  = 50 * time.Millisecond
)
