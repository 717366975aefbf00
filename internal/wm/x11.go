package wm

import (
	"fmt"
	"os/exec"
	"strings"
)

type X11 struct{}

func NewX11() (WindowManager, error) {
	if _, err := exec.LookPath("xdotool"); err != nil {
		return nil, fmt.Errorf("xdotool is required for X11 support but was not found: %w", err)
	}
	return &X11{}, nil
}

func (x *X11) Name() string {
	return "X11"
}

// firstLine returns the first window id in xdotool search output.
func firstLine(out []byte) string {
	return strings.Split(strings.TrimSpace(string(out)), "\n")[0]
}

func (x *X11) FindWindow(classNames []string) (Window, error) {
	for _, class := range classNames {
		out, err := exec.Command("xdotool", "search", "--class", class).Output()
		if err != nil || len(out) == 0 {
			continue
		}
		windowID := firstLine(out)

		titleOut, err := exec.Command("xdotool", "getwindowname", windowID).Output()
		if err != nil {
			continue
		}
		return Window{
			ID:    windowID,
			Class: class,
			Title: strings.TrimSpace(string(titleOut)),
		}, nil
	}
	return Window{}, nil
}

func (x *X11) FocusWindow(w Window) error {
	if w.ID == "" {
		return fmt.Errorf("cannot focus window: no window ID provided")
	}

	if err := exec.Command("xdotool", "windowactivate", "--sync", w.ID).Run(); err != nil {
		return fmt.Errorf("failed to focus window: %w", err)
	}
	return nil
}
