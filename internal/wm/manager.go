package wm

import (
	"fmt"
	"os"
	"time"

	"trait-roller/pkg/logger"
)

// focusSettle gives the compositor time to raise the window before the first
// synthetic click lands.
const focusSettle = 100 * time.Millisecond

// Manager handles window management operations based on the session type
type Manager struct {
	wm  WindowManager
	log *logger.Logger
}

// NewManager creates a new window manager based on the session type
func NewManager(log *logger.Logger) (*Manager, error) {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	log.Info("Session type detected", "session", sessionType)

	var wm WindowManager
	var err error

	switch sessionType {
	case "wayland":
		if sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE"); sig == "" {
			return nil, fmt.Errorf("unsupported Wayland compositor: only Hyprland is supported")
		}
		log.Debug("Initializing compositor support", "type", "Hyprland")
		wm, err = NewHyprland(log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Hyprland support: %w", err)
		}
	case "x11":
		log.Debug("Initializing compositor support", "type", "X11")
		wm, err = NewX11()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize X11 support: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported session type: %q", sessionType)
	}

	log.Info("Window manager initialized", "name", wm.Name())
	return &Manager{wm: wm, log: log}, nil
}

// NewManagerWith wraps an existing WindowManager.
func NewManagerWith(wm WindowManager, log *logger.Logger) *Manager {
	return &Manager{wm: wm, log: log}
}

// FocusGame raises the first window matching classNames. It returns false
// when no such window is open.
func (m *Manager) FocusGame(classNames []string) (bool, error) {
	w, err := m.wm.FindWindow(classNames)
	if err != nil {
		return false, err
	}
	if !w.Found() {
		m.log.Debug("Game window not found", "classes", classNames)
		return false, nil
	}
	if err := m.wm.FocusWindow(w); err != nil {
		return true, err
	}
	time.Sleep(focusSettle)
	return true, nil
}

// GetWMName returns the name of the current window manager
func (m *Manager) GetWMName() string {
	return m.wm.Name()
}
