package wm

type WindowManager interface {
	// FindWindow returns the first window whose class contains one of
	// classNames (case-insensitive), or a zero Window when none matches.
	FindWindow(classNames []string) (Window, error)
	// FocusWindow brings the specified window to front
	FocusWindow(Window) error
	// Name returns the WM name for logging/display
	Name() string
}

type Window struct {
	ID      string
	Class   string
	Title   string
	Address string // For Hyprland
}

// Found reports whether w refers to a real window.
func (w Window) Found() bool {
	return w != Window{}
}
