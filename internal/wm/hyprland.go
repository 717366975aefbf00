package wm

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"trait-roller/pkg/logger"
)

type Hyprland struct {
	log             *logger.Logger
	lastFoundWindow Window
}

func NewHyprland(log *logger.Logger) (*Hyprland, error) {
	path, err := exec.LookPath("hyprctl")
	if err != nil {
		log.Error("hyprctl not found in PATH", err)
		return nil, fmt.Errorf("hyprctl not found in PATH: %w", err)
	}
	log.Debug("Found hyprctl", "path", path)

	return &Hyprland{log: log}, nil
}

func (h *Hyprland) Name() string {
	return "Hyprland"
}

type hyprClient struct {
	Address string `json:"address"`
	Class   string `json:"class"`
	Title   string `json:"title"`
}

// pickHyprWindow finds the first client in `hyprctl clients -j` output whose
// class matches. Class order wins over client order.
func pickHyprWindow(output []byte, classNames []string) (Window, error) {
	if len(output) == 0 {
		return Window{}, nil
	}

	var clients []hyprClient
	if err := json.Unmarshal(output, &clients); err != nil {
		return Window{}, fmt.Errorf("failed to parse hyprctl output: %w", err)
	}

	for _, class := range classNames {
		want := strings.ToLower(class)
		for _, c := range clients {
			if strings.Contains(strings.ToLower(c.Class), want) {
				return Window{Class: c.Class, Title: c.Title, Address: c.Address}, nil
			}
		}
	}
	return Window{}, nil
}

func (h *Hyprland) FindWindow(classNames []string) (Window, error) {
	output, err := exec.Command("hyprctl", "clients", "-j").CombinedOutput()
	if err != nil {
		h.log.Error("Failed to execute hyprctl", err, "output", string(output))
		return Window{}, fmt.Errorf("hyprctl error: %w", err)
	}

	w, err := pickHyprWindow(output, classNames)
	if err != nil {
		h.log.Error("Failed to parse hyprctl output", err, "output", string(output))
		return Window{}, err
	}

	// Only log if this is a different window than last time
	if w != h.lastFoundWindow {
		if w.Found() {
			h.log.Debug("Found matching window by class",
				"class", w.Class,
				"title", w.Title,
				"address", w.Address)
		}
		h.lastFoundWindow = w
	}
	return w, nil
}

func (h *Hyprland) FocusWindow(w Window) error {
	h.log.Debug("Focusing window", "address", w.Address)

	cmd := exec.Command("hyprctl", "dispatch", "focuswindow", "address:"+w.Address)
	if output, err := cmd.CombinedOutput(); err != nil {
		h.log.Error("Failed to focus window", err, "output", string(output))
		return fmt.Errorf("failed to focus window: %w", err)
	}
	return nil
}
