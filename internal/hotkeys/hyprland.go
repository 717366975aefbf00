// Package hotkeys installs the global key bindings that drive the daemon.
// Bindings live in the compositor; each key runs a client command.
package hotkeys

import (
	"fmt"
	"os/exec"
	"strings"

	"trait-roller/pkg/logger"
)

// Binding maps a key to a client subcommand.
type Binding struct {
	Mods    string
	Key     string
	Command string
}

// Defaults returns the classic layout: F7 anchor, F9 roll, F10 record,
// F12 play, Escape stop.
func Defaults(exe string) []Binding {
	return []Binding{
		{Key: "F7", Command: exe + " anchor"},
		{Key: "F9", Command: exe + " roll"},
		{Key: "F10", Command: exe + " record"},
		{Key: "F12", Command: exe + " play"},
		{Key: "Escape", Command: exe + " stop"},
	}
}

// bindn keeps the key flowing to the focused window, so Escape still
// reaches the game.
const bindKeyword = "bindn"

func (b Binding) spec() string {
	return fmt.Sprintf("%s,%s,exec,%s", b.Mods, b.Key, b.Command)
}

// ConfigLines renders bindings for hyprland.conf.
func ConfigLines(bindings []Binding) []string {
	lines := make([]string, len(bindings))
	for i, b := range bindings {
		lines[i] = fmt.Sprintf("%s = %s, %s, exec, %s", bindKeyword, b.Mods, b.Key, b.Command)
	}
	return lines
}

// Hyprland adds and removes bindings at runtime through hyprctl.
type Hyprland struct {
	log *logger.Logger
	run func(args ...string) ([]byte, error)
}

func NewHyprland(log *logger.Logger) *Hyprland {
	return &Hyprland{
		log: log,
		run: func(args ...string) ([]byte, error) {
			return exec.Command("hyprctl", args...).CombinedOutput()
		},
	}
}

// Bind installs every binding. On failure the ones already added are removed.
func (h *Hyprland) Bind(bindings []Binding) error {
	for i, b := range bindings {
		h.log.Debug("Adding keybinding", "mods", b.Mods, "key", b.Key, "command", b.Command)
		if err := h.keyword(bindKeyword, b.spec()); err != nil {
			h.Unbind(bindings[:i])
			return fmt.Errorf("failed to add keybinding %s: %w", b.Key, err)
		}
	}
	h.log.Info("Keybindings added", "count", len(bindings))
	return nil
}

// Unbind removes bindings, logging rather than stopping on failures.
func (h *Hyprland) Unbind(bindings []Binding) {
	for _, b := range bindings {
		if err := h.keyword("unbind", fmt.Sprintf("%s,%s", b.Mods, b.Key)); err != nil {
			h.log.Error("Failed to remove keybinding", err, "key", b.Key)
		}
	}
}

func (h *Hyprland) keyword(args ...string) error {
	out, err := h.run(append([]string{"keyword"}, args...)...)
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	// hyprctl exits 0 on a rejected keyword and reports it on stdout
	if text := strings.TrimSpace(string(out)); text != "" && text != "ok" {
		return fmt.Errorf("hyprctl: %s", text)
	}
	return nil
}
