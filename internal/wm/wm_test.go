package wm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trait-roller/pkg/logger"
)

const clients = `[
  {"address": "0x1", "class": "firefox", "title": "RimWorld Wiki"},
  {"address": "0x2", "class": "steam_app_294100", "title": "RimWorld by Ludeon Studios"},
  {"address": "0x3", "class": "RimWorldLinux", "title": "RimWorld"}
]`

func TestPickHyprWindowClassOrderWins(t *testing.T) {
	w, err := pickHyprWindow([]byte(clients), []string{"rimworldlinux", "steam_app_294100"})

	require.NoError(t, err)
	assert.Equal(t, Window{Class: "RimWorldLinux", Title: "RimWorld", Address: "0x3"}, w)
}

func TestPickHyprWindowNoMatch(t *testing.T) {
	w, err := pickHyprWindow([]byte(clients), []string{"factorio"})
	require.NoError(t, err)
	assert.False(t, w.Found())

	w, err = pickHyprWindow(nil, []string{"rimworld"})
	require.NoError(t, err)
	assert.False(t, w.Found())

	_, err = pickHyprWindow([]byte("not json"), []string{"rimworld"})
	assert.Error(t, err)
}

type fakeWM struct {
	window   Window
	findErr  error
	focused  []Window
	focusErr error
}

func (f *fakeWM) FindWindow([]string) (Window, error) { return f.window, f.findErr }
func (f *fakeWM) FocusWindow(w Window) error {
	f.focused = append(f.focused, w)
	return f.focusErr
}
func (f *fakeWM) Name() string { return "fake" }

func TestFocusGame(t *testing.T) {
	fw := &fakeWM{window: Window{ID: "42", Class: "RimWorldLinux"}}
	m := NewManagerWith(fw, logger.Nop())

	found, err := m.FocusGame([]string{"RimWorldLinux"})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []Window{{ID: "42", Class: "RimWorldLinux"}}, fw.focused)
	assert.Equal(t, "fake", m.GetWMName())
}

func TestFocusGameMissingWindow(t *testing.T) {
	fw := &fakeWM{}
	found, err := NewManagerWith(fw, logger.Nop()).FocusGame([]string{"RimWorldLinux"})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, fw.focused)

	fw.findErr = errors.New("hyprctl error")
	_, err = NewManagerWith(fw, logger.Nop()).FocusGame(nil)
	assert.Error(t, err)
}
