package app

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"trait-roller/internal/activity"
	"trait-roller/internal/input"
	"trait-roller/internal/macro"
	"trait-roller/pkg/logger"
)

func newTestPanel(t *testing.T) (*Panel, *harness) {
	t.Helper()
	h := newHarness(t)
	a := test.NewApp()
	t.Cleanup(a.Quit)
	return NewPanel(a, h.tr, h.cfg, nil, logger.Nop()), h
}

func TestPanelShowsActivity(t *testing.T) {
	p, _ := newTestPanel(t)
	ts := time.Date(2024, 3, 1, 9, 5, 7, 0, time.Local)

	assert.NoError(t, p.Write(activity.Event{Time: ts, Message: "Started"}))
	assert.NoError(t, p.Write(activity.Event{Time: ts, Message: "Stopped"}))

	assert.Equal(t, "09:05:07 Started\n09:05:07 Stopped", p.textArea.Text())

	p.Clear()
	assert.Empty(t, p.textArea.Text())
}

func TestPanelKeepsLastLines(t *testing.T) {
	p, _ := newTestPanel(t)
	for i := 0; i < maxPanelLines+5; i++ {
		p.AddText(fmt.Sprintf("line %d", i))
	}

	lines := strings.Split(p.textArea.Text(), "\n")
	assert.Len(t, lines, maxPanelLines)
	assert.Equal(t, "line 5", lines[0])
}

func TestPanelEditsConfig(t *testing.T) {
	p, h := newTestPanel(t)
	assert.Equal(t, h.cfg.GetListA(), p.listA.Text)

	p.delay.SetText("")
	test.Type(p.delay, "60")
	assert.Equal(t, "60", h.cfg.GetDelay())

	test.Tap(p.logOCR)
	assert.True(t, h.cfg.GetLogOCR())
}

func TestPanelStatusShowsSequence(t *testing.T) {
	p, h := newTestPanel(t)
	h.tr.Sequence().Append(macro.Click{X: 3, Y: 4, Button: input.Left})

	p.SetStatus("Sequence loaded - 1 items")

	assert.Equal(t, "Sequence loaded - 1 items", p.status.Text)
	assert.Equal(t, "  1. Left click at (3, 4)", p.seqArea.Text())
}
