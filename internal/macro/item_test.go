package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trait-roller/internal/input"
)

func TestFormat(t *testing.T) {
	items := []Item{
		Click{X: 100, Y: 100, Button: input.Left},
		Delay{Ms: 500},
		Click{X: 200, Y: 250, Button: input.Right, RandomOffset: 10},
	}

	assert.Equal(t, []string{
		"  1. Left click at (100, 100)",
		"  2. DELAY 500ms",
		"  3. Right click at (200, 250) [±10px]",
	}, FormatAll(items))
	assert.Equal(t, "120. DELAY 50ms", Format(119, Delay{Ms: 50}))
}
