package input

import (
	"testing"

	hook "github.com/robotn/gohook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseButton(t *testing.T) {
	b, err := ParseButton("right")
	require.NoError(t, err)
	assert.Equal(t, Right, b)

	_, err = ParseButton("middle")
	assert.Error(t, err)
}

func TestButtonTitle(t *testing.T) {
	assert.Equal(t, "Left", Left.Title())
	assert.Equal(t, "Right", Right.Title())
}

func TestButtonFromHook(t *testing.T) {
	b, ok := buttonFromHook(hook.MouseMap["left"])
	assert.True(t, ok)
	assert.Equal(t, Left, b)

	b, ok = buttonFromHook(hook.MouseMap["right"])
	assert.True(t, ok)
	assert.Equal(t, Right, b)

	_, ok = buttonFromHook(hook.MouseMap["center"])
	assert.False(t, ok)
}
