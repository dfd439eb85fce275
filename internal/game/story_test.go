package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorySet_SetElementOnce(t *testing.T) {
	ss := NewStorySet(2, 2)

	require.NoError(t, ss.SetElement(0, 0, TextElement("once upon a time")))

	el := ss.ElementAt(0, 0)
	require.NotNil(t, el)
	assert.Equal(t, ElementText, el.Kind)
	assert.Equal(t, "once upon a time", el.Content)

	err := ss.SetElement(0, 0, TextElement("rewritten"))
	assert.ErrorIs(t, err, ErrElementFilled)
	assert.Equal(t, "once upon a time", ss.ElementAt(0, 0).Content, "element must be immutable")
}

func TestStorySet_RoundComplete(t *testing.T) {
	ss := NewStorySet(3, 3)

	assert.False(t, ss.RoundComplete(0))

	require.NoError(t, ss.SetElement(0, 0, TextElement("a")))
	require.NoError(t, ss.SetElement(1, 0, TextElement("b")))
	assert.False(t, ss.RoundComplete(0), "one story still empty")

	require.NoError(t, ss.SetElement(2, 0, TextElement("c")))
	assert.True(t, ss.RoundComplete(0))
	assert.False(t, ss.RoundComplete(1))
}

func TestStorySet_ElementAtUnfilled(t *testing.T) {
	ss := NewStorySet(1, 2)
	assert.Nil(t, ss.ElementAt(0, 1))
}
