package sequencer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-lyred/keymap"
)

func TestHeldKeysDueInOrder(t *testing.T) {
	h := newHeldKeys()
	a := h.press('A')
	h.schedule('A', a, 300*time.Millisecond)
	s := h.press('S')
	h.schedule('S', s, 100*time.Millisecond)

	next, ok := h.nextRelease()
	assert.True(t, ok)
	assert.Equal(t, 100*time.Millisecond, next)

	assert.Empty(t, h.due(50*time.Millisecond))
	assert.Equal(t, []keymap.KeyCode{'S'}, h.due(100*time.Millisecond))
	assert.Equal(t, []keymap.KeyCode{'A'}, h.due(time.Second))
}

func TestHeldKeysStaleGeneration(t *testing.T) {
	h := newHeldKeys()
	first := h.press('A')
	h.schedule('A', first, 300*time.Millisecond)

	// re-pressed before the first key-up came due
	h.forget('A')
	second := h.press('A')
	h.schedule('A', second, 150*time.Millisecond)

	assert.Equal(t, []keymap.KeyCode{'A'}, h.due(200*time.Millisecond))
	h.forget('A')
	assert.Empty(t, h.due(time.Second), "old key-up does not fire")
}

func TestHeldKeysDrain(t *testing.T) {
	h := newHeldKeys()
	for _, k := range []keymap.KeyCode{'Q', 'A', 'Z'} {
		h.schedule(k, h.press(k), time.Second)
	}
	assert.Equal(t, 3, h.len())

	assert.Equal(t, []keymap.KeyCode{'A', 'Q', 'Z'}, h.drain())
	assert.Equal(t, 0, h.len())
	_, ok := h.nextRelease()
	assert.False(t, ok)
	assert.False(t, h.isHeld('A'))
}
