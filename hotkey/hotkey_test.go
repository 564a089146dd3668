package hotkey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-lyred/config"
	"go-lyred/keymap"
	"go-lyred/transport"
)

type keys map[keymap.KeyCode]bool

func (k keys) IsPressed(c keymap.KeyCode) bool { return k[c] }

func TestDispatchDefaults(t *testing.T) {
	st := transport.New()
	down := keys{}
	d := NewDispatcher(down, st, config.DefaultFunctionKeys)

	assert.Equal(t, None, d.Poll())
	assert.False(t, st.IsActive())

	down[keymap.KeySpace] = true
	assert.Equal(t, Play, d.Poll())
	assert.True(t, st.IsActive())
	delete(down, keymap.KeySpace)

	down[keymap.KeyBackspace] = true
	assert.Equal(t, Pause, d.Poll())
	assert.True(t, st.IsPaused())
	delete(down, keymap.KeyBackspace)

	down[keymap.KeyCtrl] = true
	assert.Equal(t, Stop, d.Poll())
	assert.False(t, st.IsActive())
}

func TestStopWinsOverPlay(t *testing.T) {
	st := transport.New()
	st.Play()
	d := NewDispatcher(keys{keymap.KeySpace: true, keymap.KeyCtrl: true}, st, config.DefaultFunctionKeys)

	assert.Equal(t, Stop, d.Poll())
	assert.False(t, st.IsActive())
}

func TestRebind(t *testing.T) {
	st := transport.New()
	down := keys{keymap.KeyF1: true}
	d := NewDispatcher(down, st, config.DefaultFunctionKeys)
	assert.Equal(t, None, d.Poll())

	d.SetKeys(config.FunctionKeys{Play: keymap.KeyF1, Pause: keymap.KeyF1 + 1, Stop: keymap.KeyF1 + 2})
	assert.Equal(t, Play, d.Poll())
	assert.Equal(t, keymap.KeyF1, d.Keys().Play)
}

func TestLatchExpires(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewLatch(50 * time.Millisecond)
	l.now = func() time.Time { return now }

	assert.False(t, l.IsPressed('A'))
	l.Press('A')
	assert.True(t, l.IsPressed('A'))

	now = now.Add(40 * time.Millisecond)
	assert.True(t, l.IsPressed('A'))

	now = now.Add(20 * time.Millisecond)
	assert.False(t, l.IsPressed('A'))
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "pause", Pause.String())
	assert.Equal(t, "none", None.String())
}
