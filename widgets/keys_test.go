package widgets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-lyred/keymap"
)

func TestRenderKeyboardLyre(t *testing.T) {
	out := RenderKeyboard(keymap.ModeLyre, []int{60}, 0, KeyboardColors{Used: "#ffffff", Unused: "#000000"})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "C5"), lines[0])
	assert.Contains(t, plain(lines[0]), "Q W E R T Y U")
	assert.Contains(t, plain(lines[2]), "Z X C V B N M")
}

func TestRenderKeyboardPiano(t *testing.T) {
	out := RenderKeyboard(keymap.ModePiano, nil, 0, KeyboardColors{})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, 12, len(strings.Fields(plain(lines[0])))-1)
}

func TestRenderProgress(t *testing.T) {
	bar := plain(RenderProgress(5, 0.5, '#', '.', '>', "", ""))
	assert.Equal(t, "##>..", bar)
	assert.Equal(t, ">....", plain(RenderProgress(5, -1, '#', '.', '>', "", "")))
	assert.Equal(t, "####>", plain(RenderProgress(5, 2, '#', '.', '>', "", "")))
	assert.Empty(t, RenderProgress(0, 0.5, '#', '.', '>', "", ""))
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{Title: "Transport", Keys: []KeyBinding{{Key: "Space", Desc: "play"}}}})
	assert.Equal(t, "Transport\n  Space        play", out)
}

func plain(s string) string {
	return strings.TrimSpace(stripANSI(s))
}

func stripANSI(s string) string {
	var b strings.Builder
	esc := false
	for _, r := range s {
		switch {
		case r == 0x1b:
			esc = true
		case esc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			esc = false
		case !esc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
