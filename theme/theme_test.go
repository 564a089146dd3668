package theme

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPalette(t *testing.T) {
	p := Default()
	assert.Equal(t, "Dusk", p.Name)
	require.Len(t, p.Colors, 11)
	assert.Equal(t, RGB{26, 16, 46}, p.Lookup(0))
	assert.Equal(t, RGB{252, 232, 92}, p.Lookup(1))
}

func TestParseGPL(t *testing.T) {
	src := "GIMP Palette\nName: Two\n# comment\n0 0 0\tblack\n200 100 50 x\n"
	p, err := ParseGPL(strings.NewReader(src), "two.gpl")
	require.NoError(t, err)
	assert.Equal(t, "Two", p.Name)
	assert.Equal(t, RGB{100, 50, 25}, p.Lookup(0.5))

	_, err = ParseGPL(strings.NewReader("GIMP Palette\n"), "empty.gpl")
	assert.ErrorContains(t, err, "empty.gpl")
}

func TestRoles(t *testing.T) {
	th := New(Default())
	assert.Equal(t, lipgloss.Color("#1a102e"), th.BG())
	assert.Equal(t, th.Warning(), th.HitRate(0.2))
	assert.Equal(t, th.Success(), th.HitRate(1))
	assert.Equal(t, '‖', th.StateSymbol("Paused"))
	assert.Equal(t, '■', th.StateSymbol("Stopped"))
}
