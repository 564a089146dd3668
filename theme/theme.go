package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Progress bar
	BarFull  rune // █ played
	BarEmpty rune // ░ remaining
	BarHead  rune // ▶ play head

	// Key map
	KeyPlayable rune // ● note in the song has a key
	KeyMissing  rune // ○ note in the song has no key

	// Transport state
	Playing rune // ▶
	Paused  rune // ‖
	Stopped rune // ■
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			BarFull:  '█',
			BarEmpty: '░',
			BarHead:  '▶',

			KeyPlayable: '●',
			KeyMissing:  '○',

			Playing: '▶',
			Paused:  '‖',
			Stopped: '■',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleSurface = 0.1 // dark purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleCursor  = 0.6 // rose pink
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSurface))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// HitRate colors a hit rate: warning below 0.5, then towards success
func (t *Theme) HitRate(rate float64) lipgloss.Color {
	switch {
	case rate < 0.5:
		return t.Warning()
	case rate >= 1:
		return t.Success()
	}
	return t.Color(RoleWarning + (RoleSuccess-RoleWarning)*(rate-0.5)*2)
}

// StateSymbol picks the transport glyph for a status label
func (t *Theme) StateSymbol(label string) rune {
	switch label {
	case "Playing":
		return t.Symbols.Playing
	case "Paused":
		return t.Symbols.Paused
	}
	return t.Symbols.Stopped
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
