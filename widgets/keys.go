package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"go-lyred/keymap"
)

// RenderKeyCap renders a single key label in a color
func RenderKeyCap(label string, color lipgloss.Color) string {
	style := lipgloss.NewStyle().Foreground(color)
	return style.Render(label)
}

// RenderKeyRow renders a row of key caps with spacing
func RenderKeyRow(caps []string) string {
	return strings.Join(caps, " ")
}

// KeyboardColors picks colors for the key map view
type KeyboardColors struct {
	Used   lipgloss.Color // a note of the song lands on this key
	Unused lipgloss.Color
}

// RenderKeyboard renders the layout of a mode one octave per row, highest
// octave on top. Keys hit by a song pitch (after offset) use the Used color.
func RenderKeyboard(m keymap.Mode, pitches []int, offset int, colors KeyboardColors) string {
	hit := lo.SliceToMap(pitches, func(p int) (int, bool) { return p + offset, true })
	octaves := lo.GroupBy(keymap.Bindings(m), func(b keymap.Binding) int { return b.Pitch / 12 })
	order := lo.Keys(octaves)

	var lines []string
	for oct := lo.Max(order); oct >= lo.Min(order); oct-- {
		row, ok := octaves[oct]
		if !ok {
			continue
		}
		caps := lo.Map(row, func(b keymap.Binding, _ int) string {
			c := colors.Unused
			if hit[b.Pitch] {
				c = colors.Used
			}
			return RenderKeyCap(keymap.Name(b.Key), c)
		})
		lines = append(lines, fmt.Sprintf("C%d  %s", oct-1, RenderKeyRow(caps)))
	}
	return strings.Join(lines, "\n")
}

// RenderProgress renders a bar of width cells filled to frac (0-1)
func RenderProgress(width int, frac float64, full, empty, head rune, fg, dim lipgloss.Color) string {
	if width < 1 {
		return ""
	}
	frac = max(0, min(frac, 1))
	n := int(frac * float64(width-1))
	played := strings.Repeat(string(full), n)
	rest := strings.Repeat(string(empty), width-1-n)
	return lipgloss.NewStyle().Foreground(fg).Render(played+string(head)) +
		lipgloss.NewStyle().Foreground(dim).Render(rest)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
