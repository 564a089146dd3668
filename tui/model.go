package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"go-lyred/config"
	"go-lyred/hotkey"
	"go-lyred/keymap"
	"go-lyred/sequencer"
	"go-lyred/theme"
	"go-lyred/track"
	"go-lyred/transport"
	"go-lyred/widgets"
)

const barWidth = 40

type Model struct {
	Manager  *sequencer.Manager
	Theme    *theme.Theme
	Hotkeys  *hotkey.Dispatcher
	latch    *hotkey.Latch
	calRange int
	message  string
	quitting bool

	pitches *pitchCache
}

// pitchCache holds the distinct pitches of the track last drawn
type pitchCache struct {
	tr      *track.Track
	pitches []int
}

type UpdateMsg struct{}

// ConfigMsg carries a reloaded config into the program
type ConfigMsg struct {
	Config *config.Config
}

func NewModel(manager *sequencer.Manager, th *theme.Theme, cfg *config.Config) Model {
	latch := hotkey.NewLatch(hotkey.DefaultHold)
	return Model{
		Manager:  manager,
		Theme:    th,
		Hotkeys:  hotkey.NewDispatcher(latch, manager, cfg.FunctionKeys),
		latch:    latch,
		calRange: cfg.CalibrateRange,
		pitches:  &pitchCache{},
	}
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Manager)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			m.quitting = true
			m.Manager.Stop()
			return m, tea.Quit
		}
		if k, ok := keyCode(msg); ok {
			m.latch.Press(k)
		}
		m.handleKey(msg)

	case UpdateMsg:
		if a := m.Hotkeys.Poll(); a != hotkey.None {
			m.message = ""
		}
		return m, ListenForUpdates(m.Manager)

	case ConfigMsg:
		m.Hotkeys.SetKeys(msg.Config.FunctionKeys)
		m.calRange = msg.Config.CalibrateRange
		policy := sequencer.StopHold
		if msg.Config.StopRewinds {
			policy = sequencer.StopRewind
		}
		m.Manager.Scheduler().SetStopPolicy(policy)
		m.message = "config reloaded"
	}

	return m, nil
}

// handleKey applies the terminal-only controls. Function keys are not
// handled here; they go through the latch and are polled on the next tick.
func (m *Model) handleKey(msg tea.KeyMsg) {
	st := m.Manager.State()
	switch msg.String() {
	case "+", "=":
		v := st.NudgeSpeed(transport.SpeedStep)
		m.message = fmt.Sprintf("speed %.1fx", v)
	case "-", "_":
		v := st.NudgeSpeed(-transport.SpeedStep)
		m.message = fmt.Sprintf("speed %.1fx", v)
	case "r":
		st.SetSpeed(transport.DefaultSpeed)
		m.message = "speed reset"

	case "up":
		m.Manager.NudgeOffset(1)
	case "down":
		m.Manager.NudgeOffset(-1)
	case "pgup":
		m.Manager.NudgeOffset(12)
	case "pgdown":
		m.Manager.NudgeOffset(-12)
	case "0":
		m.Manager.SetOffset(0)
		m.message = "offset reset"

	case "left":
		m.Manager.SeekBy(-1)
	case "right":
		m.Manager.SeekBy(1)
	case "[":
		m.Manager.SeekBy(-10)
	case "]":
		m.Manager.SeekBy(10)
	case "home":
		m.Manager.Seek(0)

	case "m":
		mode := m.Manager.NextMode()
		m.message = "mode " + mode.String()
	case "a":
		best := m.Manager.AutoCalibrate(-m.calRange, m.calRange)
		m.message = fmt.Sprintf("auto offset %+d (%.2f%%)", best.Offset, best.HitRate*100)

	case "d":
		skipped, err := m.Manager.ToggleDrums()
		switch {
		case err != nil:
			m.message = err.Error()
		case skipped:
			m.message = "drums skipped"
		default:
			m.message = "drums kept"
		}
	case "t":
		no, err := m.Manager.CycleTrack()
		switch {
		case err != nil:
			m.message = err.Error()
		case no < 0:
			m.message = "all tracks"
		default:
			m.message = fmt.Sprintf("track %d only", no)
		}
	}
}

// keyCode translates a terminal key into the virtual key code the function
// key bindings use. Terminals never report a bare Ctrl, so any Ctrl chord
// counts as Ctrl.
func keyCode(msg tea.KeyMsg) (keymap.KeyCode, bool) {
	switch msg.Type {
	case tea.KeySpace:
		return keymap.KeySpace, true
	case tea.KeyBackspace, tea.KeyCtrlH:
		return keymap.KeyBackspace, true
	case tea.KeyTab:
		return keymap.KeyTab, true
	case tea.KeyEnter:
		return keymap.KeyEnter, true
	case tea.KeyEsc:
		return keymap.KeyEsc, true
	case tea.KeyLeft:
		return keymap.KeyLeft, true
	case tea.KeyUp:
		return keymap.KeyUp, true
	case tea.KeyRight:
		return keymap.KeyRight, true
	case tea.KeyDown:
		return keymap.KeyDown, true
	case tea.KeyDelete:
		return keymap.KeyDelete, true
	case tea.KeyPgUp:
		return 33, true
	case tea.KeyPgDown:
		return 34, true
	case tea.KeyEnd:
		return 35, true
	case tea.KeyHome:
		return 36, true
	case tea.KeyInsert:
		return 45, true
	}
	switch {
	case msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ:
		return keymap.KeyCtrl, true
	case msg.Type >= tea.KeyF1 && msg.Type <= tea.KeyF12:
		return keymap.KeyF1 + keymap.KeyCode(msg.Type-tea.KeyF1), true
	}
	return 0, false
}

func (m Model) songPitches() []int {
	c := m.pitches
	if tr := m.Manager.Track(); tr != c.tr {
		c.tr = tr
		c.pitches = nil
		if tr != nil {
			c.pitches = lo.Uniq(lo.Map(tr.Events(), func(e track.NoteEvent, _ int) int { return e.Pitch }))
		}
	}
	return c.pitches
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.Manager.State().Snapshot()
	th := m.Theme

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(th.Accent())
	fgStyle := lipgloss.NewStyle().Foreground(th.FG())
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	rateStyle := lipgloss.NewStyle().Foreground(th.HitRate(st.HitRate))
	msgStyle := lipgloss.NewStyle().
		Foreground(th.FG()).
		Background(th.Surface()).
		Padding(0, 1)

	name := "(no file)"
	if tr := m.Manager.Track(); tr != nil {
		name = tr.Name
	}

	header := headerStyle.Render(fmt.Sprintf("go-lyred  %c %s  %s", th.StateSymbol(st.Label()), st.Label(), name))

	status := fgStyle.Render(fmt.Sprintf("speed %.1fx  mode %s  offset %+d  hit ", st.Speed, st.Mode, st.Offset)) +
		rateStyle.Render(fmt.Sprintf("%.2f%%", st.HitRate*100))
	if n := m.Manager.Scheduler().Failures(); n > 0 {
		status += lipgloss.NewStyle().Foreground(th.Warning()).Render(fmt.Sprintf("  %d keys refused", n))
	}

	bar := widgets.RenderProgress(barWidth, st.Progress(),
		th.Symbols.BarFull, th.Symbols.BarEmpty, th.Symbols.BarHead, th.Active(), th.Muted())
	progress := fmt.Sprintf("%s  %s  note %d/%d", bar, st.Clock(), min(st.Position+1, st.Length), st.Length)

	keyboard := widgets.RenderKeyboard(st.Mode, m.songPitches(), st.Offset, widgets.KeyboardColors{
		Used:   th.Success(),
		Unused: th.Muted(),
	})

	fk := m.Hotkeys.Keys()
	help := dimStyle.Render(widgets.RenderKeyHelp([]widgets.KeySection{
		{Title: "Transport", Keys: []widgets.KeyBinding{
			{Key: keymap.Name(fk.Play), Desc: "play"},
			{Key: keymap.Name(fk.Pause), Desc: "pause"},
			{Key: keymap.Name(fk.Stop), Desc: "stop"},
			{Key: "left/right", Desc: "seek one note ([ ] ten)"},
		}},
		{Title: "Tuning", Keys: []widgets.KeyBinding{
			{Key: "up/down", Desc: "offset (pgup/pgdown: octave, 12 semitones)"},
			{Key: "0", Desc: "reset offset"},
			{Key: "a", Desc: "auto offset"},
			{Key: "+/-", Desc: "speed (r: reset)"},
			{Key: "m", Desc: "switch instrument"},
			{Key: "t", Desc: "next track (all, then one by one)"},
			{Key: "d", Desc: "skip/keep drums"},
			{Key: "q", Desc: "quit"},
		}},
	}))

	// Build output
	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(status)
	out.WriteString("\n\n")
	out.WriteString(progress)
	out.WriteString("\n\n")
	out.WriteString(keyboard)
	out.WriteString("\n\n")
	out.WriteString(help)

	if m.message != "" {
		out.WriteString("\n\n")
		out.WriteString(msgStyle.Render(m.message))
	}

	return out.String()
}
