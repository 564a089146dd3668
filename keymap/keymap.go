package keymap

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// KeyCode is a virtual-key code as understood by the host's key injector
// (32 = Space, 0x41 = 'A', ...).
type KeyCode uint16

// Mode selects the target instrument layout
type Mode int

const (
	ModeLyre  Mode = iota // 21-key diatonic lyre, C3..B5 naturals
	ModePiano             // 36-key chromatic piano, C3..B5
)

// Modes lists every built-in layout
var Modes = []Mode{ModeLyre, ModePiano}

// lowPitch is the MIDI pitch of the first key in every layout (C3)
const lowPitch = 48

// Tables are indexed by pitch-lowPitch; 0 means the pitch has no key.
var (
	lyreTable  = buildLyre()
	pianoTable = buildPiano()
)

func buildLyre() [36]KeyCode {
	var t [36]KeyCode
	// Naturals of one octave, relative to C
	naturals := []int{0, 2, 4, 5, 7, 9, 11}
	rows := []string{"ZXCVBNM", "ASDFGHJ", "QWERTYU"}
	for octave, row := range rows {
		for i, ch := range row {
			t[octave*12+naturals[i]] = KeyCode(ch)
		}
	}
	return t
}

func buildPiano() [36]KeyCode {
	var t [36]KeyCode
	for i, ch := range "1234567890QWERTYUIOPASDFGHJKLZXCVBNM" {
		t[i] = KeyCode(ch)
	}
	return t
}

func (m Mode) table() *[36]KeyCode {
	if m == ModePiano {
		return &pianoTable
	}
	return &lyreTable
}

// Lookup returns the key bound to pitch in mode m. A miss is an expected
// outcome (the note is unplayable), not an error.
func Lookup(pitch int, m Mode) (KeyCode, bool) {
	i := pitch - lowPitch
	t := m.table()
	if i < 0 || i >= len(t) {
		return 0, false
	}
	k := t[i]
	return k, k != 0
}

// Range returns the lowest and highest pitch the mode can play
func (m Mode) Range() (low, high int) {
	return lowPitch, lowPitch + len(m.table()) - 1
}

// Binding pairs a playable pitch with its key
type Binding struct {
	Pitch int
	Key   KeyCode
}

// Bindings lists the playable pitches of m in ascending order
func Bindings(m Mode) []Binding {
	t := m.table()
	return lo.FilterMap(t[:], func(k KeyCode, i int) (Binding, bool) {
		return Binding{Pitch: lowPitch + i, Key: k}, k != 0
	})
}

// PitchOf is the inverse of Lookup
func PitchOf(k KeyCode, m Mode) (int, bool) {
	inv := lo.Invert(lo.SliceToMap(Bindings(m), func(b Binding) (int, KeyCode) {
		return b.Pitch, b.Key
	}))
	p, ok := inv[k]
	return p, ok
}

func (m Mode) String() string {
	switch m {
	case ModeLyre:
		return "lyre"
	case ModePiano:
		return "piano"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode accepts a mode name. "genshin" and "vrchat" are kept as aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lyre", "genshin":
		return ModeLyre, nil
	case "piano", "vrchat":
		return ModePiano, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want lyre or piano)", s)
}

// MarshalText stores modes by name in config files
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
