package keymap

import "fmt"

var specialNames = map[KeyCode]string{
	8:   "Backspace",
	9:   "Tab",
	13:  "Enter",
	16:  "Shift",
	17:  "Ctrl",
	18:  "Alt",
	19:  "Pause",
	20:  "CapsLock",
	27:  "Esc",
	32:  "Space",
	33:  "PageUp",
	34:  "PageDown",
	35:  "End",
	36:  "Home",
	37:  "Left",
	38:  "Up",
	39:  "Right",
	40:  "Down",
	45:  "Insert",
	46:  "Delete",
	106: "Num*",
	107: "Num+",
	109: "Num-",
	111: "Num/",
	187: "=",
	189: "-",
}

// Well-known codes used by the presentation layer
const (
	KeyBackspace KeyCode = 8
	KeyTab       KeyCode = 9
	KeyEnter     KeyCode = 13
	KeyShift     KeyCode = 16
	KeyCtrl      KeyCode = 17
	KeyAlt       KeyCode = 18
	KeyEsc       KeyCode = 27
	KeySpace     KeyCode = 32
	KeyLeft      KeyCode = 37
	KeyUp        KeyCode = 38
	KeyRight     KeyCode = 39
	KeyDown      KeyCode = 40
	KeyDelete    KeyCode = 46
	KeyF1        KeyCode = 112
	KeyNumAdd    KeyCode = 107
	KeyNumSub    KeyCode = 109
	KeyEquals    KeyCode = 187
	KeyMinus     KeyCode = 189
)

// Name renders a key code for display
func Name(k KeyCode) string {
	if n, ok := specialNames[k]; ok {
		return n
	}
	switch {
	case k >= '0' && k <= '9', k >= 'A' && k <= 'Z':
		return string(rune(k))
	case k >= 96 && k <= 105:
		return fmt.Sprintf("Num%d", k-96)
	case k >= KeyF1 && k < KeyF1+24:
		return fmt.Sprintf("F%d", k-KeyF1+1)
	}
	return fmt.Sprintf("VK%d", k)
}

// Bindable lists the keys offered for function-key bindings. Letters and
// digits are excluded since the instrument layouts use them.
func Bindable() []KeyCode {
	keys := []KeyCode{
		KeyBackspace, KeyTab, KeyEnter, KeyShift, KeyCtrl, KeyAlt, KeyEsc,
		KeySpace, 33, 34, 35, 36, KeyLeft, KeyUp, KeyRight, KeyDown, 45, KeyDelete,
	}
	for f := KeyF1; f < KeyF1+12; f++ {
		keys = append(keys, f)
	}
	return keys
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchName renders a MIDI pitch in scientific notation (60 = C4)
func PitchName(p int) string {
	if p < 0 {
		return fmt.Sprintf("pitch(%d)", p)
	}
	return fmt.Sprintf("%s%d", noteNames[p%12], p/12-1)
}
