package midi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// scanTimeout bounds port enumeration (CoreMIDI can hang)
const scanTimeout = 3 * time.Second

// ErrDriverHung is returned when the MIDI driver does not answer in time.
// On macOS the fix is: sudo killall coreaudiod midiserver
var ErrDriverHung = errors.New("midi: driver did not answer")

// ErrNoPort is returned when no output port matches
var ErrNoPort = errors.New("midi: no matching output port")

// excluded ports are never picked automatically
var excluded = []string{"Midi Through", "Through Port", "Dummy"}

// OutPorts lists the names of all MIDI output ports
func OutPorts() ([]string, error) {
	outs, err := scanOuts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names, nil
}

func scanOuts() ([]drivers.Out, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case outs := <-ch:
		return outs, nil
	case <-time.After(scanTimeout):
		return nil, ErrDriverHung
	}
}

// matchPort picks the port for want: an exact name first, then a
// case-insensitive substring. An empty want picks the first port that is not
// a system pass-through.
func matchPort(names []string, want string) (int, bool) {
	if want == "" {
		for i, n := range names {
			if !isExcluded(n) {
				return i, true
			}
		}
		return -1, false
	}
	for i, n := range names {
		if n == want {
			return i, true
		}
	}
	for i, n := range names {
		if containsCI(n, want) {
			return i, true
		}
	}
	return -1, false
}

func findOut(want string) (drivers.Out, error) {
	outs, err := scanOuts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(outs))
	for i, o := range outs {
		names[i] = o.String()
	}
	i, ok := matchPort(names, want)
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrNoPort, want, strings.Join(names, ", "))
	}
	return outs[i], nil
}

func isExcluded(name string) bool {
	for _, pat := range excluded {
		if containsCI(name, pat) {
			return true
		}
	}
	return false
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
