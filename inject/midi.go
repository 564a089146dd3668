package inject

import (
	"context"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-lyred/debug"
	"go-lyred/keymap"
	"go-lyred/midi"
)

// bridgeVelocity is sent with every key-down; bridges ignore it
const bridgeVelocity = 100

// sender is the part of midi.Output the injector needs
type sender interface {
	Send(msg gomidi.Message) error
	Close() error
}

// MIDI forwards key events as note on/off to a MIDI port, for a bridge
// program on the host that turns notes into keystrokes. The note number is
// the key code, so only codes below 128 can be carried.
type MIDI struct {
	channel uint8
	open    func(name string) (sender, error)

	mu   sync.Mutex
	out  sender
	port string
}

func openOutput(name string) (sender, error) {
	return midi.OpenOutput(name)
}

// NewMIDI returns an injector with no port yet; key events fail with
// midi.ErrNoPort until Follow connects one
func NewMIDI(channel uint8) *MIDI {
	return &MIDI{channel: channel & 0x0f, open: openOutput}
}

// OpenMIDI opens the output port matching port on the given channel (0-15)
func OpenMIDI(port string, channel uint8) (*MIDI, error) {
	m := NewMIDI(channel)
	out, err := midi.OpenOutput(port)
	if err != nil {
		return nil, err
	}
	m.out, m.port = out, out.Name()
	return m, nil
}

// Follow keeps the injector attached to the port reported by a
// midi.PortWatcher until ctx ends or the events close
func (m *MIDI) Follow(ctx context.Context, events <-chan midi.PortEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.apply(ev)
		}
	}
}

func (m *MIDI) apply(ev midi.PortEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev.Type {
	case midi.PortConnected:
		if m.out != nil && m.port == ev.Name {
			return
		}
		out, err := m.open(ev.Name)
		if err != nil {
			debug.Warn("inject", "reconnect %s: %v", ev.Name, err)
			return
		}
		if m.out != nil {
			m.out.Close()
		}
		m.out, m.port = out, ev.Name
		debug.Log("inject", "midi bridge on %s", ev.Name)
	case midi.PortDisconnected:
		if m.out == nil || m.port != ev.Name {
			return
		}
		m.out.Close()
		m.out = nil
		debug.Warn("inject", "midi bridge %s went away", ev.Name)
	}
}

// Port names the connected port, empty while waiting
func (m *MIDI) Port() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.out == nil {
		return ""
	}
	return m.port
}

func (m *MIDI) Press(k keymap.KeyCode) error {
	if k > 127 {
		return wrap(OpPress, k, ErrUnsupportedKey)
	}
	return wrap(OpPress, k, m.send(gomidi.NoteOn(m.channel, uint8(k), bridgeVelocity)))
}

func (m *MIDI) Release(k keymap.KeyCode) error {
	if k > 127 {
		return wrap(OpRelease, k, ErrUnsupportedKey)
	}
	return wrap(OpRelease, k, m.send(gomidi.NoteOff(m.channel, uint8(k))))
}

func (m *MIDI) send(msg gomidi.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.out == nil {
		return midi.ErrNoPort
	}
	return m.out.Send(msg)
}

// Close releases the port
func (m *MIDI) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.out == nil {
		return nil
	}
	err := m.out.Close()
	m.out = nil
	return err
}
