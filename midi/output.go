package midi

import (
	"fmt"
	"sync"

	"go-lyred/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Output is an open MIDI output port
type Output struct {
	name string
	port drivers.Out
	send func(gomidi.Message) error
	mu   sync.Mutex
}

// OpenOutput opens the output port matching name (see matchPort)
func OpenOutput(name string) (*Output, error) {
	port, err := findOut(name)
	if err != nil {
		return nil, err
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output %q: %w", port.String(), err)
	}
	debug.Log("midi", "opened output %s", port.String())
	return &Output{name: port.String(), port: port, send: send}, nil
}

// Name returns the port name
func (o *Output) Name() string {
	return o.name
}

// Send writes one message
func (o *Output) Send(msg gomidi.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.send == nil {
		return fmt.Errorf("output %q is closed", o.name)
	}
	return o.send(msg)
}

// Close releases the port
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.send = nil
	if o.port == nil {
		return nil
	}
	return o.port.Close()
}
