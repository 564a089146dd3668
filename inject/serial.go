package inject

import (
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"

	"go-lyred/debug"
	"go-lyred/keymap"
)

// Wire constants for the HID bridge (a microcontroller that enumerates as a
// USB keyboard and types whatever it is told over serial).
const (
	SOF0       = 0xAA
	SOF1       = 0x55
	CmdKeyDown = 0x01
	CmdKeyUp   = 0x02
	CmdAllUp   = 0x03

	DefaultBaud = 115200
)

// KeyFrame is one key transition for the HID bridge
type KeyFrame struct {
	Cmd byte
	Key keymap.KeyCode
}

// Encode builds the on-wire representation:
//
//	[SOF0][SOF1][LEN][CMD][keyHi][keyLo][CKS]
func (f KeyFrame) Encode() []byte {
	payload := []byte{byte(f.Key >> 8), byte(f.Key)}

	length := byte(len(payload) + 1) // +1 for CMD byte
	cks := length ^ f.Cmd
	for _, b := range payload {
		cks ^= b
	}

	out := []byte{SOF0, SOF1, length, f.Cmd}
	out = append(out, payload...)
	out = append(out, cks)
	return out
}

// Serial drives a HID bridge over a serial port
type Serial struct {
	port io.WriteCloser
	name string
	mu   sync.Mutex
}

// OpenSerial opens the named serial device at the given baud rate
func OpenSerial(name string, baud int) (*Serial, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	debug.Log("serial", "port opened device=%s baud=%d", name, baud)
	return NewSerial(p, name), nil
}

// NewSerial wraps an already open port
func NewSerial(port io.WriteCloser, name string) *Serial {
	return &Serial{port: port, name: name}
}

func (s *Serial) Press(k keymap.KeyCode) error {
	return wrap(OpPress, k, s.send(KeyFrame{Cmd: CmdKeyDown, Key: k}))
}

func (s *Serial) Release(k keymap.KeyCode) error {
	return wrap(OpRelease, k, s.send(KeyFrame{Cmd: CmdKeyUp, Key: k}))
}

func (s *Serial) send(f KeyFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return ErrClosed
	}
	_, err := s.port.Write(f.Encode())
	return err
}

// Close tells the bridge to let go of everything, then closes the port
func (s *Serial) Close() error {
	if err := s.send(KeyFrame{Cmd: CmdAllUp}); err != nil && err != ErrClosed {
		debug.Warn("serial", "all-up before close: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	debug.Log("serial", "closing port %s", s.name)
	err := s.port.Close()
	s.port = nil
	return err
}
