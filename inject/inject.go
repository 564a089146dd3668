// Package inject delivers synthetic key presses to the target application.
package inject

import (
	"errors"
	"fmt"

	"go-lyred/keymap"
)

// Injector presses and releases keys on behalf of the player. Errors are
// reported per key and never stop playback.
type Injector interface {
	Press(k keymap.KeyCode) error
	Release(k keymap.KeyCode) error
}

// Op names the key transition that failed
type Op string

const (
	OpPress   Op = "press"
	OpRelease Op = "release"
)

// InjectionError reports a key event the host refused
type InjectionError struct {
	Op  Op
	Key keymap.KeyCode
	Err error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("inject: %s %s: %v", e.Op, keymap.Name(e.Key), e.Err)
}

func (e *InjectionError) Unwrap() error { return e.Err }

var (
	// ErrClosed is returned after Close
	ErrClosed = errors.New("injector closed")
	// ErrUnsupportedKey is returned for codes a transport cannot carry
	ErrUnsupportedKey = errors.New("key not supported by this injector")
)

// Kind selects an injector implementation by name
type Kind string

const (
	KindLog    Kind = "log"
	KindMIDI   Kind = "midi"
	KindSerial Kind = "serial"
)

// Kinds lists the known injector names
var Kinds = []Kind{KindLog, KindMIDI, KindSerial}

// ParseKind validates an injector name
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown injector %q (want log, midi or serial)", s)
}

func wrap(op Op, k keymap.KeyCode, err error) error {
	if err == nil {
		return nil
	}
	return &InjectionError{Op: op, Key: k, Err: err}
}
