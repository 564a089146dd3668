// Package hotkey maps polled physical keys onto transport commands.
//
// Detection is by polling: the presentation layer calls Poll once per redraw
// tick, so the worst-case latency between a key press and its effect is one
// tick.
package hotkey

import (
	"sync"
	"sync/atomic"
	"time"

	"go-lyred/config"
	"go-lyred/debug"
	"go-lyred/keymap"
)

// Poller reports whether a physical key is currently held down
type Poller interface {
	IsPressed(k keymap.KeyCode) bool
}

// Transport is the part of the player the function keys drive
type Transport interface {
	Play()
	Pause()
	Stop()
}

// Action is what a poll triggered
type Action int

const (
	None Action = iota
	Play
	Pause
	Stop
)

func (a Action) String() string {
	switch a {
	case Play:
		return "play"
	case Pause:
		return "pause"
	case Stop:
		return "stop"
	}
	return "none"
}

// Dispatcher polls the function keys and forwards them to a transport.
// Keys are level-triggered: holding Play keeps asserting play, which is
// harmless since the commands are idempotent.
type Dispatcher struct {
	poll Poller
	tr   Transport
	keys atomic.Pointer[config.FunctionKeys]
}

// NewDispatcher binds keys on p to tr
func NewDispatcher(p Poller, tr Transport, keys config.FunctionKeys) *Dispatcher {
	d := &Dispatcher{poll: p, tr: tr}
	d.SetKeys(keys)
	return d
}

// SetKeys rebinds the function keys; safe while polling
func (d *Dispatcher) SetKeys(k config.FunctionKeys) {
	d.keys.Store(&k)
}

// Keys returns the current bindings
func (d *Dispatcher) Keys() config.FunctionKeys {
	return *d.keys.Load()
}

// Poll checks the function keys once. When several are down, stop beats
// pause beats play.
func (d *Dispatcher) Poll() Action {
	k := d.Keys()
	var a Action
	switch {
	case d.poll.IsPressed(k.Stop):
		d.tr.Stop()
		a = Stop
	case d.poll.IsPressed(k.Pause):
		d.tr.Pause()
		a = Pause
	case d.poll.IsPressed(k.Play):
		d.tr.Play()
		a = Play
	}
	if a != None {
		debug.LogEvery(10, "hotkey", "%s", a)
	}
	return a
}

// DefaultHold is how long a latched key counts as down
const DefaultHold = 100 * time.Millisecond

// Latch is a Poller fed by key-press events from a source that has no
// key-up events (a terminal). A key counts as held for a short window after
// its last press; auto-repeat keeps it held.
type Latch struct {
	hold time.Duration
	now  func() time.Time

	mu   sync.Mutex
	seen map[keymap.KeyCode]time.Time
}

// NewLatch returns a latch with the given hold window (DefaultHold if zero)
func NewLatch(hold time.Duration) *Latch {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Latch{hold: hold, now: time.Now, seen: make(map[keymap.KeyCode]time.Time)}
}

// Press records that k went down now
func (l *Latch) Press(k keymap.KeyCode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[k] = l.now()
}

func (l *Latch) IsPressed(k keymap.KeyCode) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	at, ok := l.seen[k]
	if !ok {
		return false
	}
	if l.now().Sub(at) > l.hold {
		delete(l.seen, k)
		return false
	}
	return true
}
