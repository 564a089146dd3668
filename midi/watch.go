package midi

import (
	"context"
	"time"

	"go-lyred/debug"
)

// PortEvent is emitted when the watched output port appears or goes away
type PortEvent struct {
	Type PortEventType
	Name string
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

// PortWatcher handles hot-plug detection of one output port, so a bridge
// started after the player (or restarted mid-song) is picked up
type PortWatcher struct {
	want     string
	current  string
	events   chan PortEvent
	pollRate time.Duration
	scan     func() ([]string, error)
}

// NewPortWatcher watches for the port matching want (see matchPort)
func NewPortWatcher(want string) *PortWatcher {
	return &PortWatcher{
		want:     want,
		events:   make(chan PortEvent, 16),
		pollRate: time.Second,
		scan:     OutPorts,
	}
}

// Events returns a channel of connect/disconnect events. It is closed when
// Run returns.
func (w *PortWatcher) Events() <-chan PortEvent {
	return w.events
}

// Run starts the polling loop (blocking - run in goroutine)
func (w *PortWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()
	defer close(w.events)

	// Initial scan
	w.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *PortWatcher) poll(ctx context.Context) {
	names, err := w.scan()
	if err != nil {
		// driver is hung - skip this scan
		debug.LogEvery(10, "midi", "port scan: %v", err)
		return
	}

	name := ""
	if i, ok := matchPort(names, w.want); ok {
		name = names[i]
	}
	if name == w.current {
		return
	}

	if w.current != "" {
		debug.Log("midi", "port gone: %s", w.current)
		w.emit(ctx, PortEvent{Type: PortDisconnected, Name: w.current})
	}
	w.current = name
	if name != "" {
		debug.Log("midi", "port found: %s", name)
		w.emit(ctx, PortEvent{Type: PortConnected, Name: name})
	}
}

func (w *PortWatcher) emit(ctx context.Context, ev PortEvent) {
	select {
	case w.events <- ev:
	case <-ctx.Done():
	}
}
