package inject

import (
	"fmt"
	"io"
	"sync"
	"time"

	"go-lyred/debug"
	"go-lyred/keymap"
)

// Log is a dry-run injector: it writes one line per key event instead of
// touching the host. A nil writer only logs to the debug log.
type Log struct {
	w     io.Writer
	start time.Time
	mu    sync.Mutex
}

// NewLog returns a dry-run injector writing to w
func NewLog(w io.Writer) *Log {
	return &Log{w: w, start: time.Now()}
}

func (l *Log) Press(k keymap.KeyCode) error {
	return l.write("down", k)
}

func (l *Log) Release(k keymap.KeyCode) error {
	return l.write("up", k)
}

func (l *Log) write(dir string, k keymap.KeyCode) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	at := time.Since(l.start).Milliseconds()
	debug.Log("inject", "%6dms %-4s %s", at, dir, keymap.Name(k))
	if l.w == nil {
		return nil
	}
	_, err := fmt.Fprintf(l.w, "%6dms %-4s %s\n", at, dir, keymap.Name(k))
	if err != nil {
		op := OpPress
		if dir == "up" {
			op = OpRelease
		}
		return wrap(op, k, err)
	}
	return nil
}
