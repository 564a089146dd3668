package sequencer

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"

	"go-lyred/calibrate"
	"go-lyred/debug"
	"go-lyred/inject"
	"go-lyred/keymap"
	"go-lyred/track"
	"go-lyred/transport"
)

// UI refresh rate
const uiFPS = 30

// Manager owns one player: the transport, the scheduler and the loaded file.
// The presentation layer talks to it and to its transport.
type Manager struct {
	st    *transport.State
	sched *Scheduler

	mu   sync.RWMutex
	tr   *track.Track
	path string
	opts track.Options

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager creates a stopped player that injects through inj
func NewManager(inj inject.Injector) *Manager {
	st := transport.New()
	return &Manager{
		st:         st,
		sched:      NewScheduler(st, inj),
		UpdateChan: make(chan struct{}, 1),
	}
}

// State returns the shared transport
func (m *Manager) State() *transport.State {
	return m.st
}

// Scheduler returns the playback scheduler
func (m *Manager) Scheduler() *Scheduler {
	return m.sched
}

// StartRuntime starts the scheduler and the UI tick (called once at startup).
// Both stop when ctx is cancelled. The returned channel is closed once the
// scheduler has released every held key and returned; close the injector
// only after that.
func (m *Manager) StartRuntime(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	debug.Log("manager", "runtime started")
	go func() {
		defer close(done)
		m.sched.Run(ctx)
	}()
	go m.uiLoop(ctx)
	return done
}

// uiLoop signals the TUI at a fixed rate while something is playing
func (m *Manager) uiLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / uiFPS)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.notify()
		}
	}
}

func (m *Manager) notify() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

// Open stops playback and loads path. On error the previous track stays
// loaded and the transport stays stopped.
func (m *Manager) Open(path string, opts track.Options) error {
	m.st.Stop()
	tr, err := track.Load(path, opts)
	if err != nil {
		debug.Warn("manager", "open %s: %v", path, err)
		return err
	}
	m.mu.Lock()
	m.path = path
	m.opts = opts
	m.mu.Unlock()
	m.Load(tr)
	return nil
}

// Reload re-reads the current file with different track options
func (m *Manager) Reload(opts track.Options) error {
	path := m.Path()
	if path == "" {
		return nil
	}
	return m.Open(path, opts)
}

// ToggleDrums reloads the current file with the percussion channel dropped
// or restored, and reports whether drums are now skipped
func (m *Manager) ToggleDrums() (bool, error) {
	opts := m.Options()
	if m.Path() == "" {
		return opts.SkipDrums, nil
	}
	opts.SkipDrums = !opts.SkipDrums
	if err := m.Reload(opts); err != nil {
		return !opts.SkipDrums, err
	}
	return opts.SkipDrums, nil
}

// CycleTrack reloads the current file with the next track that has notes
// selected on its own, wrapping back to all tracks merged (-1) after the last
func (m *Manager) CycleTrack() (int, error) {
	path := m.Path()
	if path == "" {
		return -1, nil
	}
	infos, err := track.Tracks(path)
	if err != nil {
		return -1, err
	}
	numbers := lo.FilterMap(infos, func(info track.Info, _ int) (int, bool) {
		return info.Number, info.Notes > 0
	})

	opts := m.Options()
	next := -1
	switch {
	case len(opts.Tracks) == 0 && len(numbers) > 0:
		next = numbers[0]
	case len(opts.Tracks) == 1:
		if i := lo.IndexOf(numbers, opts.Tracks[0]); i >= 0 && i+1 < len(numbers) {
			next = numbers[i+1]
		}
	}

	opts.Tracks = nil
	if next >= 0 {
		opts.Tracks = []int{next}
	}
	if err := m.Reload(opts); err != nil {
		return -1, err
	}
	return next, nil
}

// Load installs an already parsed track: the transport is reset to position
// 0 and the offset to 0, and the hit rate is recomputed.
func (m *Manager) Load(tr *track.Track) {
	m.st.Stop()
	m.mu.Lock()
	m.tr = tr
	m.mu.Unlock()

	m.sched.SetTrack(tr)
	m.st.Reset(tr.Index())
	m.SetOffset(0)
	debug.Log("manager", "loaded %q notes=%d length=%s hit=%.2f",
		tr.Name, tr.Len(), track.FormatClock(tr.Index().Total()), m.st.HitRate())
	m.notify()
}

// Track returns the loaded track, nil before the first Open
func (m *Manager) Track() *track.Track {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tr
}

// Path returns the file behind the loaded track
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// Options returns the track selection of the loaded file
func (m *Manager) Options() track.Options {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.opts
}

// Play starts or resumes playback
func (m *Manager) Play() {
	m.st.Play()
}

// Pause suspends playback
func (m *Manager) Pause() {
	m.st.Pause()
}

// TogglePause pauses a playing session and resumes a paused one
func (m *Manager) TogglePause() {
	switch {
	case !m.st.IsActive():
		m.st.Play()
	case m.st.IsPaused():
		m.st.Resume()
	default:
		m.st.Pause()
	}
}

// Stop ends playback
func (m *Manager) Stop() {
	m.st.Stop()
}

// Seek jumps to a note position
func (m *Manager) Seek(pos int) int {
	return m.st.Seek(pos)
}

// SeekBy moves the play head by delta notes
func (m *Manager) SeekBy(delta int) int {
	return m.st.Seek(m.st.Position() + delta)
}

// SetOffset sets the transposition and publishes its hit rate
func (m *Manager) SetOffset(offset int) float64 {
	m.st.SetOffset(offset)
	return m.refreshHitRate()
}

// NudgeOffset moves the transposition by delta semitones
func (m *Manager) NudgeOffset(delta int) float64 {
	return m.SetOffset(m.st.Offset() + delta)
}

// SetMode switches the instrument layout and recomputes the hit rate
func (m *Manager) SetMode(mode keymap.Mode) float64 {
	m.st.SetMode(mode)
	return m.refreshHitRate()
}

// NextMode cycles through the instrument layouts
func (m *Manager) NextMode() keymap.Mode {
	next := keymap.Modes[(int(m.st.Mode())+1)%len(keymap.Modes)]
	m.SetMode(next)
	return next
}

// AutoCalibrate applies the offset in [low, high] with the best hit rate
func (m *Manager) AutoCalibrate(low, high int) calibrate.Result {
	tr := m.Track()
	if tr == nil {
		return calibrate.Result{Offset: m.st.Offset(), HitRate: m.st.HitRate()}
	}
	best := calibrate.Best(tr, m.st.Mode(), low, high)
	m.SetOffset(best.Offset)
	debug.Log("manager", "auto-calibrated offset=%d hit=%.4f", best.Offset, best.HitRate)
	return best
}

func (m *Manager) refreshHitRate() float64 {
	r := calibrate.Detect(m.Track(), m.st.Offset(), m.st.Mode())
	m.st.SetHitRate(r)
	return r
}
