package transport

import (
	"math"
	"sync/atomic"

	"go-lyred/keymap"
	"go-lyred/track"
)

// Speed conventions for the presentation layer. The scheduler does not rely
// on them and applies its own positive floor.
const (
	DefaultSpeed = 1.0
	MinSpeed     = 0.1
	MaxSpeed     = 5.0
	SpeedStep    = 0.1
)

// State is the control/status block shared by the presentation layer and the
// playback scheduler. Every field is synchronized on its own; no method holds
// more than one field consistent with another, and callers tolerate a one-tick
// race between flags.
//
// The presentation layer writes the control fields (Play, Pause, Stop, Seek,
// SetSpeed, SetOffset, SetMode). The scheduler only writes status
// (Advance, SetPlaying, TakeSeek, Rewind, Finish).
type State struct {
	active  atomic.Bool
	paused  atomic.Bool
	playing atomic.Bool

	speed    atomic.Uint64 // math.Float64bits
	position atomic.Int64
	seek     atomic.Bool
	seekTo   atomic.Int64
	offset   atomic.Int64
	mode     atomic.Int32
	hitRate  atomic.Uint64 // math.Float64bits

	index    atomic.Pointer[track.Index]
	epoch    atomic.Uint64
	finished atomic.Uint64

	changed chan struct{}
}

// New returns a stopped transport at position 0
func New() *State {
	s := &State{changed: make(chan struct{}, 1)}
	s.speed.Store(math.Float64bits(DefaultSpeed))
	s.hitRate.Store(math.Float64bits(1.0))
	s.index.Store(&track.Index{})
	return s
}

// Changed is signalled after any control write. It has a single consumer,
// the scheduler, which uses it to wake early.
func (s *State) Changed() <-chan struct{} {
	return s.changed
}

func (s *State) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Control (presentation side)

// Play starts a session, or resumes a paused one
func (s *State) Play() {
	s.paused.Store(false)
	s.active.Store(true)
	s.notify()
}

// Pause suspends an active session without losing its position
func (s *State) Pause() {
	if !s.active.Load() {
		return
	}
	s.paused.Store(true)
	s.notify()
}

// Resume continues a paused session
func (s *State) Resume() {
	s.paused.Store(false)
	s.notify()
}

// Stop ends the session. Offset and speed are kept.
func (s *State) Stop() {
	s.paused.Store(false)
	s.active.Store(false)
	s.notify()
}

// Seek requests a jump to pos, clamped to the loaded track. Reading Position
// right after returns the clamped value.
func (s *State) Seek(pos int) int {
	pos = s.Index().Clamp(pos)
	s.seekTo.Store(int64(pos))
	s.position.Store(int64(pos))
	s.seek.Store(true)
	s.notify()
	return pos
}

// SeekTime seeks to the first note at or after ms
func (s *State) SeekTime(ms int64) int {
	return s.Seek(s.Index().PositionAt(ms))
}

// SetSpeed stores a playback rate multiplier. Values outside
// [MinSpeed, MaxSpeed] are accepted.
func (s *State) SetSpeed(v float64) {
	s.speed.Store(math.Float64bits(v))
	s.notify()
}

// NudgeSpeed adds delta, rounded to one decimal. Slowing down stops at
// MinSpeed.
func (s *State) NudgeSpeed(delta float64) float64 {
	v := math.Round((s.Speed()+delta)*10) / 10
	if delta < 0 && v < MinSpeed {
		v = MinSpeed
	}
	s.SetSpeed(v)
	return v
}

// SetOffset stores the transposition applied before key lookup
func (s *State) SetOffset(o int) {
	s.offset.Store(int64(o))
	s.notify()
}

// SetMode selects the instrument layout
func (s *State) SetMode(m keymap.Mode) {
	s.mode.Store(int32(m))
	s.notify()
}

// SetHitRate publishes the calibrator's result for the current offset
func (s *State) SetHitRate(r float64) {
	s.hitRate.Store(math.Float64bits(r))
}

// Reset re-arms the transport for a newly loaded track: stopped, position 0,
// no pending seek. A session still running on the previous track notices the
// new epoch and ends.
func (s *State) Reset(ix track.Index) {
	s.active.Store(false)
	s.paused.Store(false)
	s.seek.Store(false)
	s.position.Store(0)
	s.index.Store(&ix)
	s.epoch.Add(1)
	s.notify()
}

// Status (scheduler side)

// TakeSeek consumes a pending seek request
func (s *State) TakeSeek() (int, bool) {
	if !s.seek.CompareAndSwap(true, false) {
		return 0, false
	}
	return int(s.seekTo.Load()), true
}

// Advance publishes the play head for the session of epoch. It is dropped
// while a seek is pending so the requested position stays readable until the
// scheduler takes it, and once another track has been loaded.
func (s *State) Advance(epoch uint64, pos int) {
	if s.seek.Load() || s.epoch.Load() != epoch {
		return
	}
	s.position.Store(int64(pos))
}

// Rewind moves the play head back to the start
func (s *State) Rewind() {
	if s.seek.Load() {
		return
	}
	s.position.Store(0)
}

// SetPlaying reports whether the scheduler is currently progressing
func (s *State) SetPlaying(v bool) {
	s.playing.Store(v)
}

// Finish marks the natural end of the track for the session of epoch.
// It is a no-op once the transport has been reset or restarted elsewhere.
func (s *State) Finish(epoch uint64) {
	if s.epoch.Load() != epoch {
		return
	}
	s.active.Store(false)
	s.paused.Store(false)
	s.Rewind()
	s.finished.Add(1)
}

// Readers

func (s *State) IsActive() bool  { return s.active.Load() }
func (s *State) IsPaused() bool  { return s.paused.Load() }
func (s *State) IsPlaying() bool { return s.playing.Load() }

func (s *State) Speed() float64 {
	return math.Float64frombits(s.speed.Load())
}

func (s *State) Position() int {
	return int(s.position.Load())
}

func (s *State) SeekPending() bool {
	return s.seek.Load()
}

func (s *State) Offset() int {
	return int(s.offset.Load())
}

func (s *State) Mode() keymap.Mode {
	return keymap.Mode(s.mode.Load())
}

func (s *State) HitRate() float64 {
	return math.Float64frombits(s.hitRate.Load())
}

func (s *State) Index() track.Index {
	return *s.index.Load()
}

// Epoch identifies the currently loaded track
func (s *State) Epoch() uint64 {
	return s.epoch.Load()
}

// Finished counts tracks that played to the end
func (s *State) Finished() uint64 {
	return s.finished.Load()
}
