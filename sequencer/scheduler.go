package sequencer

import (
	"context"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"go-lyred/debug"
	"go-lyred/inject"
	"go-lyred/keymap"
	"go-lyred/track"
	"go-lyred/transport"
)

// StopPolicy decides where a user stop leaves the play head
type StopPolicy int32

const (
	StopRewind StopPolicy = iota // back to the first note
	StopHold                     // stay on the next unplayed note
)

func (p StopPolicy) String() string {
	if p == StopHold {
		return "hold"
	}
	return "rewind"
}

const (
	// effective speed bounds; the transport accepts anything
	speedFloor   = 0.01
	speedCeiling = 100.0

	maxWait  = 20 * time.Millisecond // longest sleep while a session runs
	idleWait = 50 * time.Millisecond // poll while stopped or paused
)

// Scheduler turns the loaded track into key presses at the right wall-clock
// instants. It reads control fields from the transport and writes back the
// play head. Run owns all session state; the other methods are safe to call
// from any goroutine.
type Scheduler struct {
	st  *transport.State
	inj inject.Injector

	tr        atomic.Pointer[track.Track]
	policy    atomic.Int32
	sessionID atomic.Pointer[string]

	held     *heldKeys
	failures atomic.Uint64
	errLimit *rate.Limiter
}

// NewScheduler creates a scheduler bound to a transport and an injector
func NewScheduler(st *transport.State, inj inject.Injector) *Scheduler {
	return &Scheduler{
		st:       st,
		inj:      inj,
		held:     newHeldKeys(),
		errLimit: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// SetTrack replaces the track used by the next session
func (s *Scheduler) SetTrack(t *track.Track) {
	s.tr.Store(t)
}

// Track returns the loaded track, nil if none
func (s *Scheduler) Track() *track.Track {
	return s.tr.Load()
}

// SetStopPolicy selects what a user stop does to the play head
func (s *Scheduler) SetStopPolicy(p StopPolicy) {
	s.policy.Store(int32(p))
}

func (s *Scheduler) StopPolicy() StopPolicy {
	return StopPolicy(s.policy.Load())
}

// SessionID identifies the current or last Play..Stop run in the debug log,
// empty before the first one
func (s *Scheduler) SessionID() string {
	if id := s.sessionID.Load(); id != nil {
		return *id
	}
	return ""
}

// Failures counts key events the injector refused
func (s *Scheduler) Failures() uint64 {
	return s.failures.Load()
}

// Run drives playback until ctx is cancelled. Call it once, on its own
// goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for ctx.Err() == nil {
		if s.st.IsActive() {
			s.session(ctx)
			continue
		}
		s.wait(ctx, idleWait)
	}
}

// wait sleeps for d or until the transport changes
func (s *Scheduler) wait(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-s.st.Changed():
	case <-timer.C:
	}
}

// speed returns the transport speed bounded to something the clock math can
// use
func (s *Scheduler) speed() float64 {
	v := s.st.Speed()
	switch {
	case math.IsNaN(v), v < speedFloor:
		return speedFloor
	case v > speedCeiling:
		return speedCeiling
	}
	return v
}

// session state for one Play..Stop run. The anchor pair maps wall-clock time
// to scheduled (track) time:
//
//	scheduled(now) = sched + (now - wall) * speed
//	wall(at)       = wall + (at - sched) / speed
type session struct {
	id     string
	tr     *track.Track
	epoch  uint64
	cursor int
	speed  float64
	wall   time.Time
	sched  time.Duration
}

func (ss *session) anchor(wall time.Time, sched time.Duration) {
	ss.wall = wall
	ss.sched = sched
}

func (ss *session) scheduledAt(now time.Time) time.Duration {
	return ss.sched + time.Duration(float64(now.Sub(ss.wall))*ss.speed)
}

func (ss *session) wallAt(at time.Duration) time.Time {
	return ss.wall.Add(time.Duration(float64(at-ss.sched) / ss.speed))
}

type endReason int

const (
	running endReason = iota
	endCancelled
	endReloaded
	endStopped
)

func (s *Scheduler) ended(ctx context.Context, epoch uint64) endReason {
	switch {
	case ctx.Err() != nil:
		return endCancelled
	case s.st.Epoch() != epoch:
		return endReloaded
	case !s.st.IsActive():
		return endStopped
	}
	return running
}

func (s *Scheduler) session(ctx context.Context) {
	epoch := s.st.Epoch()
	tr := s.tr.Load()
	if tr == nil || tr.Len() == 0 {
		debug.Log("sched", "play with nothing loaded")
		s.st.Finish(epoch)
		return
	}

	ss := &session{id: uuid.NewString(), tr: tr, epoch: epoch, speed: s.speed()}
	s.sessionID.Store(&ss.id)
	ss.cursor = min(max(s.st.Position(), 0), tr.Len())
	ss.anchor(time.Now(), tr.StartOf(ss.cursor))
	s.st.SetPlaying(true)
	debug.Log("sched", "session %s start track=%q pos=%d speed=%.2f", ss.id, tr.Name, ss.cursor, ss.speed)

	for {
		if reason := s.ended(ctx, epoch); reason != running {
			s.finish(ss, reason)
			return
		}
		if s.st.IsPaused() {
			s.pause(ctx, ss)
			continue
		}

		now := time.Now()
		if p, ok := s.st.TakeSeek(); ok {
			s.releaseAll()
			ss.cursor = min(max(p, 0), tr.Len())
			ss.anchor(now, tr.StartOf(ss.cursor))
			s.st.Advance(epoch, ss.cursor)
			debug.Log("sched", "session %s seek pos=%d at=%v", ss.id, ss.cursor, ss.sched)
		}
		if v := s.speed(); v != ss.speed {
			ss.anchor(now, ss.scheduledAt(now))
			ss.speed = v
			debug.Log("sched", "session %s speed %.2f at=%v", ss.id, v, ss.sched)
		}

		at := ss.scheduledAt(now)
		for ss.cursor < tr.Len() {
			ev := tr.At(ss.cursor)
			if ev.Start > at {
				break
			}
			s.releaseDue(ev.Start)
			s.fire(ev)
			ss.cursor++
			s.st.Advance(epoch, ss.cursor)
		}
		s.releaseDue(at)

		if ss.cursor >= tr.Len() && s.held.len() == 0 {
			s.st.SetPlaying(false)
			s.st.Finish(epoch)
			debug.Log("sched", "session %s end of track %q", ss.id, tr.Name)
			return
		}

		if d := time.Until(s.deadline(ss)); d > 0 {
			s.wait(ctx, min(d, maxWait))
		}
	}
}

// deadline is the wall-clock time of the next key event
func (s *Scheduler) deadline(ss *session) time.Time {
	var next time.Duration = math.MaxInt64
	if ss.cursor < ss.tr.Len() {
		next = ss.tr.At(ss.cursor).Start
	}
	if r, ok := s.held.nextRelease(); ok && r < next {
		next = r
	}
	if next == math.MaxInt64 {
		return time.Now().Add(maxWait)
	}
	return ss.wallAt(next)
}

// pause releases every held key and blocks until resumed or ended. Scheduled
// time is frozen at the instant the pause was observed.
func (s *Scheduler) pause(ctx context.Context, ss *session) {
	at := ss.scheduledAt(time.Now())
	s.releaseAll()
	s.st.SetPlaying(false)
	debug.Log("sched", "session %s paused pos=%d at=%v", ss.id, ss.cursor, at)

	for s.st.IsPaused() {
		if s.ended(ctx, ss.epoch) != running {
			return
		}
		s.wait(ctx, idleWait)
	}

	ss.speed = s.speed()
	ss.anchor(time.Now(), at)
	s.st.SetPlaying(true)
	debug.Log("sched", "session %s resumed at=%v", ss.id, at)
}

func (s *Scheduler) finish(ss *session, reason endReason) {
	s.releaseAll()
	defer s.st.SetPlaying(false)
	switch reason {
	case endStopped:
		if s.StopPolicy() == StopRewind {
			s.st.Rewind()
		}
		debug.Log("sched", "session %s stopped pos=%d policy=%s", ss.id, ss.cursor, s.StopPolicy())
	case endReloaded:
		debug.Log("sched", "session %s dropped, track replaced", ss.id)
	case endCancelled:
		debug.Log("sched", "session %s cancelled pos=%d", ss.id, ss.cursor)
	}
}

// fire presses the key for one note. Notes outside the key map are skipped.
func (s *Scheduler) fire(ev track.NoteEvent) {
	key, ok := keymap.Lookup(ev.Pitch+s.st.Offset(), s.st.Mode())
	if !ok {
		return
	}
	if s.held.isHeld(key) {
		s.release(key)
	}
	if err := s.inj.Press(key); err != nil {
		s.fail(err)
		return
	}
	gen := s.held.press(key)
	if ev.Duration <= 0 {
		s.release(key)
		return
	}
	s.held.schedule(key, gen, ev.End())
}

func (s *Scheduler) releaseDue(at time.Duration) {
	for _, k := range s.held.due(at) {
		s.release(k)
	}
}

func (s *Scheduler) release(k keymap.KeyCode) {
	s.held.forget(k)
	if err := s.inj.Release(k); err != nil {
		s.fail(err)
	}
}

func (s *Scheduler) releaseAll() {
	for _, k := range s.held.drain() {
		if err := s.inj.Release(k); err != nil {
			s.fail(err)
		}
	}
}

func (s *Scheduler) fail(err error) {
	n := s.failures.Add(1)
	if s.errLimit.Allow() {
		debug.Warn("sched", "session %s: %v (failures=%d)", s.SessionID(), err, n)
	}
}
