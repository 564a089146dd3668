package track

import (
	"fmt"
	"sort"
	"time"
)

// NoteEvent is a single note of a playable track
type NoteEvent struct {
	Start    time.Duration // offset from the start of the track
	Pitch    int           // MIDI semitone number (60 = C4)
	Duration time.Duration
}

// End returns when the note stops sounding
func (e NoteEvent) End() time.Duration {
	return e.Start + e.Duration
}

// Track is an immutable, start-ordered sequence of notes. Notes that start
// together keep the order they were added in, so chords stay intact.
type Track struct {
	Name   string
	events []NoteEvent
	index  Index
	end    time.Duration
}

// New builds a track from events in emission order. The slice is copied;
// negative starts and durations are clamped to zero.
func New(name string, events []NoteEvent) *Track {
	evs := make([]NoteEvent, len(events))
	copy(evs, events)
	for i := range evs {
		evs[i].Start = max(evs[i].Start, 0)
		evs[i].Duration = max(evs[i].Duration, 0)
	}
	sort.SliceStable(evs, func(i, j int) bool {
		return evs[i].Start < evs[j].Start
	})

	t := &Track{Name: name, events: evs, index: make(Index, len(evs))}
	for i, e := range evs {
		t.index[i] = e.Start.Milliseconds()
		t.end = max(t.end, e.End())
	}
	return t
}

// Len returns the number of notes
func (t *Track) Len() int {
	return len(t.events)
}

// At returns note i
func (t *Track) At(i int) NoteEvent {
	return t.events[i]
}

// Events exposes the backing slice for read-only iteration. Callers must not
// modify it.
func (t *Track) Events() []NoteEvent {
	return t.events
}

// Index returns the position/time table of the track
func (t *Track) Index() Index {
	return t.index
}

// Duration is the time of the last note onset, the span covered by the
// position slider
func (t *Track) Duration() time.Duration {
	return time.Duration(t.index.Total()) * time.Millisecond
}

// End is when the last note stops sounding
func (t *Track) End() time.Duration {
	return t.end
}

// StartOf returns the start time at position pos. Positions past the last
// note map to the end of the track.
func (t *Track) StartOf(pos int) time.Duration {
	if pos < 0 {
		return 0
	}
	if pos >= len(t.events) {
		return t.end
	}
	return t.events[pos].Start
}

// Index holds, per note position, the elapsed milliseconds at that note.
// Entries are non-decreasing; the last one is the total duration.
type Index []int64

// Len returns the number of positions
func (ix Index) Len() int {
	return len(ix)
}

// Clamp bounds pos to [0, len-1]
func (ix Index) Clamp(pos int) int {
	if pos >= len(ix) {
		pos = len(ix) - 1
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

// At returns the elapsed milliseconds at pos (clamped)
func (ix Index) At(pos int) int64 {
	if len(ix) == 0 {
		return 0
	}
	return ix[ix.Clamp(pos)]
}

// Total returns the track duration in milliseconds
func (ix Index) Total() int64 {
	if len(ix) == 0 {
		return 0
	}
	return ix[len(ix)-1]
}

// PositionAt converts a time into the first position at or after it
func (ix Index) PositionAt(ms int64) int {
	pos := sort.Search(len(ix), func(i int) bool { return ix[i] >= ms })
	return ix.Clamp(pos)
}

// FormatClock renders milliseconds as mm:ss
func FormatClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%02d:%02d", ms/60000, ms/1000%60)
}
