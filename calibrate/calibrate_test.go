package calibrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-lyred/keymap"
	"go-lyred/track"
)

func twoNotes() *track.Track {
	return track.New("two", []track.NoteEvent{
		{Start: 0, Pitch: 60, Duration: 200 * time.Millisecond},
		{Start: 500 * time.Millisecond, Pitch: 64, Duration: 200 * time.Millisecond},
	})
}

func TestEmptyTrackIsPerfect(t *testing.T) {
	empty := track.New("empty", nil)
	for o := -30; o <= 30; o++ {
		for _, m := range keymap.Modes {
			assert.Equal(t, 1.0, Detect(empty, o, m))
		}
	}
	assert.Equal(t, 1.0, Detect(nil, 3, keymap.ModeLyre))
}

func TestDetectMatchesKeyMap(t *testing.T) {
	tr := track.New("scale", []track.NoteEvent{
		{Pitch: 40}, {Pitch: 48}, {Pitch: 60}, {Pitch: 61}, {Pitch: 83}, {Pitch: 90},
	})
	for o := -12; o <= 12; o++ {
		for _, m := range keymap.Modes {
			want := 0
			for _, e := range tr.Events() {
				if _, ok := keymap.Lookup(e.Pitch+o, m); ok {
					want++
				}
			}
			got := Detect(tr, o, m)
			assert.Equal(t, float64(want)/6, got, "offset %d mode %s", o, m)
			// no hidden state
			assert.Equal(t, got, Detect(tr, o, m))
		}
	}
}

func TestDetectHalfPlayable(t *testing.T) {
	// +1 moves C4 onto C#4 (no lyre key) and E4 onto F4
	assert.Equal(t, 0.5, Detect(twoNotes(), 1, keymap.ModeLyre))
	assert.Equal(t, 1.0, Detect(twoNotes(), 0, keymap.ModeLyre))
}

func TestSweep(t *testing.T) {
	res := Sweep(twoNotes(), keymap.ModeLyre, 2, -2)
	require.Len(t, res, 5)
	assert.Equal(t, -2, res[0].Offset)
	assert.Equal(t, 2, res[4].Offset)
	assert.Equal(t, 1.0, res[2].HitRate)
}

func TestBestPrefersSmallestShift(t *testing.T) {
	best := Best(twoNotes(), keymap.ModeLyre, -DefaultSpan, DefaultSpan)
	assert.Equal(t, Result{Offset: 0, HitRate: 1.0}, best)

	// C7 and E7: -17 is the smallest shift landing both on naturals (G5, B5)
	high := track.New("high", []track.NoteEvent{{Pitch: 96}, {Pitch: 100}})
	best = Best(high, keymap.ModeLyre, -DefaultSpan, DefaultSpan)
	assert.Equal(t, -17, best.Offset)
	assert.Equal(t, 1.0, best.HitRate)
}

func TestBestTieGoesUp(t *testing.T) {
	// C#4: -1 gives C4 and +1 gives D4, both natural
	tr := track.New("sharp", []track.NoteEvent{{Pitch: 61}})
	best := Best(tr, keymap.ModeLyre, -3, 3)
	assert.Equal(t, 1, best.Offset)
}
