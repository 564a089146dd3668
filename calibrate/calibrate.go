package calibrate

import (
	"github.com/samber/lo"

	"go-lyred/keymap"
	"go-lyred/track"
)

// DefaultSpan is how far Best searches in each direction (two octaves)
const DefaultSpan = 24

// Detect returns the fraction of notes in tr whose pitch+offset has a key in
// mode m. An empty track scores 1.0. It runs on every offset nudge from the
// UI, so it makes one pass and allocates nothing.
func Detect(tr *track.Track, offset int, m keymap.Mode) float64 {
	if tr == nil || tr.Len() == 0 {
		return 1.0
	}
	hits := 0
	for _, e := range tr.Events() {
		if _, ok := keymap.Lookup(e.Pitch+offset, m); ok {
			hits++
		}
	}
	return float64(hits) / float64(tr.Len())
}

// Result is the hit rate of one candidate offset
type Result struct {
	Offset  int
	HitRate float64
}

// Sweep scores every offset in [low, high]
func Sweep(tr *track.Track, m keymap.Mode, low, high int) []Result {
	if high < low {
		low, high = high, low
	}
	return lo.Map(lo.RangeFrom(low, high-low+1), func(o int, _ int) Result {
		return Result{Offset: o, HitRate: Detect(tr, o, m)}
	})
}

// Best picks the offset in [low, high] with the highest hit rate. Ties go to the
// smallest transposition, then to the upward one.
func Best(tr *track.Track, m keymap.Mode, low, high int) Result {
	results := Sweep(tr, m, low, high)
	return lo.MaxBy(results, func(a, b Result) bool {
		if a.HitRate != b.HitRate {
			return a.HitRate > b.HitRate
		}
		if abs(a.Offset) != abs(b.Offset) {
			return abs(a.Offset) < abs(b.Offset)
		}
		return a.Offset > b.Offset
	})
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
