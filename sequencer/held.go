package sequencer

import (
	"container/heap"
	"slices"
	"time"

	"github.com/samber/lo"

	"go-lyred/keymap"
)

// release is a pending key-up, timed on the track clock so that a speed
// change stretches notes already sounding
type release struct {
	at  time.Duration
	key keymap.KeyCode
	gen uint64
}

// -------------------- Min-Heap --------------------

type releaseHeap []release

func (h releaseHeap) Len() int            { return len(h) }
func (h releaseHeap) Less(i, j int) bool  { return h[i].at < h[j].at }
func (h releaseHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *releaseHeap) Push(x interface{}) { *h = append(*h, x.(release)) }
func (h *releaseHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// heldKeys tracks which keys this player has pressed and not yet released.
// Each press gets a generation so that a key-up scheduled for an earlier
// press of the same key is ignored once the key was re-pressed.
type heldKeys struct {
	gens    map[keymap.KeyCode]uint64
	next    uint64
	pending releaseHeap
}

func newHeldKeys() *heldKeys {
	return &heldKeys{gens: make(map[keymap.KeyCode]uint64)}
}

func (h *heldKeys) isHeld(k keymap.KeyCode) bool {
	_, ok := h.gens[k]
	return ok
}

// press records k as down and returns its generation
func (h *heldKeys) press(k keymap.KeyCode) uint64 {
	h.next++
	h.gens[k] = h.next
	return h.next
}

// forget drops k from the held set
func (h *heldKeys) forget(k keymap.KeyCode) {
	delete(h.gens, k)
}

// schedule queues the key-up for generation gen of k at track time at
func (h *heldKeys) schedule(k keymap.KeyCode, gen uint64, at time.Duration) {
	heap.Push(&h.pending, release{at: at, key: k, gen: gen})
}

// due pops every pending key-up at or before t that still applies to the
// current press of its key
func (h *heldKeys) due(t time.Duration) []keymap.KeyCode {
	var keys []keymap.KeyCode
	for h.pending.Len() > 0 && h.pending[0].at <= t {
		r := heap.Pop(&h.pending).(release)
		if g, ok := h.gens[r.key]; ok && g == r.gen {
			keys = append(keys, r.key)
		}
	}
	return keys
}

// nextRelease returns the track time of the earliest pending key-up
func (h *heldKeys) nextRelease() (time.Duration, bool) {
	if h.pending.Len() == 0 {
		return 0, false
	}
	return h.pending[0].at, true
}

// drain empties the held set and the pending queue, returning the keys that
// were down in ascending order
func (h *heldKeys) drain() []keymap.KeyCode {
	keys := lo.Keys(h.gens)
	slices.Sort(keys)
	clear(h.gens)
	h.pending = h.pending[:0]
	return keys
}

func (h *heldKeys) len() int {
	return len(h.gens)
}
