package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLyreNaturals(t *testing.T) {
	assert := assert.New(t)

	k, ok := Lookup(60, ModeLyre)
	assert.True(ok)
	assert.Equal(KeyCode('A'), k)

	k, ok = Lookup(48, ModeLyre)
	assert.True(ok)
	assert.Equal(KeyCode('Z'), k)

	k, ok = Lookup(83, ModeLyre)
	assert.True(ok)
	assert.Equal(KeyCode('U'), k)

	// sharps have no key on the lyre
	_, ok = Lookup(61, ModeLyre)
	assert.False(ok)
}

func TestOutOfRange(t *testing.T) {
	for _, m := range Modes {
		lo, hi := m.Range()
		_, ok := Lookup(lo-1, m)
		assert.False(t, ok, "mode %s below range", m)
		_, ok = Lookup(hi+1, m)
		assert.False(t, ok, "mode %s above range", m)
		_, ok = Lookup(-1000, m)
		assert.False(t, ok)
	}
}

func TestPianoIsChromatic(t *testing.T) {
	lo, hi := ModePiano.Range()
	for p := lo; p <= hi; p++ {
		_, ok := Lookup(p, ModePiano)
		assert.True(t, ok, "pitch %d", p)
	}
	assert.Len(t, Bindings(ModePiano), 36)
	assert.Len(t, Bindings(ModeLyre), 21)
}

func TestKeysAreDistinctPerMode(t *testing.T) {
	for _, m := range Modes {
		seen := map[KeyCode]int{}
		for _, b := range Bindings(m) {
			prev, dup := seen[b.Key]
			assert.False(t, dup, "mode %s: key %s bound to %d and %d", m, Name(b.Key), prev, b.Pitch)
			seen[b.Key] = b.Pitch
		}
	}
}

func TestPitchOfRoundTrips(t *testing.T) {
	for _, m := range Modes {
		for _, b := range Bindings(m) {
			p, ok := PitchOf(b.Key, m)
			require.True(t, ok)
			assert.Equal(t, b.Pitch, p)
		}
	}
	_, ok := PitchOf(KeySpace, ModeLyre)
	assert.False(t, ok)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("GenShin")
	require.NoError(t, err)
	assert.Equal(t, ModeLyre, m)

	m, err = ParseMode("vrchat")
	require.NoError(t, err)
	assert.Equal(t, ModePiano, m)

	_, err = ParseMode("kazoo")
	assert.Error(t, err)
}

func TestName(t *testing.T) {
	assert.Equal(t, "Space", Name(32))
	assert.Equal(t, "Backspace", Name(8))
	assert.Equal(t, "Ctrl", Name(17))
	assert.Equal(t, "Q", Name('Q'))
	assert.Equal(t, "F5", Name(KeyF1+4))
	assert.Equal(t, "VK250", Name(250))
}

func TestPitchName(t *testing.T) {
	assert.Equal(t, "C4", PitchName(60))
	assert.Equal(t, "A#2", PitchName(46))
	assert.Equal(t, "B5", PitchName(83))
	assert.Equal(t, "C-1", PitchName(0))
}
