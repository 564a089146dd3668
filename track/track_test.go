package track

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const ms = time.Millisecond

func TestNewSortsStableByStart(t *testing.T) {
	tr := New("t", []NoteEvent{
		{Start: 500 * ms, Pitch: 64, Duration: 200 * ms},
		{Start: 0, Pitch: 60, Duration: 200 * ms},
		{Start: 0, Pitch: 64, Duration: 200 * ms},
		{Start: 0, Pitch: 67, Duration: 200 * ms},
	})

	require.Equal(t, 4, tr.Len())
	// chord keeps emission order
	assert.Equal(t, []int{60, 64, 67, 64}, []int{tr.At(0).Pitch, tr.At(1).Pitch, tr.At(2).Pitch, tr.At(3).Pitch})
	assert.Equal(t, Index{0, 0, 0, 500}, tr.Index())
	assert.Equal(t, 500*ms, tr.Duration())
	assert.Equal(t, 700*ms, tr.End())
}

func TestNewClampsNegative(t *testing.T) {
	tr := New("t", []NoteEvent{{Start: -5 * ms, Pitch: 60, Duration: -1}})
	assert.Equal(t, time.Duration(0), tr.At(0).Start)
	assert.Equal(t, time.Duration(0), tr.At(0).Duration)
}

func TestNewCopiesInput(t *testing.T) {
	in := []NoteEvent{{Start: 0, Pitch: 60}}
	tr := New("t", in)
	in[0].Pitch = 1
	assert.Equal(t, 60, tr.At(0).Pitch)
}

func TestIndex(t *testing.T) {
	ix := Index{0, 100, 100, 250, 1000}
	assert.Equal(t, 0, ix.Clamp(-3))
	assert.Equal(t, 4, ix.Clamp(99))
	assert.Equal(t, int64(1000), ix.Total())
	assert.Equal(t, int64(250), ix.At(3))
	assert.Equal(t, 1, ix.PositionAt(50))
	assert.Equal(t, 3, ix.PositionAt(250))
	assert.Equal(t, 4, ix.PositionAt(5000))

	var empty Index
	assert.Equal(t, 0, empty.Clamp(5))
	assert.Equal(t, int64(0), empty.At(2))
	assert.Equal(t, int64(0), empty.Total())
}

func TestStartOf(t *testing.T) {
	tr := New("t", []NoteEvent{{Start: 10 * ms, Pitch: 60, Duration: 5 * ms}})
	assert.Equal(t, time.Duration(0), tr.StartOf(-1))
	assert.Equal(t, 10*ms, tr.StartOf(0))
	assert.Equal(t, 15*ms, tr.StartOf(1))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "01:05", FormatClock(65_000))
	assert.Equal(t, "12:00", FormatClock(720_999))
	assert.Equal(t, "00:00", FormatClock(-10))
}

// 120 bpm at 960 ticks per quarter: 480 ticks = 250ms
func writeSMF(t *testing.T) []byte {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(960)

	var tempo smf.Track
	tempo.Add(0, smf.MetaTempo(120))
	tempo.Close(0)
	require.NoError(t, s.Add(tempo))

	var melody smf.Track
	melody.Add(0, smf.MetaTrackSequenceName("melody"))
	melody.Add(0, midi.NoteOn(0, 60, 100))
	melody.Add(480, midi.NoteOff(0, 60))
	melody.Add(0, midi.NoteOn(0, 64, 100))
	melody.Add(480, midi.NoteOff(0, 64))
	melody.Close(0)
	require.NoError(t, s.Add(melody))

	var drums smf.Track
	drums.Add(0, midi.NoteOn(DrumChannel, 36, 100))
	drums.Add(240, midi.NoteOff(DrumChannel, 36))
	drums.Close(0)
	require.NoError(t, s.Add(drums))

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadMergesTracks(t *testing.T) {
	tr, err := Read(bytes.NewReader(writeSMF(t)), "song.mid", Options{})
	require.NoError(t, err)

	assert.Equal(t, "song", tr.Name)
	require.Equal(t, 3, tr.Len())
	// melody C4 and the kick start together; track order breaks the tie
	assert.Equal(t, 60, tr.At(0).Pitch)
	assert.Equal(t, 36, tr.At(1).Pitch)
	assert.Equal(t, 64, tr.At(2).Pitch)

	assert.InDelta(t, 250*ms, tr.At(0).Duration, float64(ms))
	assert.InDelta(t, 250*ms, tr.At(2).Start, float64(ms))
	assert.InDelta(t, 125*ms, tr.At(1).Duration, float64(ms))
}

func TestReadSkipDrumsAndSelectTracks(t *testing.T) {
	data := writeSMF(t)

	tr, err := Read(bytes.NewReader(data), "song.mid", Options{SkipDrums: true})
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Len())

	tr, err = Read(bytes.NewReader(data), "song.mid", Options{Tracks: []int{2}})
	require.NoError(t, err)
	require.Equal(t, 1, tr.Len())
	assert.Equal(t, 36, tr.At(0).Pitch)

	_, err = Read(bytes.NewReader(data), "song.mid", Options{Tracks: []int{0}})
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.True(t, errors.Is(err, ErrNoNotes))
}

func TestReadRejectsGarbage(t *testing.T) {
	_, err := Read(strings.NewReader("definitely not a midi file"), "junk.mid", Options{})
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "junk.mid", fe.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.mid"), Options{})
	var ioe *IOError
	require.ErrorAs(t, err, &ioe)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestTracksInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mid")
	require.NoError(t, os.WriteFile(path, writeSMF(t), 0644))

	infos, err := Tracks(path)
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, 0, infos[0].Notes)
	assert.Equal(t, "melody", infos[1].Name)
	assert.Equal(t, 2, infos[1].Notes)
	assert.Equal(t, []uint8{0}, infos[1].Channels)
	assert.Equal(t, []uint8{DrumChannel}, infos[2].Channels)
	assert.InDelta(t, 500*ms, infos[1].Duration, float64(ms))
}
