package track

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// DrumChannel is MIDI channel 10 (zero based), reserved for percussion
const DrumChannel = 9

// FormatError reports input that is not a well-formed score
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: not a valid MIDI file: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// IOError reports a score that could not be read
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: read failed: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ErrNoNotes is wrapped in a FormatError when the selected tracks hold no notes
var ErrNoNotes = errors.New("no notes in selected tracks")

// Options controls how a multi-track file is merged into one track
type Options struct {
	Tracks    []int // track numbers to merge; empty merges all
	SkipDrums bool  // drop notes on the percussion channel
}

func (o Options) wants(trackNo int, ch uint8) bool {
	if o.SkipDrums && ch == DrumChannel {
		return false
	}
	return len(o.Tracks) == 0 || lo.Contains(o.Tracks, trackNo)
}

// Info summarizes one track of a MIDI file
type Info struct {
	Number   int
	Name     string
	Notes    int
	Channels []uint8
	Duration time.Duration
}

// Load reads a standard MIDI file and merges the selected tracks into a
// single playable track
func Load(path string, opts Options) (*Track, error) {
	s, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return convert(s, path, opts)
}

// Read is Load for an already open stream
func Read(r io.Reader, name string, opts Options) (*Track, error) {
	s, err := parse(r, name)
	if err != nil {
		return nil, err
	}
	return convert(s, name, opts)
}

// Tracks lists the tracks of a MIDI file
func Tracks(path string) ([]Info, error) {
	s, err := readFile(path)
	if err != nil {
		return nil, err
	}
	infos := make([]Info, 0, len(s.Tracks))
	for no := range s.Tracks {
		notes := collect(s, no, Options{})
		info := Info{Number: no, Notes: len(notes)}
		info.Name = trackName(s.Tracks[no])
		info.Channels = lo.Uniq(lo.Map(notes, func(n rawNote, _ int) uint8 { return n.channel }))
		for _, n := range notes {
			info.Duration = max(info.Duration, n.end)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func readFile(path string) (*smf.SMF, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return parse(bytes.NewReader(dat), path)
}

func parse(r io.Reader, name string) (s *smf.SMF, err error) {
	// the smf reader panics on some malformed input
	defer func() {
		if rec := recover(); rec != nil {
			s, err = nil, &FormatError{Path: name, Err: fmt.Errorf("%v", rec)}
		}
	}()

	s, err = smf.ReadFrom(r)
	if err != nil {
		return nil, &FormatError{Path: name, Err: err}
	}
	return s, nil
}

type rawNote struct {
	start, end time.Duration
	pitch      int
	channel    uint8
}

type noteKey struct {
	channel, key uint8
}

// collect pairs note starts with note ends in one track. Overlapping notes
// on the same key are closed first-in first-out; notes left open end at the
// last event of the track.
func collect(s *smf.SMF, trackNo int, opts Options) []rawNote {
	var (
		notes []rawNote
		open  = map[noteKey][]int{}
		abs   int64
	)
	at := func(ticks int64) time.Duration {
		return time.Duration(s.TimeAt(ticks)) * time.Microsecond
	}

	for _, ev := range s.Tracks[trackNo] {
		abs += int64(ev.Delta)
		msg := midi.Message(ev.Message)
		var ch, key, vel uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			if !opts.wants(trackNo, ch) {
				continue
			}
			k := noteKey{ch, key}
			open[k] = append(open[k], len(notes))
			t := at(abs)
			notes = append(notes, rawNote{start: t, end: t, pitch: int(key), channel: ch})
		case msg.GetNoteEnd(&ch, &key):
			k := noteKey{ch, key}
			if q := open[k]; len(q) > 0 {
				notes[q[0]].end = at(abs)
				open[k] = q[1:]
			}
		}
	}

	last := at(abs)
	for _, q := range open {
		for _, i := range q {
			notes[i].end = last
		}
	}
	return notes
}

func convert(s *smf.SMF, name string, opts Options) (*Track, error) {
	var events []NoteEvent
	for no := range s.Tracks {
		if len(opts.Tracks) > 0 && !lo.Contains(opts.Tracks, no) {
			continue
		}
		for _, n := range collect(s, no, opts) {
			events = append(events, NoteEvent{
				Start:    n.start,
				Pitch:    n.pitch,
				Duration: n.end - n.start,
			})
		}
	}
	if len(events) == 0 {
		return nil, &FormatError{Path: name, Err: ErrNoNotes}
	}
	title := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return New(title, events), nil
}

func trackName(tr smf.Track) string {
	for _, ev := range tr {
		var name string
		if ev.Message.GetMetaTrackName(&name) {
			return name
		}
	}
	return ""
}
