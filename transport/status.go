package transport

import (
	"go-lyred/keymap"
	"go-lyred/track"
)

// Status is a point-in-time copy of the transport for rendering. Fields are
// read one by one, so flags may disagree for a single redraw.
type Status struct {
	Active   bool
	Paused   bool
	Playing  bool
	Speed    float64
	Position int
	Length   int
	Offset   int
	Mode     keymap.Mode
	HitRate  float64
	Elapsed  int64 // ms at Position
	Total    int64 // ms
}

// Snapshot reads every field once
func (s *State) Snapshot() Status {
	ix := s.Index()
	pos := s.Position()
	return Status{
		Active:   s.IsActive(),
		Paused:   s.IsPaused(),
		Playing:  s.IsPlaying(),
		Speed:    s.Speed(),
		Position: pos,
		Length:   ix.Len(),
		Offset:   s.Offset(),
		Mode:     s.Mode(),
		HitRate:  s.HitRate(),
		Elapsed:  ix.At(pos),
		Total:    ix.Total(),
	}
}

// Label names the session state
func (st Status) Label() string {
	switch {
	case !st.Active:
		return "Stopped"
	case st.Paused:
		return "Paused"
	}
	return "Playing"
}

// Clock renders progress as mm:ss/mm:ss
func (st Status) Clock() string {
	return track.FormatClock(st.Elapsed) + "/" + track.FormatClock(st.Total)
}

// Progress is the play head as a fraction of the track
func (st Status) Progress() float64 {
	if st.Length <= 1 {
		return 0
	}
	return float64(min(st.Position, st.Length-1)) / float64(st.Length-1)
}
