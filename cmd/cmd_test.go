package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// writeSong writes a one-track file at 120 bpm, each pitch an eighth note
func writeSong(t *testing.T, pitches ...uint8) string {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, smf.MetaTrackSequenceName("tune"))
	for _, p := range pitches {
		tr.Add(0, midi.NoteOn(0, p, 100))
		tr.Add(240, midi.NoteOff(0, p))
	}
	tr.Close(0)
	require.NoError(t, s.Add(tr))

	path := filepath.Join(t.TempDir(), "tune.mid")
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "config.json")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", cfg))
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestCalibrateCommand(t *testing.T) {
	path := writeSong(t, 60, 61)
	out := run(t, "calibrate", path, "--range", "2")

	assert.Contains(t, out, "tune: 2 notes")
	assert.Contains(t, out, "+1")
	assert.Contains(t, out, "50.00%")
	assert.Contains(t, out, "-2")
	assert.NotContains(t, out, "+3")
}

func TestTracksCommand(t *testing.T) {
	out := run(t, "tracks", writeSong(t, 60, 62, 64))
	assert.Contains(t, out, "tune")
	assert.Contains(t, out, "NOTES")
}

func TestKeysCommand(t *testing.T) {
	out := run(t, "keys", "--mode", "lyre")
	assert.Contains(t, out, "C4")
	assert.Contains(t, out, "Space / Backspace / Ctrl")
}

func TestPlayHeadless(t *testing.T) {
	path := writeSong(t, 60, 64)
	out := run(t, "play", path, "--headless", "--speed", "4", "--injector", "log")

	assert.Contains(t, out, "playing tune")
	assert.Contains(t, out, "down A")
	assert.Contains(t, out, "up   D")
	assert.Contains(t, out, "done, 0 keys refused")
}

func TestPlayRejectsUnknownInjector(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"play", writeSong(t, 60), "--headless", "--injector", "xdotool",
		"--config", filepath.Join(t.TempDir(), "config.json")})
	assert.Error(t, rootCmd.Execute())
}
