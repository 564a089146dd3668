package debug

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogWritesCategorizedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "debug.log")
	require.NoError(t, Enable(path))
	t.Cleanup(Disable)
	assert.True(t, Enabled())

	Log("sched", "fired %d", 7)
	Warn("inject", "denied %s", "A")
	for i := 0; i < 4; i++ {
		LogEvery(2, "tick", "wake")
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "Debug logging started")
	assert.Contains(t, out, `msg="fired 7" category=sched`)
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "category=inject")
	assert.Contains(t, out, "every 2, count=4")
}

func TestLogDisabledIsNoop(t *testing.T) {
	Disable()
	assert.False(t, Enabled())
	Log("x", "nothing %d", 1)
}
