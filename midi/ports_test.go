package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPort(t *testing.T) {
	names := []string{"Midi Through Port-0", "loopMIDI Port", "Key Bridge 1"}

	i, ok := matchPort(names, "")
	assert.True(t, ok)
	assert.Equal(t, 1, i, "pass-through ports are skipped")

	i, ok = matchPort(names, "Key Bridge 1")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	i, ok = matchPort(names, "bridge")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = matchPort(names, "launchpad")
	assert.False(t, ok)

	_, ok = matchPort([]string{"Midi Through Port-0"}, "")
	assert.False(t, ok)
}
