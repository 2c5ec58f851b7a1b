package demo

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-z]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := NewID()
		assert.Regexp(t, pattern, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 190)
}

func TestNewIDFrom_SkipsBiasedBytes(t *testing.T) {
	assert.Equal(t, 252, idByteLimit)

	// 252..255 would map to '0'..'3' and are redrawn.
	src := bytes.NewReader([]byte{
		252, 253, 254, 255, 10, 11, 12, 13,
		0, 35, 251, 71, 1, 2, 3, 4,
	})
	id, err := newIDFrom(src)
	require.NoError(t, err)
	assert.Equal(t, "abcd0zzz", id)
}

func TestNewIDFrom_ShortRead(t *testing.T) {
	_, err := newIDFrom(bytes.NewReader([]byte{255, 255, 255, 255, 255, 255, 255, 255}))
	assert.Error(t, err)
}
