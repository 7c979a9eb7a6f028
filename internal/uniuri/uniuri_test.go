package uniuri

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	seen := map[string]bool{}

	for range 100 {
		s, err := New()
		require.NoError(t, err)
		assert.Len(t, s, StateLen)
		assert.Empty(t, strings.Trim(s, string(StdChars)))
		assert.False(t, seen[s])

		seen[s] = true
	}
}

func TestNewLenChars(t *testing.T) {
	s, err := NewLenChars(64, []byte("ab"))
	require.NoError(t, err)
	assert.Len(t, s, 64)
	assert.Empty(t, strings.Trim(s, "ab"))

	s, err = NewLenChars(0, StdChars)
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = NewLenChars(8, []byte("a"))
	require.ErrorIs(t, err, ErrCharset)
}
