package stringutils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	// "é" is two bytes; cutting at 2 would split it.
	assert.Equal(t, "a...", Truncate("aéb", 2))
}

func TestPreview(t *testing.T) {
	long := []byte(strings.Repeat("x", 200))
	assert.Equal(t, strings.Repeat("x", PreviewLen)+"...", Preview(long))
	assert.Equal(t, "tiny", Preview([]byte("tiny")))
}
