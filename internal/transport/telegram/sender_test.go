package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHTMLShortText(t *testing.T) {
	chunks := splitHTML("hello", 100)
	assert.Equal(t, []string{"hello"}, chunks)
}

func TestSplitHTMLBreaksAtNewline(t *testing.T) {
	text := strings.Repeat("a", 60) + "\n" + strings.Repeat("b", 60)
	chunks := splitHTML(text, 100)

	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("a", 60), chunks[0])
	assert.Equal(t, strings.Repeat("b", 60), chunks[1])
}

func TestSplitHTMLHardCutWithoutNewline(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks := splitHTML(text, 100)

	require.Len(t, chunks, 3)
	assert.Equal(t, 100, len(chunks[0]))
	assert.Equal(t, 100, len(chunks[1]))
	assert.Equal(t, 50, len(chunks[2]))
}

func TestSplitHTMLIgnoresEarlyNewline(t *testing.T) {
	// A newline in the first third is not a useful break point
	text := "ab\n" + strings.Repeat("c", 200)
	chunks := splitHTML(text, 100)

	require.True(t, len(chunks) >= 2)
	assert.Equal(t, 100, len(chunks[0]))
}
