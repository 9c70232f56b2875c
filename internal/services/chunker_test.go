package services

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkerShortTextSingleChunk(t *testing.T) {
	chunker := NewChunkerService()

	chunks := chunker.Chunk("One tiny rubric paragraph.", 300, 50)
	require.Len(t, chunks, 1)
	assert.Equal(t, "One tiny rubric paragraph.", chunks[0])
}

func TestChunkerEmptyText(t *testing.T) {
	chunker := NewChunkerService()

	assert.Empty(t, chunker.Chunk("", 300, 50))
	assert.Empty(t, chunker.Chunk("\n\n\n\n", 300, 50))
}

func TestChunkerRespectsSizeAndOverlap(t *testing.T) {
	chunker := NewChunkerService()

	var paras []string
	for i := 0; i < 10; i++ {
		paras = append(paras, strings.TrimSpace(strings.Repeat(fmt.Sprintf("sentence %d. ", i), 8)))
	}
	text := strings.Join(paras, "\n\n")

	chunks := chunker.Chunk(text, 300, 50)
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 300, "chunk %d too large", i)
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}

	// Each chunk starts with the tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		tail := lastRunes(chunks[i-1], 50)
		assert.True(t, strings.HasPrefix(chunks[i], tail), "chunk %d missing overlap", i)
	}
}

func TestChunkerSplitsOversizedParagraphBySentence(t *testing.T) {
	chunker := NewChunkerService()

	// One paragraph well past the chunk size.
	text := strings.TrimSpace(strings.Repeat("This sentence talks about scoring resumes fairly. ", 40))

	chunks := chunker.Chunk(text, 200, 0)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 200)
		assert.Contains(t, chunk, "scoring resumes fairly")
	}
}

func TestChunkerDefaults(t *testing.T) {
	chunker := NewChunkerService()

	chunks := chunker.Chunk("short text", 0, -5)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}
