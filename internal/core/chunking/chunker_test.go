package chunking

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lihongwen/pgvector-kit/internal/models"
)

func doc(content string) models.ParsedDocument {
	return models.ParsedDocument{
		Content:  content,
		Metadata: map[string]any{"file_name": "test.txt"},
	}
}

func TestChunkDocument_SingleChunk(t *testing.T) {
	c := NewChunker(500, 100)
	chunks := c.ChunkDocument(doc("A short paragraph. Nothing to split."), 0)

	require.Len(t, chunks, 1)
	assert.Equal(t, "A short paragraph. Nothing to split.", chunks[0].Content)
	assert.Equal(t, "single_chunk", chunks[0].Metadata["chunking_method"])
	assert.Equal(t, 0, chunks[0].ChunkIndex)
}

func TestChunkDocument_Empty(t *testing.T) {
	c := NewChunker(500, 100)
	assert.Empty(t, c.ChunkDocument(doc("   \n  "), 0))
}

func TestChunkDocument_SlidingWindow(t *testing.T) {
	c := NewChunker(100, 30)

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "Sentence number %d is right here. ", i)
	}
	chunks := c.ChunkDocument(doc(sb.String()), 0)

	require.Greater(t, len(chunks), 1)
	for i, ch := range chunks {
		assert.LessOrEqual(t, len([]rune(ch.Content)), 100+1, "chunk %d over budget", i)
		assert.Equal(t, i, ch.ChunkIndex)
		assert.Equal(t, "sliding_window", ch.Metadata["chunking_method"])
		assert.Equal(t, 100, ch.Metadata["chunk_size"])
		assert.Equal(t, 30, ch.Metadata["overlap_size"])
	}
}

func TestChunkDocument_OverlapCarriesWholeSentences(t *testing.T) {
	c := NewChunker(80, 40)
	text := "Alpha alpha alpha alpha. Bravo bravo bravo bravo. Charlie charlie charlie. Delta delta delta delta. Echo echo echo."
	chunks := c.ChunkDocument(doc(text), 0)
	require.Greater(t, len(chunks), 1)

	// The tail sentence of chunk N reappears at the head of chunk N+1.
	for i := 0; i < len(chunks)-1; i++ {
		prev := chunks[i].Content
		next := chunks[i+1].Content
		lastDot := strings.LastIndex(strings.TrimSuffix(prev, "."), ".")
		if lastDot < 0 {
			continue
		}
		tail := strings.TrimSpace(prev[lastDot+1:])
		assert.True(t, strings.HasPrefix(next, tail),
			"chunk %d head %q should start with previous tail %q", i+1, next, tail)
	}
}

func TestChunkDocument_NoSentenceBoundaries(t *testing.T) {
	c := NewChunker(100, 20)
	chunks := c.ChunkDocument(doc(strings.Repeat("ab", 120)), 0) // 240 runes, no enders

	// Segment force-splits into bounded units, so the window still applies.
	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len([]rune(ch.Content)), 101)
	}
}

func TestChunkDocument_HardCeiling(t *testing.T) {
	// A chunker misconfigured above the ceiling must still truncate.
	c := NewChunker(9000, 0)
	chunks := c.ChunkDocument(doc(strings.Repeat("x", 8500)), 0)

	require.Len(t, chunks, 1)
	assert.Equal(t, HardCeilingRunes, len([]rune(chunks[0].Content)))
	assert.Contains(t, chunks[0].Metadata, "truncation_warning")
}

func TestChunkDocuments_GlobalIndices(t *testing.T) {
	c := NewChunker(500, 100)
	chunks := c.ChunkDocuments([]models.ParsedDocument{
		doc("First document body."),
		doc("Second document body."),
		doc("Third document body."),
	})

	require.Len(t, chunks, 3)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkIndex)
		assert.Equal(t, 3, ch.TotalChunks)
	}
}

func TestChunkDocuments_MetadataIsolated(t *testing.T) {
	c := NewChunker(500, 100)
	shared := map[string]any{"source": "x"}
	chunks := c.ChunkDocuments([]models.ParsedDocument{
		{Content: "One.", Metadata: shared},
		{Content: "Two.", Metadata: shared},
	})
	require.Len(t, chunks, 2)

	chunks[0].Metadata["mutated"] = true
	_, leaked := chunks[1].Metadata["mutated"]
	assert.False(t, leaked, "chunk metadata maps must not alias")
	_, leaked = shared["mutated"]
	assert.False(t, leaked, "document metadata must not be mutated")
}

func TestNewChunker_Defaults(t *testing.T) {
	c := NewChunker(0, -5)
	assert.Equal(t, 500, c.chunkSize)
	assert.Equal(t, 0, c.overlap)

	c = NewChunker(100, 100) // overlap must stay below chunk size
	assert.Equal(t, 25, c.overlap)
}
