// Package chunking splits parsed documents into bounded, overlapping text
// chunks with sentence-safe boundaries.
package chunking

import (
	"strings"

	"github.com/lihongwen/pgvector-kit/internal/models"
)

// HardCeilingRunes is the absolute per-chunk content limit, kept under the
// embedding API's 8192-character input cap. Chunks are truncated here even if
// the sizing logic misbehaves, with the truncation recorded in metadata.
const HardCeilingRunes = 8000

// Chunker assembles segmented sentences into size-bounded chunks with
// sentence-granular overlap.
type Chunker struct {
	chunkSize int
	overlap   int
}

// NewChunker builds a chunker. Non-positive sizes fall back to the defaults
// (500/100); overlap is clamped below chunkSize so the window always advances.
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// ChunkDocuments chunks every document, assigning chunk indices that are
// global across the whole call, and back-fills TotalChunks once the full set
// is known.
func (c *Chunker) ChunkDocuments(docs []models.ParsedDocument) []models.TextChunk {
	var all []models.TextChunk
	for _, doc := range docs {
		all = append(all, c.ChunkDocument(doc, len(all))...)
	}
	for i := range all {
		all[i].TotalChunks = len(all)
	}
	return all
}

// ChunkDocument chunks a single document, numbering chunks from startIndex.
// Whitespace-only content yields zero chunks.
func (c *Chunker) ChunkDocument(doc models.ParsedDocument, startIndex int) []models.TextChunk {
	text := strings.TrimSpace(doc.Content)
	if text == "" {
		return nil
	}

	if runeLen(text) <= c.chunkSize {
		meta := copyMeta(doc.Metadata)
		meta["original_length"] = runeLen(text)
		if runeLen(text) > HardCeilingRunes {
			text = string([]rune(text)[:HardCeilingRunes])
			meta["chunking_method"] = "single_chunk_truncated"
			meta["truncation_warning"] = "content was truncated to fit embedding API limits"
		} else {
			meta["chunking_method"] = "single_chunk"
		}
		meta["chunk_length"] = runeLen(text)
		return []models.TextChunk{{
			Content:     text,
			Metadata:    meta,
			ChunkIndex:  startIndex,
			TotalChunks: 1,
		}}
	}

	return c.slidingWindow(doc, text, startIndex)
}

func (c *Chunker) slidingWindow(doc models.ParsedDocument, text string, startIndex int) []models.TextChunk {
	sentences := Segment(text, c.chunkSize)
	if len(sentences) == 0 {
		return []models.TextChunk{c.fallbackChunk(doc, text, startIndex)}
	}

	var (
		chunks     []models.TextChunk
		buf        []string
		bufLen     int
		localIndex int
	)

	for _, sentence := range sentences {
		sLen := runeLen(sentence)

		// Close the chunk before this sentence would overflow it. Never close
		// an empty buffer: a sentence longer than chunkSize cannot exist here
		// because Segment bounds every unit.
		if bufLen+sLen > c.chunkSize && len(buf) > 0 {
			content := strings.Join(buf, " ")
			chunks = append(chunks, c.makeChunk(doc, content, startIndex+localIndex, localIndex))
			localIndex++

			buf = c.overlapSentences(buf)
			bufLen = runeLen(strings.Join(buf, " "))
		}

		buf = append(buf, sentence)
		bufLen += sLen
		if len(buf) > 1 {
			bufLen++ // joining space
		}
	}

	if len(buf) > 0 {
		content := strings.Join(buf, " ")
		chunks = append(chunks, c.makeChunk(doc, content, startIndex+localIndex, localIndex))
	}

	return chunks
}

// overlapSentences walks backward through a just-closed chunk's sentences,
// keeping whole sentences while their joined length stays within the overlap
// budget. Sentences are never split across a chunk boundary.
func (c *Chunker) overlapSentences(sentences []string) []string {
	if c.overlap <= 0 || len(sentences) == 0 {
		return nil
	}
	var kept []string
	total := 0
	for i := len(sentences) - 1; i >= 0; i-- {
		sLen := runeLen(sentences[i])
		joined := total + sLen
		if len(kept) > 0 {
			joined++ // joining space
		}
		if joined > c.overlap {
			break
		}
		kept = append([]string{sentences[i]}, kept...)
		total = joined
	}
	return kept
}

func (c *Chunker) makeChunk(doc models.ParsedDocument, content string, globalIndex, localIndex int) models.TextChunk {
	content = strings.TrimSpace(content)
	meta := copyMeta(doc.Metadata)
	meta["chunk_size"] = c.chunkSize
	meta["overlap_size"] = c.overlap
	meta["local_chunk_index"] = localIndex
	meta["original_length"] = runeLen(doc.Content)

	if runeLen(content) > HardCeilingRunes {
		content = string([]rune(content)[:HardCeilingRunes])
		meta["chunking_method"] = "force_truncated"
		meta["truncation_warning"] = "content was truncated to fit embedding API limits"
	} else {
		meta["chunking_method"] = "sliding_window"
	}
	meta["chunk_length"] = runeLen(content)

	return models.TextChunk{
		Content:     content,
		Metadata:    meta,
		ChunkIndex:  globalIndex,
		TotalChunks: 1, // back-filled by ChunkDocuments
	}
}

// fallbackChunk handles content with no detectable sentence boundaries:
// a single chunk, truncated at the hard ceiling if needed.
func (c *Chunker) fallbackChunk(doc models.ParsedDocument, text string, startIndex int) models.TextChunk {
	meta := copyMeta(doc.Metadata)
	meta["fallback_reason"] = "no_sentences_detected"
	meta["original_length"] = runeLen(doc.Content)

	if runeLen(text) > HardCeilingRunes {
		text = string([]rune(text)[:HardCeilingRunes])
		meta["chunking_method"] = "single_chunk_truncated"
		meta["truncation_warning"] = "content was truncated to fit embedding API limits"
	} else {
		meta["chunking_method"] = "single_chunk_fallback"
	}
	meta["chunk_length"] = runeLen(text)

	return models.TextChunk{
		Content:     text,
		Metadata:    meta,
		ChunkIndex:  startIndex,
		TotalChunks: 1,
	}
}

func copyMeta(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+8)
	for k, v := range m {
		out[k] = v
	}
	return out
}
