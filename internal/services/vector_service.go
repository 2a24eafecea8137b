package services

import (
	"context"
	"time"

	"github.com/lihongwen/pgvector-kit/internal/core"
	"github.com/lihongwen/pgvector-kit/internal/core/apperr"
	"github.com/lihongwen/pgvector-kit/internal/core/chunking"
	"github.com/lihongwen/pgvector-kit/internal/core/embedding"
	"github.com/lihongwen/pgvector-kit/internal/core/validate"
	"github.com/lihongwen/pgvector-kit/internal/models"
)

// VectorService handles direct text ingestion, similarity search and
// predicate deletes against one collection at a time.
type VectorService struct {
	collections core.CollectionStore
	vectors     core.VectorStore
	embedder    *embedding.Service
	chunker     *chunking.Chunker
}

func NewVectorService(collections core.CollectionStore, vectors core.VectorStore, embedder *embedding.Service, chunker *chunking.Chunker) *VectorService {
	return &VectorService{
		collections: collections,
		vectors:     vectors,
		embedder:    embedder,
		chunker:     chunker,
	}
}

// AddText chunks and embeds a raw text snippet into the collection. Unlike
// file ingestion there is no duplicate detection; every call appends.
func (s *VectorService) AddText(ctx context.Context, collection, text string, metadata map[string]any) (*models.IngestionResult, error) {
	col, err := s.collections.ResolveCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if len(metadata) == 0 {
		metadata = map[string]any{}
	}
	metadata["source"] = "direct_text"

	chunks := s.chunker.ChunkDocuments([]models.ParsedDocument{{Content: text, Metadata: metadata}})
	if len(chunks) == 0 {
		return nil, apperr.Validation("text is empty after trimming")
	}

	records, err := embedChunks(ctx, s.embedder, col, chunks)
	if err != nil {
		return nil, err
	}
	ids, err := s.vectors.InsertVectors(ctx, col, records)
	if err != nil {
		return nil, err
	}

	return &models.IngestionResult{
		Success:     true,
		Action:      "added",
		Collection:  col.Name,
		FileStatus:  models.FileStatus{VectorsCreated: len(ids)},
		ChunksTotal: len(chunks),
		Vectors:     summarize(ids, chunks),
		Message:     "text ingested",
	}, nil
}

// Search embeds the query and runs a cosine nearest-neighbour lookup.
func (s *VectorService) Search(ctx context.Context, collection, query string, opts models.SearchOptions) ([]models.SearchResult, error) {
	if err := validate.SearchQuery(query); err != nil {
		return nil, err
	}
	if err := validate.Limit(opts.Limit, 100); err != nil {
		return nil, err
	}
	col, err := s.collections.ResolveCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	vec, err := s.embedder.EmbedQuery(ctx, query, col.Dimension)
	if err != nil {
		return nil, err
	}
	return s.vectors.SearchSimilar(ctx, col, vec, opts)
}

// DeleteByFile removes every vector ingested from the given file reference.
func (s *VectorService) DeleteByFile(ctx context.Context, collection string, match models.FileMatch) (int, error) {
	col, err := s.collections.ResolveCollection(ctx, collection)
	if err != nil {
		return 0, err
	}
	return s.vectors.DeleteWhere(ctx, col, models.DeletePredicate{File: &match})
}

// DeleteByDateRange removes vectors created inside [start, end).
func (s *VectorService) DeleteByDateRange(ctx context.Context, collection string, start, end time.Time) (int, error) {
	col, err := s.collections.ResolveCollection(ctx, collection)
	if err != nil {
		return 0, err
	}
	return s.vectors.DeleteWhere(ctx, col, models.DeletePredicate{Dates: &models.DateRange{Start: start, End: end}})
}

// List pages through a collection's stored vectors.
func (s *VectorService) List(ctx context.Context, collection string, offset, limit int) ([]models.VectorRecord, error) {
	col, err := s.collections.ResolveCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	return s.vectors.ListVectors(ctx, col, offset, limit)
}

// embedChunks runs the batch embedder over the chunks and pairs each chunk
// with its vector as an insert-ready record.
func embedChunks(ctx context.Context, embedder *embedding.Service, col *models.Collection, chunks []models.TextChunk) ([]models.VectorRecord, error) {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	vecs, err := embedder.EmbedTexts(ctx, texts, col.Dimension)
	if err != nil {
		return nil, err
	}

	records := make([]models.VectorRecord, len(chunks))
	for i, ch := range chunks {
		meta := ch.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		meta["chunk_index"] = ch.ChunkIndex
		meta["total_chunks"] = ch.TotalChunks
		records[i] = models.VectorRecord{
			Content:   ch.Content,
			Embedding: vecs[i],
			Metadata:  meta,
		}
	}
	return records, nil
}

const previewRunes = 100

func summarize(ids []string, chunks []models.TextChunk) []models.VectorSummary {
	out := make([]models.VectorSummary, 0, len(ids))
	for i, id := range ids {
		preview := chunks[i].Content
		if r := []rune(preview); len(r) > previewRunes {
			preview = string(r[:previewRunes]) + "..."
		}
		out = append(out, models.VectorSummary{
			ID:             id,
			ContentPreview: preview,
			ChunkIndex:     chunks[i].ChunkIndex,
		})
	}
	return out
}
