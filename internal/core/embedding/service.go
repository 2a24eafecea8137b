// Package embedding turns text chunks into fixed-dimension, unit-norm
// vectors by driving a remote embedding backend in bounded batches.
package embedding

import (
	"log"
	"strings"

	"context"

	"golang.org/x/sync/errgroup"

	"github.com/lihongwen/pgvector-kit/internal/core"
	"github.com/lihongwen/pgvector-kit/internal/core/apperr"
)

// MaxInputRunes is the remote API's input cap. A single text above this is a
// chunking defect upstream, rejected before any network call.
const MaxInputRunes = 8192

const defaultBatchSize = 10

// maxInflightBatches bounds concurrent batch calls. Results land in
// positional slots, so concurrency never reorders outputs.
const maxInflightBatches = 4

// Service is the batch embedding executor.
type Service struct {
	backend   core.EmbeddingBackend
	batchSize int
}

// NewService wraps a backend with batching and per-item fallback.
func NewService(backend core.EmbeddingBackend, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Service{backend: backend, batchSize: batchSize}
}

// Backend exposes the configured backend (for status reporting).
func (s *Service) Backend() core.EmbeddingBackend { return s.backend }

// EmbedTexts embeds every text, preserving order: output[i] always belongs
// to texts[i]. Each batch that fails as a whole is retried one text at a
// time, so a single bad item degrades throughput for its batch but never
// aborts the request. A per-item failure after that fallback fails the call.
func (s *Service) EmbedTexts(ctx context.Context, texts []string, targetDim int) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, apperr.Validation("cannot embed empty text (index %d)", i)
		}
		if len([]rune(t)) > MaxInputRunes {
			return nil, apperr.Validation(
				"text at index %d is %d characters, over the %d embedding API limit; this indicates a chunking defect",
				i, len([]rune(t)), MaxInputRunes)
		}
	}

	results := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInflightBatches)

	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		start, end := start, end

		g.Go(func() error {
			batch := texts[start:end]
			raws, err := s.backend.Embed(gctx, batch)
			if err == nil && len(raws) == len(batch) {
				for j, raw := range raws {
					results[start+j] = Normalize(raw, targetDim)
				}
				return nil
			}
			if err != nil {
				log.Printf("embedding: batch of %d failed, retrying individually: %v", len(batch), err)
			} else {
				log.Printf("embedding: batch returned %d vectors for %d texts, retrying individually", len(raws), len(batch))
			}

			for j, text := range batch {
				raw, ferr := s.backend.Embed(gctx, []string{text})
				if ferr != nil {
					return apperr.Embedding(ferr, "embedding failed for text at index %d after individual retry", start+j)
				}
				if len(raw) != 1 {
					return apperr.Embedding(nil, "backend returned %d vectors for a single text (index %d)", len(raw), start+j)
				}
				results[start+j] = Normalize(raw[0], targetDim)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// EmbedQuery embeds a single query string.
func (s *Service) EmbedQuery(ctx context.Context, text string, targetDim int) ([]float32, error) {
	out, err := s.EmbedTexts(ctx, []string{text}, targetDim)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}
