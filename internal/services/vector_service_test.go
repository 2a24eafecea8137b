package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lihongwen/pgvector-kit/internal/core/apperr"
	"github.com/lihongwen/pgvector-kit/internal/core/chunking"
	"github.com/lihongwen/pgvector-kit/internal/core/embedding"
	"github.com/lihongwen/pgvector-kit/internal/models"
)

func newVectorFixture() (*fakeCollectionStore, *fakeVectorStore, *VectorService) {
	cols := &fakeCollectionStore{col: &models.Collection{ID: 1, Name: "docs", Dimension: 8, IsActive: true}}
	vecs := &fakeVectorStore{}
	svc := NewVectorService(cols, vecs, embedding.NewService(&stubBackend{dim: 8}, 10), chunking.NewChunker(500, 100))
	return cols, vecs, svc
}

func TestAddText_StoresChunks(t *testing.T) {
	_, vecs, svc := newVectorFixture()

	res, err := svc.AddText(context.Background(), "docs", "A note worth keeping.", map[string]any{"topic": "testing"})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "added", res.Action)
	require.NotEmpty(t, vecs.records)
	assert.Equal(t, "testing", vecs.records[0].Metadata["topic"])
	assert.Equal(t, "direct_text", vecs.records[0].Metadata["source"])
}

func TestAddText_EmptyText(t *testing.T) {
	_, _, svc := newVectorFixture()
	_, err := svc.AddText(context.Background(), "docs", "   ", nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestAddText_UnknownCollection(t *testing.T) {
	_, _, svc := newVectorFixture()
	_, err := svc.AddText(context.Background(), "nope", "text", nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestSearch_ValidatesQuery(t *testing.T) {
	_, _, svc := newVectorFixture()

	_, err := svc.Search(context.Background(), "docs", "", models.SearchOptions{Limit: 10})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Search(context.Background(), "docs", "query", models.SearchOptions{Limit: 0})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestDeleteByFile(t *testing.T) {
	_, vecs, svc := newVectorFixture()
	vecs.records = []models.VectorRecord{
		{ID: "a", Metadata: map[string]any{"file_name": "a.txt"}},
		{ID: "b", Metadata: map[string]any{"file_name": "b.txt"}},
		{ID: "c", Metadata: map[string]any{"file_name": "a.txt"}},
	}

	deleted, err := svc.DeleteByFile(context.Background(), "docs", models.FileMatch{Name: "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Len(t, vecs.records, 1)
}

func TestDeleteByDateRange_UnknownCollection(t *testing.T) {
	_, _, svc := newVectorFixture()
	_, err := svc.DeleteByDateRange(context.Background(), "nope", time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
