package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lihongwen/pgvector-kit/internal/core/apperr"
	"github.com/lihongwen/pgvector-kit/internal/core/chunking"
	"github.com/lihongwen/pgvector-kit/internal/core/embedding"
	"github.com/lihongwen/pgvector-kit/internal/core/parsers"
	"github.com/lihongwen/pgvector-kit/internal/models"
)

// --- fakes -----------------------------------------------------------------

type fakeCollectionStore struct {
	col *models.Collection
}

func (f *fakeCollectionStore) CreateCollection(_ context.Context, name, desc string, dim int) (*models.Collection, error) {
	f.col = &models.Collection{ID: 1, Name: name, Description: desc, Dimension: dim, IsActive: true}
	return f.col, nil
}

func (f *fakeCollectionStore) ResolveCollection(_ context.Context, name string) (*models.Collection, error) {
	if f.col == nil || f.col.Name != name {
		return nil, apperr.NotFound("collection %q not found", name)
	}
	return f.col, nil
}

func (f *fakeCollectionStore) ListCollections(context.Context) ([]models.Collection, error) {
	if f.col == nil {
		return nil, nil
	}
	return []models.Collection{*f.col}, nil
}

func (f *fakeCollectionStore) RenameCollection(_ context.Context, _, newName string) (*models.Collection, error) {
	f.col.Name = newName
	return f.col, nil
}

func (f *fakeCollectionStore) SoftDeleteCollection(context.Context, string) error { return nil }

func (f *fakeCollectionStore) PurgeExpired(context.Context, time.Time) ([]models.Collection, error) {
	return nil, nil
}

func (f *fakeCollectionStore) CountVectors(context.Context, *models.Collection) (int, error) {
	return 0, nil
}

type fakeVectorStore struct {
	records   []models.VectorRecord
	insertErr error
	nextID    int
}

func (f *fakeVectorStore) InsertVectors(_ context.Context, _ *models.Collection, recs []models.VectorRecord) ([]string, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	ids := make([]string, len(recs))
	for i, rec := range recs {
		f.nextID++
		rec.ID = fmt.Sprintf("id-%d", f.nextID)
		rec.CreatedAt = time.Now()
		f.records = append(f.records, rec)
		ids[i] = rec.ID
	}
	return ids, nil
}

func (f *fakeVectorStore) DeleteWhere(_ context.Context, _ *models.Collection, pred models.DeletePredicate) (int, error) {
	if pred.File == nil {
		return 0, apperr.Validation("fake store only deletes by file")
	}
	var kept []models.VectorRecord
	deleted := 0
	for _, rec := range f.records {
		if matchesFile(rec, *pred.File) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	f.records = kept
	return deleted, nil
}

func (f *fakeVectorStore) FindByFile(_ context.Context, _ *models.Collection, match models.FileMatch) ([]models.VectorRecord, error) {
	var out []models.VectorRecord
	for _, rec := range f.records {
		if matchesFile(rec, match) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeVectorStore) ListVectors(_ context.Context, _ *models.Collection, _, _ int) ([]models.VectorRecord, error) {
	return f.records, nil
}

func (f *fakeVectorStore) SearchSimilar(context.Context, *models.Collection, []float32, models.SearchOptions) ([]models.SearchResult, error) {
	return nil, nil
}

func matchesFile(rec models.VectorRecord, match models.FileMatch) bool {
	get := func(key string) string {
		s, _ := rec.Metadata[key].(string)
		return s
	}
	return (match.Path != "" && get("file_path") == match.Path) ||
		(match.AbsPath != "" && get("file_path_abs") == match.AbsPath) ||
		(match.Name != "" && get("file_name") == match.Name)
}

type stubBackend struct {
	dim   int
	calls int
	err   error
}

func (b *stubBackend) Embed(_ context.Context, texts []string) ([][]float32, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, b.dim)
		v[0] = 1
		out[i] = v
	}
	return out, nil
}

func (b *stubBackend) Name() string { return "stub" }
func (b *stubBackend) Close() error { return nil }

// --- helpers ---------------------------------------------------------------

type fixture struct {
	cols    *fakeCollectionStore
	vecs    *fakeVectorStore
	backend *stubBackend
	ingest  *IngestService
	dir     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cols := &fakeCollectionStore{col: &models.Collection{ID: 1, Name: "docs", Dimension: 8, IsActive: true}}
	vecs := &fakeVectorStore{}
	backend := &stubBackend{dim: 8}
	embedder := embedding.NewService(backend, 10)
	chunker := chunking.NewChunker(500, 100)
	ingest := NewIngestService(cols, vecs, parsers.NewRegistry(), chunker, embedder, nil)
	return &fixture{cols: cols, vecs: vecs, backend: backend, ingest: ingest, dir: t.TempDir()}
}

func (f *fixture) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// --- tests -----------------------------------------------------------------

func TestIngest_NewFile(t *testing.T) {
	f := newFixture(t)
	path := f.writeFile(t, "notes.txt", "First paragraph.\n\nSecond paragraph.")

	res, err := f.ingest.Ingest(context.Background(), IngestRequest{
		Collection: "docs",
		Source:     path,
	})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "added", res.Action)
	assert.False(t, res.FileStatus.Existed)
	assert.Equal(t, res.FileStatus.VectorsCreated, len(f.vecs.records))
	assert.NotEmpty(t, res.Vectors)

	// Every stored record carries the file identity and chunk bookkeeping.
	for _, rec := range f.vecs.records {
		assert.Equal(t, "notes.txt", rec.Metadata["file_name"])
		assert.Contains(t, rec.Metadata, "file_mtime")
		assert.Contains(t, rec.Metadata, "chunk_index")
		assert.Len(t, rec.Embedding, 8)
	}
}

func TestIngest_SmartSkipsUnchangedFile(t *testing.T) {
	f := newFixture(t)
	path := f.writeFile(t, "notes.txt", "Stable content here.")

	_, err := f.ingest.Ingest(context.Background(), IngestRequest{Collection: "docs", Source: path})
	require.NoError(t, err)
	countAfterFirst := len(f.vecs.records)

	res, err := f.ingest.Ingest(context.Background(), IngestRequest{Collection: "docs", Source: path})
	require.NoError(t, err)

	assert.Equal(t, "skipped", res.Action)
	assert.True(t, res.FileStatus.Existed)
	assert.False(t, res.FileStatus.FileChanged)
	assert.Zero(t, res.FileStatus.VectorsDeleted)
	assert.Equal(t, countAfterFirst, len(f.vecs.records), "skip must not touch stored vectors")
}

func TestIngest_SmartOverwritesChangedFile(t *testing.T) {
	f := newFixture(t)
	path := f.writeFile(t, "notes.txt", "Version one.")

	_, err := f.ingest.Ingest(context.Background(), IngestRequest{Collection: "docs", Source: path})
	require.NoError(t, err)
	firstCount := len(f.vecs.records)

	require.NoError(t, os.WriteFile(path, []byte("Version two, now different."), 0o644))
	// Force a different mtime even on coarse filesystems.
	newTime := time.Now().Add(2 * time.Hour)
	require.NoError(t, os.Chtimes(path, newTime, newTime))

	res, err := f.ingest.Ingest(context.Background(), IngestRequest{Collection: "docs", Source: path})
	require.NoError(t, err)

	assert.Equal(t, "overwritten", res.Action)
	assert.True(t, res.FileStatus.FileChanged)
	assert.Equal(t, firstCount, res.FileStatus.VectorsDeleted)
	assert.Equal(t, res.FileStatus.VectorsCreated, len(f.vecs.records))
}

func TestIngest_ExplicitSkip(t *testing.T) {
	f := newFixture(t)
	path := f.writeFile(t, "notes.txt", "Original.")

	_, err := f.ingest.Ingest(context.Background(), IngestRequest{Collection: "docs", Source: path})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("Changed content."), 0o644))
	res, err := f.ingest.Ingest(context.Background(), IngestRequest{
		Collection: "docs", Source: path, Action: models.DuplicateSkip,
	})
	require.NoError(t, err)
	assert.Equal(t, "skipped", res.Action, "explicit skip ignores file changes")
}

func TestIngest_Append(t *testing.T) {
	f := newFixture(t)
	path := f.writeFile(t, "notes.txt", "Some content.")

	_, err := f.ingest.Ingest(context.Background(), IngestRequest{Collection: "docs", Source: path})
	require.NoError(t, err)
	firstCount := len(f.vecs.records)

	res, err := f.ingest.Ingest(context.Background(), IngestRequest{
		Collection: "docs", Source: path, Action: models.DuplicateAppend,
	})
	require.NoError(t, err)

	assert.Equal(t, "appended", res.Action)
	assert.Zero(t, res.FileStatus.VectorsDeleted)
	assert.Equal(t, firstCount+res.FileStatus.VectorsCreated, len(f.vecs.records))
}

func TestIngest_InvalidAction(t *testing.T) {
	f := newFixture(t)
	path := f.writeFile(t, "notes.txt", "Anything.")

	_, err := f.ingest.Ingest(context.Background(), IngestRequest{
		Collection: "docs", Source: path, Action: "merge",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestIngest_UnknownCollection(t *testing.T) {
	f := newFixture(t)
	path := f.writeFile(t, "notes.txt", "Anything.")

	_, err := f.ingest.Ingest(context.Background(), IngestRequest{Collection: "nope", Source: path})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestIngest_MissingFile(t *testing.T) {
	f := newFixture(t)
	_, err := f.ingest.Ingest(context.Background(), IngestRequest{
		Collection: "docs", Source: filepath.Join(f.dir, "missing.txt"),
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestIngest_EmbeddingFailureLeavesExistingVectors(t *testing.T) {
	f := newFixture(t)
	path := f.writeFile(t, "notes.txt", "Original body.")

	_, err := f.ingest.Ingest(context.Background(), IngestRequest{Collection: "docs", Source: path})
	require.NoError(t, err)
	firstCount := len(f.vecs.records)

	require.NoError(t, os.WriteFile(path, []byte("Rewritten body."), 0o644))
	newTime := time.Now().Add(2 * time.Hour)
	require.NoError(t, os.Chtimes(path, newTime, newTime))
	f.backend.err = errors.New("embedding API down")

	_, err = f.ingest.Ingest(context.Background(), IngestRequest{Collection: "docs", Source: path})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindEmbedding))
	assert.Equal(t, firstCount, len(f.vecs.records),
		"embedding happens before any delete, so failure must not destroy data")
}

func TestIngest_PartialOverwrite(t *testing.T) {
	f := newFixture(t)
	path := f.writeFile(t, "notes.txt", "Original body.")

	_, err := f.ingest.Ingest(context.Background(), IngestRequest{Collection: "docs", Source: path})
	require.NoError(t, err)
	firstCount := len(f.vecs.records)

	require.NoError(t, os.WriteFile(path, []byte("Rewritten body."), 0o644))
	newTime := time.Now().Add(2 * time.Hour)
	require.NoError(t, os.Chtimes(path, newTime, newTime))
	f.vecs.insertErr = errors.New("disk full")

	_, err = f.ingest.Ingest(context.Background(), IngestRequest{Collection: "docs", Source: path})
	require.Error(t, err)

	var partial *apperr.PartialOverwriteError
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, firstCount, partial.Deleted)
}

func TestIngest_ProgressReachesCompletion(t *testing.T) {
	f := newFixture(t)
	path := f.writeFile(t, "notes.txt", "Progress test content.")

	var percents []int
	_, err := f.ingest.Ingest(context.Background(), IngestRequest{
		Collection: "docs",
		Source:     path,
		Progress:   func(p int, _ string) { percents = append(percents, p) },
	})
	require.NoError(t, err)

	require.NotEmpty(t, percents)
	assert.Equal(t, 100, percents[len(percents)-1])
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
}

func TestIngest_ExtraMetadataMergedIntoChunks(t *testing.T) {
	f := newFixture(t)
	path := f.writeFile(t, "notes.txt", "Metadata merge test.")

	_, err := f.ingest.Ingest(context.Background(), IngestRequest{
		Collection:    "docs",
		Source:        path,
		ExtraMetadata: map[string]any{"team": "platform"},
	})
	require.NoError(t, err)

	require.NotEmpty(t, f.vecs.records)
	for _, rec := range f.vecs.records {
		assert.Equal(t, "platform", rec.Metadata["team"])
	}
}
