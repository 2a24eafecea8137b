package core

import (
	"context"
	"time"

	"github.com/lihongwen/pgvector-kit/internal/models"
)

// CollectionStore owns collection metadata and each collection's underlying
// vector table. It abstracts Postgres so higher layers never depend on a
// specific DB.
type CollectionStore interface {
	CreateCollection(ctx context.Context, name, description string, dimension int) (*models.Collection, error)
	// ResolveCollection returns the active collection for name, or a
	// not-found error if it does not exist.
	ResolveCollection(ctx context.Context, name string) (*models.Collection, error)
	ListCollections(ctx context.Context) ([]models.Collection, error)
	RenameCollection(ctx context.Context, oldName, newName string) (*models.Collection, error)
	// SoftDeleteCollection drops the vector table and marks the metadata row
	// inactive; the row itself survives until the retention cleanup runs.
	SoftDeleteCollection(ctx context.Context, name string) error
	// PurgeExpired hard-deletes soft-deleted collections whose deleted_at is
	// before cutoff, returning the purged rows.
	PurgeExpired(ctx context.Context, cutoff time.Time) ([]models.Collection, error)
	CountVectors(ctx context.Context, col *models.Collection) (int, error)
}

// VectorStore persists and queries vector rows for a collection. The
// ingestion core treats it as an append-only sink plus delete-by-predicate.
type VectorStore interface {
	InsertVectors(ctx context.Context, col *models.Collection, records []models.VectorRecord) ([]string, error)
	DeleteWhere(ctx context.Context, col *models.Collection, pred models.DeletePredicate) (int, error)
	FindByFile(ctx context.Context, col *models.Collection, match models.FileMatch) ([]models.VectorRecord, error)
	ListVectors(ctx context.Context, col *models.Collection, offset, limit int) ([]models.VectorRecord, error)
	SearchSimilar(ctx context.Context, col *models.Collection, queryVec []float32, opts models.SearchOptions) ([]models.SearchResult, error)
}

// EmbeddingBackend maps text to raw float vectors via a remote API. The
// output dimension is best-effort, not guaranteed; the embedding service
// reconciles it against the collection's dimension.
type EmbeddingBackend interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
	Close() error
}

// Parser converts a file into a sequence of parsed documents.
type Parser interface {
	Parse(ctx context.Context, path string) ([]models.ParsedDocument, error)
	Supports(ext string) bool
}

// ObjectFetcher retrieves a remote object (s3://bucket/key) to a local file
// so the parsers can treat every source uniformly.
type ObjectFetcher interface {
	Fetch(ctx context.Context, bucket, key string) (localPath string, err error)
}

// ProgressFunc receives coarse ingestion milestones, percent in [0,100].
type ProgressFunc func(percent int, message string)
