package services

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/lihongwen/pgvector-kit/internal/core"
	"github.com/lihongwen/pgvector-kit/internal/core/apperr"
	"github.com/lihongwen/pgvector-kit/internal/core/chunking"
	"github.com/lihongwen/pgvector-kit/internal/core/embedding"
	"github.com/lihongwen/pgvector-kit/internal/core/objectstore"
	"github.com/lihongwen/pgvector-kit/internal/models"
)

// IngestRequest describes one file ingestion call.
type IngestRequest struct {
	Collection string
	// Source is a local path or an s3://bucket/key URI.
	Source string
	Action models.DuplicateAction
	// ExtraMetadata is merged into every chunk's metadata.
	ExtraMetadata map[string]any
	Progress      core.ProgressFunc
}

// IngestService orchestrates the full document pipeline: fetch, parse,
// chunk, duplicate resolution, embed, persist.
type IngestService struct {
	collections core.CollectionStore
	vectors     core.VectorStore
	parser      core.Parser
	chunker     *chunking.Chunker
	embedder    *embedding.Service
	fetcher     core.ObjectFetcher // nil when S3 is not configured
}

func NewIngestService(
	collections core.CollectionStore,
	vectors core.VectorStore,
	parser core.Parser,
	chunker *chunking.Chunker,
	embedder *embedding.Service,
	fetcher core.ObjectFetcher,
) *IngestService {
	return &IngestService{
		collections: collections,
		vectors:     vectors,
		parser:      parser,
		chunker:     chunker,
		embedder:    embedder,
		fetcher:     fetcher,
	}
}

// Ingest runs the duplicate-aware ingestion state machine:
//
//	file is new                   -> parse, chunk, embed, insert
//	file exists, action=skip      -> do nothing
//	file exists, action=overwrite -> delete old vectors, insert new
//	file exists, action=append    -> insert new alongside old
//	file exists, action=smart     -> skip when unchanged, else overwrite
//
// Smart change detection compares the stored file_mtime metadata with the
// file's current modification time. All embedding work happens before any
// delete, so a failed embedding never destroys existing data. If the insert
// fails after an overwrite's delete, the error is a PartialOverwriteError
// carrying the deleted count.
func (s *IngestService) Ingest(ctx context.Context, req IngestRequest) (*models.IngestionResult, error) {
	if req.Action == "" {
		req.Action = models.DuplicateSmart
	}
	if !req.Action.Valid() {
		return nil, apperr.Validation("unknown duplicate action %q (want smart, skip, overwrite or append)", req.Action)
	}
	progress := req.Progress
	if progress == nil {
		progress = func(int, string) {}
	}

	progress(5, "resolving collection")
	col, err := s.collections.ResolveCollection(ctx, req.Collection)
	if err != nil {
		return nil, err
	}

	localPath, cleanup, err := s.localize(ctx, req.Source)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	progress(15, "parsing document")
	docs, err := s.parser.Parse(ctx, localPath)
	if err != nil {
		return nil, apperr.Validation("parse %s: %v", req.Source, err)
	}
	if len(docs) == 0 {
		return nil, apperr.Validation("document %s produced no content", req.Source)
	}
	for i := range docs {
		for k, v := range req.ExtraMetadata {
			docs[i].Metadata[k] = v
		}
	}

	progress(30, "chunking")
	chunks := s.chunker.ChunkDocuments(docs)
	if len(chunks) == 0 {
		return nil, apperr.Validation("document %s produced no chunks", req.Source)
	}

	match := fileMatchFor(localPath)
	existing, err := s.vectors.FindByFile(ctx, col, match)
	if err != nil {
		return nil, err
	}
	status := models.FileStatus{
		Existed:         len(existing) > 0,
		PreviousVectors: len(existing),
	}

	action, changed, err := s.resolveAction(req.Action, localPath, existing)
	if err != nil {
		return nil, err
	}
	status.FileChanged = changed

	if status.Existed && action == models.DuplicateSkip {
		progress(100, "skipped: file already ingested")
		return &models.IngestionResult{
			Success:     true,
			Action:      "skipped",
			Collection:  col.Name,
			FilePath:    req.Source,
			FileStatus:  status,
			ChunksTotal: len(chunks),
			Message:     "file unchanged, existing vectors kept",
		}, nil
	}

	progress(45, "embedding chunks")
	records, err := embedChunks(ctx, s.embedder, col, chunks)
	if err != nil {
		return nil, err
	}

	if status.Existed && action == models.DuplicateOverwrite {
		progress(75, "replacing existing vectors")
		deleted, err := s.vectors.DeleteWhere(ctx, col, models.DeletePredicate{File: &match})
		if err != nil {
			return nil, err
		}
		status.VectorsDeleted = deleted

		ids, err := s.vectors.InsertVectors(ctx, col, records)
		if err != nil {
			return nil, &apperr.PartialOverwriteError{Deleted: deleted, Cause: err}
		}
		status.VectorsCreated = len(ids)
		progress(100, "overwrite complete")
		return &models.IngestionResult{
			Success:     true,
			Action:      "overwritten",
			Collection:  col.Name,
			FilePath:    req.Source,
			FileStatus:  status,
			ChunksTotal: len(chunks),
			Vectors:     summarize(ids, chunks),
		}, nil
	}

	progress(80, "writing vectors")
	ids, err := s.vectors.InsertVectors(ctx, col, records)
	if err != nil {
		return nil, err
	}
	status.VectorsCreated = len(ids)

	actionTaken := "added"
	if status.Existed {
		actionTaken = "appended"
	}
	progress(100, "ingestion complete")
	return &models.IngestionResult{
		Success:     true,
		Action:      actionTaken,
		Collection:  col.Name,
		FilePath:    req.Source,
		FileStatus:  status,
		ChunksTotal: len(chunks),
		Vectors:     summarize(ids, chunks),
	}, nil
}

// resolveAction collapses smart into skip or overwrite by comparing the
// stored file_mtime with the file's current one. A smart decision that
// cannot stat the file is an error, never a silent overwrite.
func (s *IngestService) resolveAction(action models.DuplicateAction, localPath string, existing []models.VectorRecord) (models.DuplicateAction, bool, error) {
	if len(existing) == 0 || action != models.DuplicateSmart {
		return action, false, nil
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return "", false, apperr.Validation("smart duplicate check: cannot stat %s: %v", localPath, err)
	}
	current := info.ModTime().Unix()

	stored, ok := storedMtime(existing)
	if !ok {
		// No recorded mtime (legacy rows); treat as changed.
		return models.DuplicateOverwrite, true, nil
	}
	if stored == current {
		return models.DuplicateSkip, false, nil
	}
	return models.DuplicateOverwrite, true, nil
}

// storedMtime pulls file_mtime out of the newest existing record's metadata.
// JSON numbers decode as float64.
func storedMtime(existing []models.VectorRecord) (int64, bool) {
	for i := len(existing) - 1; i >= 0; i-- {
		switch v := existing[i].Metadata["file_mtime"].(type) {
		case float64:
			return int64(v), true
		case int64:
			return v, true
		}
	}
	return 0, false
}

// localize turns the source into a local file path, downloading s3:// URIs
// through the fetcher. The cleanup func removes any temp download.
func (s *IngestService) localize(ctx context.Context, source string) (string, func(), error) {
	noop := func() {}
	bucket, key, isS3 := objectstore.ParseS3URI(source)
	if !isS3 {
		if _, err := os.Stat(source); err != nil {
			return "", noop, apperr.NotFound("file %s not found", source)
		}
		return source, noop, nil
	}

	if s.fetcher == nil {
		return "", noop, apperr.Configuration("s3 source %s given but AWS credentials are not configured", source)
	}
	local, err := s.fetcher.Fetch(ctx, bucket, key)
	if err != nil {
		return "", noop, apperr.Storage(err, "fetch %s", source)
	}
	return local, func() {
		if err := os.RemoveAll(filepath.Dir(local)); err != nil {
			log.Printf("ingest: cleanup %s: %v", local, err)
		}
	}, nil
}

func fileMatchFor(path string) models.FileMatch {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return models.FileMatch{
		Path:    path,
		AbsPath: abs,
		Name:    filepath.Base(path),
	}
}
