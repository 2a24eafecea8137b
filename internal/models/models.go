package models

import (
	"time"
)

// Collection is the metadata row for one vector collection. The actual
// vectors live in a dedicated table named after the collection.
type Collection struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Dimension   int        `db:"dimension" json:"dimension"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	DeletedAt   *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// ParsedDocument is one content unit produced by a document parser.
// A single file yields one or more of these.
type ParsedDocument struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// TextChunk is a bounded piece of a parsed document, the unit sent to the
// embedding backend. ChunkIndex is global across one ingestion call;
// TotalChunks is back-filled once every document of the call has been chunked.
type TextChunk struct {
	Content     string         `json:"content"`
	Metadata    map[string]any `json:"metadata"`
	ChunkIndex  int            `json:"chunk_index"`
	TotalChunks int            `json:"total_chunks"`
}

// VectorRecord is one stored row in a collection's vector table.
type VectorRecord struct {
	ID        string         `db:"id" json:"id"`
	Content   string         `db:"content" json:"content"`
	Embedding []float32      `db:"embedding" json:"embedding,omitempty"`
	Metadata  map[string]any `db:"metadata" json:"metadata"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// SearchResult pairs a record with its cosine similarity (1 - distance).
type SearchResult struct {
	Record     VectorRecord `json:"record"`
	Similarity float64      `json:"similarity_score"`
}

// SearchOptions tunes a similarity search.
type SearchOptions struct {
	Limit          int               `json:"limit"`
	MinSimilarity  float64           `json:"min_similarity"`
	MetadataFilter map[string]string `json:"metadata_filter,omitempty"`
}

// FileMatch identifies the vectors belonging to one ingested file by
// metadata equality. Matching is an OR across the three fields: exact path,
// resolved absolute path, or bare file name.
type FileMatch struct {
	Path    string
	AbsPath string
	Name    string
}

// DateRange selects vectors by creation time, [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DeletePredicate is a typed delete filter passed to the vector store.
// Exactly one of File or Dates is set; raw SQL never crosses this boundary.
type DeletePredicate struct {
	File  *FileMatch
	Dates *DateRange
}

// DuplicateAction is the caller-chosen policy for re-ingesting a file that
// already has vectors in the collection.
type DuplicateAction string

const (
	DuplicateSmart     DuplicateAction = "smart"
	DuplicateSkip      DuplicateAction = "skip"
	DuplicateOverwrite DuplicateAction = "overwrite"
	DuplicateAppend    DuplicateAction = "append"
)

// Valid reports whether the action is one of the four known policies.
func (a DuplicateAction) Valid() bool {
	switch a {
	case DuplicateSmart, DuplicateSkip, DuplicateOverwrite, DuplicateAppend:
		return true
	}
	return false
}

// FileStatus describes what the orchestrator found and did for the target
// file. Computed per ingestion call from existing vector metadata, never
// persisted on its own.
type FileStatus struct {
	Existed         bool `json:"existed"`
	FileChanged     bool `json:"file_changed"`
	PreviousVectors int  `json:"previous_vectors"`
	VectorsDeleted  int  `json:"vectors_deleted"`
	VectorsCreated  int  `json:"vectors_created"`
}

// VectorSummary is the caller-facing slice of a created record.
type VectorSummary struct {
	ID             string `json:"id"`
	ContentPreview string `json:"content_preview"`
	ChunkIndex     int    `json:"chunk_index"`
}

// IngestionResult is the terminal outcome of one ingestion call.
type IngestionResult struct {
	Success     bool            `json:"success"`
	Action      string          `json:"action_taken"`
	Collection  string          `json:"collection"`
	FilePath    string          `json:"file_path,omitempty"`
	FileStatus  FileStatus      `json:"file_status"`
	ChunksTotal int             `json:"chunks_total"`
	Vectors     []VectorSummary `json:"vectors,omitempty"`
	Message     string          `json:"message,omitempty"`
}
