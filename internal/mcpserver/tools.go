package mcpserver

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lihongwen/pgvector-kit/internal/core/apperr"
	"github.com/lihongwen/pgvector-kit/internal/models"
	"github.com/lihongwen/pgvector-kit/internal/services"
)

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "status",
		Description: "Check database connectivity, pgvector version and embedding backend",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "create_collection",
		Description: "Create a vector collection with a dedicated table",
	}, s.handleCreateCollection)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_collections",
		Description: "List all active collections with their vector counts",
	}, s.handleListCollections)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "show_collection",
		Description: "Show one collection's details",
	}, s.handleShowCollection)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rename_collection",
		Description: "Rename a collection and its vector table",
	}, s.handleRenameCollection)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_collection",
		Description: "Soft-delete a collection; metadata stays recoverable for the retention window",
	}, s.handleDeleteCollection)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_text",
		Description: "Chunk and embed a raw text snippet into a collection",
	}, s.handleAddText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_document",
		Description: "Parse, chunk and embed a document file (local path or s3:// URI) with duplicate handling",
	}, s.handleAddDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_collection",
		Description: "Similarity-search a collection",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_vectors",
		Description: "Delete vectors by file reference or by creation date range",
	}, s.handleDeleteVectors)
}

type StatusInput struct{}

func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, *services.StatusReport, error) {
	return nil, s.app.Status.Report(ctx), nil
}

type CreateCollectionInput struct {
	Name        string `json:"name" jsonschema:"collection name (letters, digits, underscores, hyphens, spaces)"`
	Description string `json:"description,omitempty" jsonschema:"optional description"`
	Dimension   int    `json:"dimension,omitempty" jsonschema:"vector dimension (default 1024)"`
}

type CollectionOutput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Dimension   int    `json:"dimension"`
	VectorCount int    `json:"vector_count"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func (s *Server) handleCreateCollection(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CreateCollectionInput,
) (*mcp.CallToolResult, CollectionOutput, error) {
	dim := input.Dimension
	if dim == 0 {
		dim = 1024
	}
	col, err := s.app.Collections.Create(ctx, input.Name, input.Description, dim)
	if err != nil {
		return nil, CollectionOutput{}, err
	}
	return nil, CollectionOutput{
		Name:        col.Name,
		Description: col.Description,
		Dimension:   col.Dimension,
		CreatedAt:   col.CreatedAt.Format(time.RFC3339),
	}, nil
}

type ListCollectionsInput struct{}

type ListCollectionsOutput struct {
	Collections []CollectionOutput `json:"collections"`
	Count       int                `json:"count"`
}

func (s *Server) handleListCollections(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListCollectionsInput,
) (*mcp.CallToolResult, ListCollectionsOutput, error) {
	infos, err := s.app.Collections.List(ctx)
	if err != nil {
		return nil, ListCollectionsOutput{}, err
	}
	out := ListCollectionsOutput{Collections: make([]CollectionOutput, len(infos)), Count: len(infos)}
	for i, info := range infos {
		out.Collections[i] = CollectionOutput{
			Name:        info.Collection.Name,
			Description: info.Collection.Description,
			Dimension:   info.Collection.Dimension,
			VectorCount: info.VectorCount,
			CreatedAt:   info.Collection.CreatedAt.Format(time.RFC3339),
		}
	}
	return nil, out, nil
}

type ShowCollectionInput struct {
	Name string `json:"name" jsonschema:"collection name"`
}

func (s *Server) handleShowCollection(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ShowCollectionInput,
) (*mcp.CallToolResult, CollectionOutput, error) {
	info, err := s.app.Collections.Show(ctx, input.Name)
	if err != nil {
		return nil, CollectionOutput{}, err
	}
	return nil, CollectionOutput{
		Name:        info.Collection.Name,
		Description: info.Collection.Description,
		Dimension:   info.Collection.Dimension,
		VectorCount: info.VectorCount,
		CreatedAt:   info.Collection.CreatedAt.Format(time.RFC3339),
	}, nil
}

type RenameCollectionInput struct {
	Name    string `json:"name" jsonschema:"current collection name"`
	NewName string `json:"new_name" jsonschema:"new collection name"`
}

func (s *Server) handleRenameCollection(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RenameCollectionInput,
) (*mcp.CallToolResult, CollectionOutput, error) {
	col, err := s.app.Collections.Rename(ctx, input.Name, input.NewName)
	if err != nil {
		return nil, CollectionOutput{}, err
	}
	return nil, CollectionOutput{
		Name:        col.Name,
		Description: col.Description,
		Dimension:   col.Dimension,
		CreatedAt:   col.CreatedAt.Format(time.RFC3339),
	}, nil
}

type DeleteCollectionInput struct {
	Name string `json:"name" jsonschema:"collection name to soft-delete"`
}

type DeleteCollectionOutput struct {
	Deleted       bool `json:"deleted"`
	RetentionDays int  `json:"retention_days"`
}

func (s *Server) handleDeleteCollection(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteCollectionInput,
) (*mcp.CallToolResult, DeleteCollectionOutput, error) {
	if err := s.app.Collections.Delete(ctx, input.Name); err != nil {
		return nil, DeleteCollectionOutput{}, err
	}
	return nil, DeleteCollectionOutput{
		Deleted:       true,
		RetentionDays: s.app.Cleanup.RetentionDays(),
	}, nil
}

type AddTextInput struct {
	Collection string         `json:"collection" jsonschema:"target collection name"`
	Text       string         `json:"text" jsonschema:"raw text to chunk and embed"`
	Metadata   map[string]any `json:"metadata,omitempty" jsonschema:"extra metadata stored with every chunk"`
}

func (s *Server) handleAddText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddTextInput,
) (*mcp.CallToolResult, *models.IngestionResult, error) {
	res, err := s.app.Vectors.AddText(ctx, input.Collection, input.Text, input.Metadata)
	if err != nil {
		return nil, nil, err
	}
	return nil, res, nil
}

type AddDocumentInput struct {
	Collection string         `json:"collection" jsonschema:"target collection name"`
	Source     string         `json:"source" jsonschema:"local file path or s3://bucket/key URI"`
	Action     string         `json:"duplicate_action,omitempty" jsonschema:"smart, skip, overwrite or append (default smart)"`
	Metadata   map[string]any `json:"metadata,omitempty" jsonschema:"extra metadata stored with every chunk"`
}

func (s *Server) handleAddDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddDocumentInput,
) (*mcp.CallToolResult, *models.IngestionResult, error) {
	res, err := s.app.Ingest.Ingest(ctx, services.IngestRequest{
		Collection:    input.Collection,
		Source:        input.Source,
		Action:        models.DuplicateAction(input.Action),
		ExtraMetadata: input.Metadata,
	})
	if err != nil {
		return nil, nil, err
	}
	return nil, res, nil
}

type SearchInput struct {
	Collection    string  `json:"collection" jsonschema:"collection to search"`
	Query         string  `json:"query" jsonschema:"the search query"`
	Limit         int     `json:"limit,omitempty" jsonschema:"maximum number of results (default 10)"`
	MinSimilarity float64 `json:"min_similarity,omitempty" jsonschema:"minimum cosine similarity in [0,1]"`
}

type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

type SearchResultOutput struct {
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	Similarity float64        `json:"similarity_score"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}
	results, err := s.app.Vectors.Search(ctx, input.Collection, input.Query, models.SearchOptions{
		Limit:         limit,
		MinSimilarity: input.MinSimilarity,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	out := SearchOutput{Results: make([]SearchResultOutput, len(results)), Count: len(results)}
	for i := range results {
		out.Results[i] = SearchResultOutput{
			ID:         results[i].Record.ID,
			Content:    results[i].Record.Content,
			Similarity: results[i].Similarity,
			Metadata:   results[i].Record.Metadata,
		}
	}
	return nil, out, nil
}

type DeleteVectorsInput struct {
	Collection string `json:"collection" jsonschema:"collection to delete from"`
	FilePath   string `json:"file_path,omitempty" jsonschema:"delete vectors of this file path"`
	FileName   string `json:"file_name,omitempty" jsonschema:"delete vectors of this file name"`
	StartDate  string `json:"start_date,omitempty" jsonschema:"delete vectors created on or after this date (YYYY-MM-DD or RFC 3339)"`
	EndDate    string `json:"end_date,omitempty" jsonschema:"delete vectors created before this date"`
}

type DeleteVectorsOutput struct {
	Deleted int `json:"deleted"`
}

func (s *Server) handleDeleteVectors(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteVectorsInput,
) (*mcp.CallToolResult, DeleteVectorsOutput, error) {
	var deleted int
	var err error
	switch {
	case input.FilePath != "" || input.FileName != "":
		deleted, err = s.app.Vectors.DeleteByFile(ctx, input.Collection, models.FileMatch{
			Path: input.FilePath,
			Name: input.FileName,
		})
	case input.StartDate != "" || input.EndDate != "":
		var start, end time.Time
		if input.StartDate != "" {
			if start, err = parseToolDate(input.StartDate); err != nil {
				return nil, DeleteVectorsOutput{}, err
			}
		}
		if input.EndDate != "" {
			if end, err = parseToolDate(input.EndDate); err != nil {
				return nil, DeleteVectorsOutput{}, err
			}
		}
		deleted, err = s.app.Vectors.DeleteByDateRange(ctx, input.Collection, start, end)
	default:
		return nil, DeleteVectorsOutput{}, apperr.Validation("provide file_path/file_name or start_date/end_date")
	}
	if err != nil {
		return nil, DeleteVectorsOutput{}, err
	}
	return nil, DeleteVectorsOutput{Deleted: deleted}, nil
}

func parseToolDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
