package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lihongwen/pgvector-kit/internal/models"
	"github.com/lihongwen/pgvector-kit/internal/services"
)

type VectorHandler struct {
	vectors *services.VectorService
	ingest  *services.IngestService
}

func NewVectorHandler(vectors *services.VectorService, ingest *services.IngestService) *VectorHandler {
	return &VectorHandler{vectors: vectors, ingest: ingest}
}

type addTextRequest struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (h *VectorHandler) AddText(w http.ResponseWriter, r *http.Request) {
	var req addTextRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.vectors.AddText(r.Context(), chi.URLParam(r, "name"), req.Text, req.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type ingestRequest struct {
	Source   string         `json:"source"`
	Action   string         `json:"duplicate_action,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IngestDocument runs the file pipeline against a server-visible path or an
// s3:// URI.
func (h *VectorHandler) IngestDocument(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.ingest.Ingest(r.Context(), services.IngestRequest{
		Collection:    chi.URLParam(r, "name"),
		Source:        req.Source,
		Action:        models.DuplicateAction(req.Action),
		ExtraMetadata: req.Metadata,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type searchRequest struct {
	Query          string            `json:"query"`
	Limit          int               `json:"limit,omitempty"`
	MinSimilarity  float64           `json:"min_similarity,omitempty"`
	MetadataFilter map[string]string `json:"metadata_filter,omitempty"`
}

func (h *VectorHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Limit == 0 {
		req.Limit = 10
	}
	results, err := h.vectors.Search(r.Context(), chi.URLParam(r, "name"), req.Query, models.SearchOptions{
		Limit:          req.Limit,
		MinSimilarity:  req.MinSimilarity,
		MetadataFilter: req.MetadataFilter,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}

type deleteVectorsRequest struct {
	FilePath  string `json:"file_path,omitempty"`
	FileName  string `json:"file_name,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// DeleteVectors removes vectors by file reference or by creation date range.
// Dates are RFC 3339 or YYYY-MM-DD; the range is [start, end).
func (h *VectorHandler) DeleteVectors(w http.ResponseWriter, r *http.Request) {
	var req deleteVectorsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	collection := chi.URLParam(r, "name")

	var deleted int
	var err error
	switch {
	case req.FilePath != "" || req.FileName != "":
		deleted, err = h.vectors.DeleteByFile(r.Context(), collection, models.FileMatch{
			Path: req.FilePath,
			Name: req.FileName,
		})
	case req.StartDate != "" || req.EndDate != "":
		var start, end time.Time
		if start, end, err = parseDateRange(req.StartDate, req.EndDate); err == nil {
			deleted, err = h.vectors.DeleteByDateRange(r.Context(), collection, start, end)
		}
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "provide file_path/file_name or start_date/end_date"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

func (h *VectorHandler) ListVectors(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.vectors.List(r.Context(), chi.URLParam(r, "name"), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vectors": records, "count": len(records)})
}

func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if startStr != "" {
		if start, err = parseDate(startStr); err != nil {
			return start, end, err
		}
	}
	if endStr != "" {
		if end, err = parseDate(endStr); err != nil {
			return start, end, err
		}
	}
	return start, end, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
