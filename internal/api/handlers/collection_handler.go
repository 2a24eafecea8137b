package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lihongwen/pgvector-kit/internal/services"
)

type CollectionHandler struct {
	collections *services.CollectionService
	cleanup     *services.CleanupService
}

func NewCollectionHandler(collections *services.CollectionService, cleanup *services.CleanupService) *CollectionHandler {
	return &CollectionHandler{collections: collections, cleanup: cleanup}
}

type createCollectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Dimension   int    `json:"dimension"`
}

func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Dimension == 0 {
		req.Dimension = 1024
	}
	col, err := h.collections.Create(r.Context(), req.Name, req.Description, req.Dimension)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, col)
}

func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.collections.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (h *CollectionHandler) Show(w http.ResponseWriter, r *http.Request) {
	info, err := h.collections.Show(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type renameCollectionRequest struct {
	NewName string `json:"new_name"`
}

func (h *CollectionHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req renameCollectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	col, err := h.collections.Rename(r.Context(), chi.URLParam(r, "name"), req.NewName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, col)
}

func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.collections.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted":        true,
		"retention_days": h.cleanup.RetentionDays(),
	})
}

func (h *CollectionHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	purged, err := h.cleanup.Run(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"purged": len(purged), "collections": purged})
}
