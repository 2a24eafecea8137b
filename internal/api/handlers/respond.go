package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/lihongwen/pgvector-kit/internal/core/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

type errorBody struct {
	Error          string `json:"error"`
	Kind           string `json:"kind,omitempty"`
	VectorsDeleted *int   `json:"vectors_deleted,omitempty"`
}

// writeError maps service error kinds onto HTTP status codes so clients can
// branch on status instead of parsing messages.
func writeError(w http.ResponseWriter, err error) {
	var partial *apperr.PartialOverwriteError
	if errors.As(err, &partial) {
		deleted := partial.Deleted
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:          partial.Error(),
			Kind:           "partial_overwrite",
			VectorsDeleted: &deleted,
		})
		return
	}

	var e *apperr.Error
	if errors.As(err, &e) {
		status := http.StatusInternalServerError
		switch e.Kind {
		case apperr.KindValidation:
			status = http.StatusBadRequest
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindEmbedding:
			status = http.StatusBadGateway
		case apperr.KindConfiguration, apperr.KindStorage:
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, errorBody{Error: e.Error(), Kind: string(e.Kind)})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}
