package handlers

import (
	"net/http"

	"github.com/lihongwen/pgvector-kit/internal/services"
)

type StatusHandler struct {
	status *services.StatusService
}

func NewStatusHandler(status *services.StatusService) *StatusHandler {
	return &StatusHandler{status: status}
}

// Health is a liveness probe; it does not touch the database.
func (h *StatusHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	rep := h.status.Report(r.Context())
	code := http.StatusOK
	if !rep.DatabaseOK {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, rep)
}
