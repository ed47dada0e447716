package handler

import (
	"net/http"
	"strconv"

	"onsamuse/internal/service"
)

// HistoryHandler serves archived rounds
type HistoryHandler struct {
	historySvc *service.HistoryService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(historySvc *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historySvc: historySvc}
}

// List handles GET /history?game=&limit=
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := h.historySvc.List(r.Context(), q.Get("game"), limit)
	if err != nil {
		writeServiceError(w, r, err, "Erreur lors du chargement de l'historique")
		return
	}

	writeJSON(w, http.StatusOK, records)
}
