package handler

import (
	"net/http"
	"strconv"

	"onsamuse/internal/model"
	"onsamuse/internal/service"
	"onsamuse/internal/transport/rest/middleware"
)

// DailyGameHandler handles the session-based zoom endpoints
type DailyGameHandler struct {
	zoomSvc *service.ZoomService
}

// NewDailyGameHandler creates a new daily game handler
func NewDailyGameHandler(zoomSvc *service.ZoomService) *DailyGameHandler {
	return &DailyGameHandler{zoomSvc: zoomSvc}
}

// Init handles GET /daily-game/init
func (h *DailyGameHandler) Init(w http.ResponseWriter, r *http.Request) {
	forceReset, _ := strconv.ParseBool(r.URL.Query().Get("forceReset"))

	view, err := h.zoomSvc.Init(r.Context(), forceReset)
	if err != nil {
		writeServiceError(w, r, err, "Erreur lors de l'initialisation")
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Action handles POST /daily-game/action
func (h *DailyGameHandler) Action(w http.ResponseWriter, r *http.Request) {
	var req model.ActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.zoomSvc.Act(r.Context(), &req, middleware.GetPlayer(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "Erreur lors de l'action")
		return
	}

	writeJSON(w, http.StatusOK, &model.ActionResponse{Success: true, Session: session})
}

// ListMissions handles GET /missions/zoom
func (h *DailyGameHandler) ListMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := h.zoomSvc.Missions(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Erreur lors du chargement des missions")
		return
	}
	if missions == nil {
		missions = []string{}
	}

	writeJSON(w, http.StatusOK, map[string][]string{"missions": missions})
}

// AddMission handles POST /missions/zoom
func (h *DailyGameHandler) AddMission(w http.ResponseWriter, r *http.Request) {
	var req model.MissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.zoomSvc.AddMission(r.Context(), req.Mission); err != nil {
		writeServiceError(w, r, err, "Erreur lors de l'ajout de la mission")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

// RemoveMission handles DELETE /missions/zoom
func (h *DailyGameHandler) RemoveMission(w http.ResponseWriter, r *http.Request) {
	var req model.MissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	removed, err := h.zoomSvc.RemoveMission(r.Context(), req.Mission)
	if err != nil {
		writeServiceError(w, r, err, "Erreur lors de la suppression de la mission")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "removed": removed})
}
