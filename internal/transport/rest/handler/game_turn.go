package handler

import (
	"net/http"

	"onsamuse/internal/model"
	"onsamuse/internal/service"
	"onsamuse/internal/transport/rest/middleware"
)

// TurnHandler handles /game-turn
type TurnHandler struct {
	turnSvc *service.TurnService
}

// NewTurnHandler creates a new turn handler
func NewTurnHandler(turnSvc *service.TurnService) *TurnHandler {
	return &TurnHandler{turnSvc: turnSvc}
}

// Get handles GET /game-turn
func (h *TurnHandler) Get(w http.ResponseWriter, r *http.Request) {
	status, err := h.turnSvc.Status(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Erreur lors du chargement du tour")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// Submit handles POST /game-turn; the body shape selects the operation
func (h *TurnHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.TurnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	switch {
	case req.Type == service.GameZoom:
		if err := h.turnSvc.CreateZoomRound(ctx, req.Image, req.Author); err != nil {
			writeServiceError(w, r, err, "Erreur lors de la création de la manche")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	case req.Action == "submit_guess":
		if err := h.turnSvc.SubmitZoomGuess(ctx, req.Guess); err != nil {
			writeServiceError(w, r, err, "Erreur lors de l'envoi de la réponse")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	case req.Type == model.MemeTurnType:
		turn, err := h.turnSvc.SubmitMemeTurn(ctx, middleware.GetPlayer(ctx), req.Player, req.Memes)
		if err != nil {
			writeServiceError(w, r, err, "Erreur lors de l'envoi des memes")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "turn": turn})

	default:
		writeError(w, http.StatusBadRequest, "unsupported turn request")
	}
}

// Vote handles PATCH /game-turn
func (h *TurnHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req model.VoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	caller := middleware.GetPlayer(r.Context())
	if (req.Voter == "" && caller == "") || req.Score == nil {
		writeError(w, http.StatusBadRequest, "voter and score are required")
		return
	}

	if err := h.turnSvc.SubmitMemeVote(r.Context(), caller, req.Voter, *req.Score); err != nil {
		writeServiceError(w, r, err, "Erreur lors du vote")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Reset handles DELETE /game-turn?game=zoom|meme
func (h *TurnHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.turnSvc.Reset(r.Context(), r.URL.Query().Get("game")); err != nil {
		writeServiceError(w, r, err, "Erreur lors de la réinitialisation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
