package handlers

import (
	"net/http"

	"cricketbet/internal/models"
	"cricketbet/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type MatchHandler struct {
	matchService *services.MatchService
	logger       zerolog.Logger
}

func NewMatchHandler(matchService *services.MatchService, logger zerolog.Logger) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
		logger:       logger,
	}
}

func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.ListMatches(r.Context())
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"matches": matches,
	})
}

func (h *MatchHandler) SetOdds(w http.ResponseWriter, r *http.Request) {
	var req models.SetOddsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	odds, err := h.matchService.SetOdds(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"odds":    odds,
	})
}
