package handlers

import (
	"net/http"

	"cricketbet/internal/apperr"
	"cricketbet/internal/models"
	"cricketbet/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type BetHandler struct {
	betService        *services.BetService
	settlementService *services.SettlementService
	logger            zerolog.Logger
}

func NewBetHandler(betService *services.BetService, settlementService *services.SettlementService, logger zerolog.Logger) *BetHandler {
	return &BetHandler{
		betService:        betService,
		settlementService: settlementService,
		logger:            logger,
	}
}

func (h *BetHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	var req models.PlaceBetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	req.UserID = userID

	resp, err := h.betService.PlaceBet(r.Context(), &req)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, resp)
}

func (h *BetHandler) MyBets(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	bets, err := h.betService.ListUserBets(r.Context(), userID)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"bets":    bets,
	})
}

// SettleMatch answers 500 with the partial result when some bets could not be
// settled. Calling it again settles the remainder.
func (h *BetHandler) SettleMatch(w http.ResponseWriter, r *http.Request) {
	var req models.SettleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	result, err := h.settlementService.SettleMatch(r.Context(), mux.Vars(r)["id"], req.Winner)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	if len(result.Failed) > 0 {
		respondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   string(apperr.KindInternal),
			"message": "Some bets could not be settled, retry the settlement",
			"result":  result,
		})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  result,
	})
}
