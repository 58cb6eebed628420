package handlers

import (
	"net/http"
	"strconv"

	"cricketbet/internal/apperr"
	"cricketbet/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type BalanceHandler struct {
	balanceService *services.BalanceService
	logger         zerolog.Logger
}

func NewBalanceHandler(balanceService *services.BalanceService, logger zerolog.Logger) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
		logger:         logger,
	}
}

func (h *BalanceHandler) GetBalanceHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	history, err := h.balanceService.GetBalanceHistory(r.Context(), userID, limit, offset)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"history": history,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *BalanceHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	rec, err := h.balanceService.ReconcileBalance(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"reconciliation": rec,
	})
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("Invalid " + key + " parameter")
	}
	return n, nil
}
