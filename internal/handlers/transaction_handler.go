package handlers

import (
	"net/http"

	"cricketbet/internal/models"
	"cricketbet/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type TransactionHandler struct {
	transactionService *services.TransactionService
	logger             zerolog.Logger
}

func NewTransactionHandler(transactionService *services.TransactionService, logger zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	var req models.DepositRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	req.UserID = userID

	txn, err := h.transactionService.RequestDeposit(r.Context(), &req)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"deposit": txn,
	})
}

func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	var req models.WithdrawalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}
	req.UserID = userID

	txn, err := h.transactionService.RequestWithdrawal(r.Context(), &req)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success":    true,
		"withdrawal": txn,
	})
}

// List returns the handler for one transaction kind's admin listing.
func (h *TransactionHandler) List(kind models.TransactionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txns, err := h.transactionService.ListTransactions(r.Context(), kind)
		if err != nil {
			respondWithError(w, r, h.logger, err)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success":      true,
			"transactions": txns,
		})
	}
}

func (h *TransactionHandler) Review(kind models.TransactionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ReviewRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, r, h.logger, err)
			return
		}

		txn, err := h.transactionService.ReviewTransaction(r.Context(), kind, mux.Vars(r)["id"], req.Action)
		if err != nil {
			respondWithError(w, r, h.logger, err)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success":     true,
			"transaction": txn,
		})
	}
}

func (h *TransactionHandler) GetDepositInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.transactionService.GetDepositInfo(r.Context())
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"depositInfo": info,
	})
}

func (h *TransactionHandler) UpdateDepositInfo(w http.ResponseWriter, r *http.Request) {
	var update models.DepositInfoUpdate
	if err := decodeJSON(r, &update); err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	info, err := h.transactionService.UpdateDepositInfo(r.Context(), update)
	if err != nil {
		respondWithError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"depositInfo": info,
	})
}
