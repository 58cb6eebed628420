package services

import (
	"context"
	"strings"
	"time"

	"cricketbet/internal/apperr"
	"cricketbet/internal/events"
	"cricketbet/internal/metrics"
	"cricketbet/internal/models"
	"cricketbet/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TransactionService handles deposit and withdrawal requests and their
// review by an admin.
type TransactionService struct {
	store     repository.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewTransactionService(store repository.Store, publisher events.Publisher, m *metrics.Metrics, logger zerolog.Logger) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

func (s *TransactionService) RequestDeposit(ctx context.Context, req *models.DepositRequest) (*models.Transaction, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := depositLimits.check(req.Amount); err != nil {
		return nil, err
	}
	if _, err := s.store.Users().GetByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		Kind:          models.TransactionKindDeposit,
		Amount:        req.Amount,
		Method:        strings.TrimSpace(req.Method),
		Reference:     strings.TrimSpace(req.TransactionID),
		CryptoAddress: strings.TrimSpace(req.CryptoAddress),
		Status:        models.TransactionStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.Transactions().Create(ctx, txn); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("deposit_id", txn.ID).
		Str("user_id", txn.UserID).
		Str("amount", txn.Amount.String()).
		Str("method", txn.Method).
		Msg("Deposit requested")
	return txn, nil
}

// RequestWithdrawal records a pending withdrawal. The balance is checked here
// and again, atomically, when the withdrawal is approved.
func (s *TransactionService) RequestWithdrawal(ctx context.Context, req *models.WithdrawalRequest) (*models.Transaction, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := withdrawalLimits.check(req.Amount); err != nil {
		return nil, err
	}

	user, err := s.store.Users().GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if req.Amount.GreaterThan(user.Balance) {
		return nil, apperr.Validation("withdrawal amount exceeds balance")
	}

	txn := &models.Transaction{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Kind:      models.TransactionKindWithdrawal,
		Amount:    req.Amount,
		Method:    strings.TrimSpace(req.Method),
		Status:    models.TransactionStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Transactions().Create(ctx, txn); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("withdrawal_id", txn.ID).
		Str("user_id", txn.UserID).
		Str("amount", txn.Amount.String()).
		Msg("Withdrawal requested")
	return txn, nil
}

// ReviewTransaction approves or rejects a pending transaction. Repeating the
// decision already taken returns the transaction unchanged; the opposite
// decision is a conflict.
func (s *TransactionService) ReviewTransaction(ctx context.Context, kind models.TransactionKind, id string, action models.ReviewAction) (*models.Transaction, error) {
	if kind != models.TransactionKindDeposit && kind != models.TransactionKindWithdrawal {
		return nil, apperr.Validation("unknown transaction kind")
	}
	if err := validateStruct(&models.ReviewRequest{Action: action}); err != nil {
		return nil, err
	}

	target := action.Status()
	txn, err := s.store.Transactions().Review(ctx, kind, id, target)
	if apperr.Is(err, apperr.KindConflict) {
		current, getErr := s.store.Transactions().Get(ctx, kind, id)
		if getErr != nil {
			return nil, getErr
		}
		if current.Status == target {
			s.logger.Info().Str("id", id).Str("kind", string(kind)).Msg("Transaction already reviewed with the same action")
			return current, nil
		}
		return nil, err
	}
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			s.logger.Warn().Err(err).Str("id", id).Str("kind", string(kind)).Msg("Transaction approval refused")
		}
		return nil, err
	}

	s.metrics.TransactionReviewed(string(kind), string(txn.Status))
	s.logger.Info().
		Str("id", txn.ID).
		Str("kind", string(kind)).
		Str("user_id", txn.UserID).
		Str("status", string(txn.Status)).
		Str("amount", txn.Amount.String()).
		Msg("Transaction reviewed")

	publish(ctx, s.publisher, s.logger, events.Event{Type: events.TransactionReviewed, Key: txn.ID, Payload: txn})
	return txn, nil
}

func (s *TransactionService) ListTransactions(ctx context.Context, kind models.TransactionKind) ([]*models.Transaction, error) {
	txns, err := s.store.Transactions().List(ctx, kind)
	if err != nil {
		return nil, err
	}
	if txns == nil {
		txns = []*models.Transaction{}
	}
	return txns, nil
}

func (s *TransactionService) GetDepositInfo(ctx context.Context) (*models.DepositInfo, error) {
	return s.store.DepositInfo().Get(ctx)
}

func (s *TransactionService) UpdateDepositInfo(ctx context.Context, update models.DepositInfoUpdate) (*models.DepositInfo, error) {
	info, err := s.store.DepositInfo().Update(ctx, update)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Msg("Deposit info updated")
	return info, nil
}
