package services

import (
	"context"

	"cricketbet/internal/models"
	"cricketbet/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// BalanceService reads the balance ledger. Balances themselves only change
// through bet placement, settlement and transaction review.
type BalanceService struct {
	store  repository.Store
	logger zerolog.Logger
}

func NewBalanceService(store repository.Store, logger zerolog.Logger) *BalanceService {
	return &BalanceService{
		store:  store,
		logger: logger,
	}
}

func (s *BalanceService) GetBalanceHistory(ctx context.Context, userID string, limit, offset int) ([]*models.BalanceHistory, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	history, err := s.store.BalanceHistory().ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []*models.BalanceHistory{}
	}
	return history, nil
}

// ReconcileBalance compares the stored balance with the sum of the ledger.
func (s *BalanceService) ReconcileBalance(ctx context.Context, userID string) (*models.Reconciliation, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	calculated, err := s.store.BalanceHistory().SumByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &models.Reconciliation{
		UserID:            userID,
		CurrentBalance:    user.Balance,
		CalculatedBalance: calculated,
		Consistent:        user.Balance.Equal(calculated),
	}
	if !result.Consistent {
		s.logger.Warn().
			Str("user_id", userID).
			Str("current_balance", user.Balance.StringFixed(2)).
			Str("calculated_balance", calculated.StringFixed(2)).
			Msg("Balance discrepancy detected")
	}
	return result, nil
}
