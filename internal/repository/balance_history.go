package repository

import (
	"context"
	"fmt"

	"cricketbet/internal/models"

	"github.com/shopspring/decimal"
)

type mysqlBalanceHistory struct {
	s *MySQLStore
}

func (r *mysqlBalanceHistory) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.BalanceHistory, error) {
	rows, err := r.s.db.QueryContext(ctx,
		`SELECT id, user_id, balance, change_amount, reason, reference_id, created_at
		 FROM balance_history WHERE user_id = ? ORDER BY id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		r.s.logger.Error().Err(err).Str("user_id", userID).Msg("Error fetching balance history")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var history []*models.BalanceHistory
	for rows.Next() {
		var (
			h      models.BalanceHistory
			reason string
		)
		if err := rows.Scan(&h.ID, &h.UserID, &h.Balance, &h.ChangeAmount, &reason, &h.ReferenceID, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning balance history: %w", err)
		}
		h.Reason = models.BalanceReason(reason)
		history = append(history, &h)
	}
	return history, rows.Err()
}

func (r *mysqlBalanceHistory) SumByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.s.db.QueryRowContext(ctx,
		"SELECT SUM(change_amount) FROM balance_history WHERE user_id = ?", userID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("database error: %w", err)
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
