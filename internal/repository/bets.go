package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cricketbet/internal/apperr"
	"cricketbet/internal/models"

	"github.com/shopspring/decimal"
)

type mysqlBets struct {
	s *MySQLStore
}

const betColumns = `id, user_id, match_id, team, amount, status, payout, created_at, settled_at`

func scanBet(row rowScanner) (*models.Bet, error) {
	var (
		bet       models.Bet
		status    string
		settledAt sql.NullTime
	)
	err := row.Scan(&bet.ID, &bet.UserID, &bet.MatchID, &bet.Team, &bet.Amount, &status, &bet.Payout, &bet.CreatedAt, &settledAt)
	if err != nil {
		return nil, err
	}
	bet.Status = models.BetStatus(status)
	bet.SettledAt = nullTime(settledAt)
	return &bet, nil
}

func (r *mysqlBets) Place(ctx context.Context, bet *models.Bet) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		balance, err = r.s.updateBalanceInTx(ctx, tx, bet.UserID, bet.Amount.Neg(), models.ReasonBetPlaced, bet.ID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO bets (id, user_id, match_id, team, amount, status, payout, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			bet.ID, bet.UserID, bet.MatchID, bet.Team, bet.Amount, string(models.BetStatusPending), decimal.Zero, bet.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bet: %w", err)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	bet.Status = models.BetStatusPending
	return balance, nil
}

func (r *mysqlBets) ListPendingByMatch(ctx context.Context, matchID string) ([]*models.Bet, error) {
	return r.list(ctx,
		"SELECT "+betColumns+" FROM bets WHERE match_id = ? AND status = ? ORDER BY created_at",
		matchID, string(models.BetStatusPending),
	)
}

func (r *mysqlBets) ListByUser(ctx context.Context, userID string) ([]*models.Bet, error) {
	return r.list(ctx,
		"SELECT "+betColumns+" FROM bets WHERE user_id = ? ORDER BY created_at DESC",
		userID,
	)
}

func (r *mysqlBets) list(ctx context.Context, query string, args ...any) ([]*models.Bet, error) {
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.s.logger.Error().Err(err).Msg("Error listing bets")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning bet: %w", err)
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}

func (r *mysqlBets) Settle(ctx context.Context, bet *models.Bet, status models.BetStatus, payout decimal.Decimal) error {
	return r.s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE bets SET status = ?, payout = ?, settled_at = NOW() WHERE id = ? AND status = ?",
			string(status), payout, bet.ID, string(models.BetStatusPending),
		)
		if err != nil {
			return fmt.Errorf("failed to update bet: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 0 {
			var current string
			err = tx.QueryRowContext(ctx, "SELECT status FROM bets WHERE id = ?", bet.ID).Scan(&current)
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("bet not found")
			}
			if err != nil {
				return fmt.Errorf("failed to check bet: %w", err)
			}
			return apperr.Conflict("bet already " + current)
		}

		if payout.IsPositive() {
			if _, err := r.s.updateBalanceInTx(ctx, tx, bet.UserID, payout, models.ReasonBetWon, bet.ID); err != nil {
				return err
			}
		}
		return nil
	})
}
