package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cricketbet/internal/apperr"
	"cricketbet/internal/models"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const mysqlDuplicateEntry = 1062

// MySQLStore implements Store on top of a *sql.DB. Every balance change is a
// relative UPDATE inside a transaction, never a write of a value read earlier.
type MySQLStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMySQLStore(db *sql.DB, logger zerolog.Logger) *MySQLStore {
	return &MySQLStore{db: db, logger: logger}
}

func (s *MySQLStore) Users() UserRepository { return &mysqlUsers{s} }
func (s *MySQLStore) Bets() BetRepository { return &mysqlBets{s} }
func (s *MySQLStore) Transactions() TransactionRepository { return &mysqlTransactions{s} }
func (s *MySQLStore) Odds() OddsRepository { return &mysqlOdds{s} }
func (s *MySQLStore) MatchResults() MatchResultRepository { return &mysqlMatchResults{s} }
func (s *MySQLStore) DepositInfo() DepositInfoRepository { return &mysqlDepositInfo{s} }
func (s *MySQLStore) BalanceHistory() BalanceHistoryRepository { return &mysqlBalanceHistory{s} }

func (s *MySQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *MySQLStore) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction and commits if fn returns nil.
func (s *MySQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error starting transaction")
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error().Err(err).Msg("Error committing transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// updateBalanceInTx applies a relative balance change and records it in
// balance_history. Debits are conditional on the balance covering them.
func (s *MySQLStore) updateBalanceInTx(ctx context.Context, tx *sql.Tx, userID string, amount decimal.Decimal, reason models.BalanceReason, referenceID string) (decimal.Decimal, error) {
	var (
		result sql.Result
		err    error
	)
	if amount.IsNegative() {
		result, err = tx.ExecContext(ctx,
			"UPDATE users SET balance = balance + ?, updated_at = NOW() WHERE id = ? AND balance >= ?",
			amount, userID, amount.Neg(),
		)
	} else {
		result, err = tx.ExecContext(ctx,
			"UPDATE users SET balance = balance + ?, updated_at = NOW() WHERE id = ?",
			amount, userID,
		)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to update balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		var exists int
		err = tx.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id = ?", userID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, apperr.NotFound("user not found")
		}
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to check user: %w", err)
		}
		return decimal.Zero, apperr.Validation("insufficient balance")
	}

	var newBalance decimal.Decimal
	if err = tx.QueryRowContext(ctx, "SELECT balance FROM users WHERE id = ?", userID).Scan(&newBalance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to read balance: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO balance_history (user_id, balance, change_amount, reason, reference_id) VALUES (?, ?, ?, ?, ?)",
		userID, newBalance, amount, string(reason), referenceID,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to record balance history: %w", err)
	}

	return newBalance, nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
