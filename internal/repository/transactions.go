package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cricketbet/internal/apperr"
	"cricketbet/internal/models"
)

type mysqlTransactions struct {
	s *MySQLStore
}

const transactionColumns = `id, user_id, kind, amount, method, reference, crypto_address, status, created_at, reviewed_at`

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		txn        models.Transaction
		kind       string
		status     string
		reviewedAt sql.NullTime
	)
	err := row.Scan(&txn.ID, &txn.UserID, &kind, &txn.Amount, &txn.Method, &txn.Reference,
		&txn.CryptoAddress, &status, &txn.CreatedAt, &reviewedAt)
	if err != nil {
		return nil, err
	}
	txn.Kind = models.TransactionKind(kind)
	txn.Status = models.TransactionStatus(status)
	txn.ReviewedAt = nullTime(reviewedAt)
	return &txn, nil
}

func (r *mysqlTransactions) Create(ctx context.Context, txn *models.Transaction) error {
	_, err := r.s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, kind, amount, method, reference, crypto_address, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.UserID, string(txn.Kind), txn.Amount, txn.Method, txn.Reference,
		txn.CryptoAddress, string(txn.Status), txn.CreatedAt,
	)
	if err != nil {
		r.s.logger.Error().Err(err).Str("kind", string(txn.Kind)).Msg("Error creating transaction")
		return fmt.Errorf("failed to create %s: %w", txn.Kind, err)
	}
	return nil
}

func (r *mysqlTransactions) Get(ctx context.Context, kind models.TransactionKind, id string) (*models.Transaction, error) {
	txn, err := scanTransaction(r.s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND kind = ?", id, string(kind)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(string(kind) + " not found")
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return txn, nil
}

func (r *mysqlTransactions) List(ctx context.Context, kind models.TransactionKind) ([]*models.Transaction, error) {
	rows, err := r.s.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE kind = ? ORDER BY created_at DESC", string(kind))
	if err != nil {
		r.s.logger.Error().Err(err).Str("kind", string(kind)).Msg("Error listing transactions")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

func (r *mysqlTransactions) Review(ctx context.Context, kind models.TransactionKind, id string, status models.TransactionStatus) (*models.Transaction, error) {
	var reviewed *models.Transaction
	err := r.s.withTx(ctx, func(tx *sql.Tx) error {
		txn, err := scanTransaction(tx.QueryRowContext(ctx,
			"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND kind = ? FOR UPDATE", id, string(kind)))
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound(string(kind) + " not found")
		}
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", kind, err)
		}

		result, err := tx.ExecContext(ctx,
			"UPDATE transactions SET status = ?, reviewed_at = NOW() WHERE id = ? AND status = ?",
			string(status), id, string(models.TransactionStatusPending),
		)
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", kind, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 0 {
			return apperr.Conflict(fmt.Sprintf("%s already %s", kind, txn.Status))
		}

		if status == models.TransactionStatusApproved {
			amount, reason := txn.Amount, models.ReasonDeposit
			if kind == models.TransactionKindWithdrawal {
				amount, reason = txn.Amount.Neg(), models.ReasonWithdrawal
			}
			if _, err := r.s.updateBalanceInTx(ctx, tx, txn.UserID, amount, reason, txn.ID); err != nil {
				return err
			}
		}

		reviewed, err = scanTransaction(tx.QueryRowContext(ctx,
			"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id))
		if err != nil {
			return fmt.Errorf("failed to reload %s: %w", kind, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}
