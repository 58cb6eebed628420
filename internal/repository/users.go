package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cricketbet/internal/apperr"
	"cricketbet/internal/models"
)

type mysqlUsers struct {
	s *MySQLStore
}

const userColumns = `id, phone, password_hash, name, balance, bank_name, bank_account, bank_ifsc, crypto_wallet, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Phone, &user.PasswordHash, &user.Name, &user.Balance,
		&user.BankInfo.Name, &user.BankInfo.AC, &user.BankInfo.IFSC, &user.CryptoWallet,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *mysqlUsers) Create(ctx context.Context, user *models.User) error {
	_, err := r.s.db.ExecContext(ctx,
		`INSERT INTO users (id, phone, password_hash, name, balance, bank_name, bank_account, bank_ifsc, crypto_wallet)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Phone, user.PasswordHash, user.Name, user.Balance,
		user.BankInfo.Name, user.BankInfo.AC, user.BankInfo.IFSC, user.CryptoWallet,
	)
	if isDuplicateEntry(err) {
		return apperr.Conflict("phone already registered")
	}
	if err != nil {
		r.s.logger.Error().Err(err).Msg("Error creating user")
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *mysqlUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(r.s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		r.s.logger.Error().Err(err).Str("user_id", id).Msg("Error fetching user")
		return nil, fmt.Errorf("database error: %w", err)
	}
	return user, nil
}

func (r *mysqlUsers) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	user, err := scanUser(r.s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE phone = ?", phone))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		r.s.logger.Error().Err(err).Msg("Error fetching user by phone")
		return nil, fmt.Errorf("database error: %w", err)
	}
	return user, nil
}

func (r *mysqlUsers) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		r.s.logger.Error().Err(err).Msg("Error listing users")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *mysqlUsers) UpdateProfile(ctx context.Context, id string, bank *models.BankInfo, cryptoWallet *string) (*models.User, error) {
	if bank != nil {
		_, err := r.s.db.ExecContext(ctx,
			"UPDATE users SET bank_name = ?, bank_account = ?, bank_ifsc = ?, updated_at = NOW() WHERE id = ?",
			bank.Name, bank.AC, bank.IFSC, id,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update bank info: %w", err)
		}
	}
	if cryptoWallet != nil {
		_, err := r.s.db.ExecContext(ctx,
			"UPDATE users SET crypto_wallet = ?, updated_at = NOW() WHERE id = ?",
			*cryptoWallet, id,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update crypto wallet: %w", err)
		}
	}
	return r.GetByID(ctx, id)
}

// DeleteByPhone removes a user who has nothing in escrow. The user row is
// locked first so a bet or transaction cannot land between the check and the
// delete.
func (r *mysqlUsers) DeleteByPhone(ctx context.Context, phone string) error {
	return r.s.withTx(ctx, func(tx *sql.Tx) error {
		var userID string
		err := tx.QueryRowContext(ctx, "SELECT id FROM users WHERE phone = ? FOR UPDATE", phone).Scan(&userID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("user not found")
		}
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}

		var pending bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM bets WHERE user_id = ? AND status = 'pending')
			     OR EXISTS(SELECT 1 FROM transactions WHERE user_id = ? AND status = 'pending')`,
			userID, userID,
		).Scan(&pending)
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if pending {
			return apperr.Conflict("user has pending bets or transactions")
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", userID); err != nil {
			r.s.logger.Error().Err(err).Msg("Error deleting user")
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}
