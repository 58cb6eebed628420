package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cricketbet/internal/models"
)

type mysqlDepositInfo struct {
	s *MySQLStore
}

// deposit_info holds a single row with id 1.
const depositInfoID = 1

func (r *mysqlDepositInfo) Get(ctx context.Context) (*models.DepositInfo, error) {
	return scanDepositInfo(r.s.db.QueryRowContext(ctx,
		"SELECT upi, bank_name, bank_account, bank_ifsc, crypto, updated_at FROM deposit_info WHERE id = ?", depositInfoID))
}

func scanDepositInfo(row *sql.Row) (*models.DepositInfo, error) {
	var info models.DepositInfo
	err := row.Scan(&info.UPI, &info.Bank.Name, &info.Bank.AC, &info.Bank.IFSC, &info.Crypto, &info.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.DepositInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &info, nil
}

func (r *mysqlDepositInfo) Update(ctx context.Context, update models.DepositInfoUpdate) (*models.DepositInfo, error) {
	var info *models.DepositInfo
	err := r.s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		info, err = scanDepositInfo(tx.QueryRowContext(ctx,
			"SELECT upi, bank_name, bank_account, bank_ifsc, crypto, updated_at FROM deposit_info WHERE id = ? FOR UPDATE", depositInfoID))
		if err != nil {
			return err
		}
		update.Apply(info)

		_, err = tx.ExecContext(ctx,
			`INSERT INTO deposit_info (id, upi, bank_name, bank_account, bank_ifsc, crypto) VALUES (?, ?, ?, ?, ?, ?)
			 ON DUPLICATE KEY UPDATE upi = VALUES(upi), bank_name = VALUES(bank_name), bank_account = VALUES(bank_account),
			 bank_ifsc = VALUES(bank_ifsc), crypto = VALUES(crypto), updated_at = NOW()`,
			depositInfoID, info.UPI, info.Bank.Name, info.Bank.AC, info.Bank.IFSC, info.Crypto,
		)
		if err != nil {
			return fmt.Errorf("failed to save deposit info: %w", err)
		}
		return nil
	})
	if err != nil {
		r.s.logger.Error().Err(err).Msg("Error updating deposit info")
		return nil, err
	}
	return info, nil
}
