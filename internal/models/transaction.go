package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a deposit or withdrawal request awaiting admin review.
type Transaction struct {
	ID            string            `json:"id"`
	UserID        string            `json:"userId"`
	Kind          TransactionKind   `json:"kind"`
	Amount        decimal.Decimal   `json:"amount"`
	Method        string            `json:"method"`
	Reference     string            `json:"transactionId,omitempty"`
	CryptoAddress string            `json:"cryptoAddress,omitempty"`
	Status        TransactionStatus `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
	ReviewedAt    *time.Time        `json:"reviewedAt,omitempty"`
}

type TransactionKind string

const (
	TransactionKindDeposit    TransactionKind = "deposit"
	TransactionKindWithdrawal TransactionKind = "withdrawal"
)

type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusApproved TransactionStatus = "approved"
	TransactionStatusRejected TransactionStatus = "rejected"
)

type ReviewAction string

const (
	ReviewApprove ReviewAction = "approve"
	ReviewReject  ReviewAction = "reject"
)

// Status is the terminal status an action moves a transaction to.
func (a ReviewAction) Status() TransactionStatus {
	if a == ReviewApprove {
		return TransactionStatusApproved
	}
	return TransactionStatusRejected
}

type DepositRequest struct {
	UserID        string          `json:"userId"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method" validate:"required"`
	TransactionID string          `json:"transactionId"`
	CryptoAddress string          `json:"cryptoAddress"`
}

type WithdrawalRequest struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method" validate:"required"`
}

type ReviewRequest struct {
	Action ReviewAction `json:"action" validate:"required,oneof=approve reject"`
}
