package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BalanceReason string

const (
	ReasonBetPlaced  BalanceReason = "bet_placed"
	ReasonBetWon     BalanceReason = "bet_won"
	ReasonDeposit    BalanceReason = "deposit"
	ReasonWithdrawal BalanceReason = "withdrawal"
)

// BalanceHistory is one ledger row. It is written in the same atomic unit as
// the balance change it describes.
type BalanceHistory struct {
	ID           int64           `json:"id"`
	UserID       string          `json:"userId"`
	Balance      decimal.Decimal `json:"balance"`
	ChangeAmount decimal.Decimal `json:"changeAmount"`
	Reason       BalanceReason   `json:"reason"`
	ReferenceID  string          `json:"referenceId"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type Reconciliation struct {
	UserID            string          `json:"userId"`
	CurrentBalance    decimal.Decimal `json:"currentBalance"`
	CalculatedBalance decimal.Decimal `json:"calculatedBalance"`
	Consistent        bool            `json:"consistent"`
}
