package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
)

type Bet struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	MatchID   string          `json:"matchId"`
	Team      string          `json:"team"`
	Amount    decimal.Decimal `json:"amount"`
	Status    BetStatus       `json:"status"`
	Payout    decimal.Decimal `json:"payout"`
	CreatedAt time.Time       `json:"createdAt"`
	SettledAt *time.Time      `json:"settledAt,omitempty"`
}

type PlaceBetRequest struct {
	UserID  string          `json:"userId"`
	MatchID string          `json:"matchId" validate:"required"`
	Team    string          `json:"team" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
}

type PlaceBetResponse struct {
	Success bool            `json:"success"`
	Balance decimal.Decimal `json:"balance"`
	Bet     *Bet            `json:"bet"`
}
