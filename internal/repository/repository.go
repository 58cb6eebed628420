package repository

import (
	"context"

	"cricketbet/internal/models"

	"github.com/shopspring/decimal"
)

// UserRepository stores accounts. Balances are never written directly here;
// they only move through the atomic operations of the other repositories.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateProfile(ctx context.Context, id string, bank *models.BankInfo, cryptoWallet *string) (*models.User, error)
	DeleteByPhone(ctx context.Context, phone string) error
}

type BetRepository interface {
	// Place debits the stake and inserts the pending bet as one unit. The
	// debit only applies if the balance covers the stake.
	Place(ctx context.Context, bet *models.Bet) (decimal.Decimal, error)
	ListPendingByMatch(ctx context.Context, matchID string) ([]*models.Bet, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Bet, error)
	// Settle moves a pending bet to won or lost and credits payout, as one
	// unit. A bet that is no longer pending yields a Conflict error.
	Settle(ctx context.Context, bet *models.Bet, status models.BetStatus, payout decimal.Decimal) error
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	Get(ctx context.Context, kind models.TransactionKind, id string) (*models.Transaction, error)
	List(ctx context.Context, kind models.TransactionKind) ([]*models.Transaction, error)
	// Review moves a pending transaction to status and applies its balance
	// change on approval, as one unit. A transaction that is no longer
	// pending yields a Conflict error.
	Review(ctx context.Context, kind models.TransactionKind, id string, status models.TransactionStatus) (*models.Transaction, error)
}

type OddsRepository interface {
	Set(ctx context.Context, odds *models.Odds) error
	Get(ctx context.Context, matchID string) (*models.Odds, error)
	GetMany(ctx context.Context, matchIDs []string) (map[string]*models.Odds, error)
}

type MatchResultRepository interface {
	// Record inserts result unless one exists and returns the stored row.
	Record(ctx context.Context, result *models.MatchResult) (*models.MatchResult, error)
	Get(ctx context.Context, matchID string) (*models.MatchResult, error)
}

type DepositInfoRepository interface {
	Get(ctx context.Context) (*models.DepositInfo, error)
	Update(ctx context.Context, update models.DepositInfoUpdate) (*models.DepositInfo, error)
}

type BalanceHistoryRepository interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.BalanceHistory, error)
	SumByUser(ctx context.Context, userID string) (decimal.Decimal, error)
}

// Store is the persistent record store. Its lifecycle is owned by main.
type Store interface {
	Users() UserRepository
	Bets() BetRepository
	Transactions() TransactionRepository
	Odds() OddsRepository
	MatchResults() MatchResultRepository
	DepositInfo() DepositInfoRepository
	BalanceHistory() BalanceHistoryRepository
	Ping(ctx context.Context) error
	Close() error
}
