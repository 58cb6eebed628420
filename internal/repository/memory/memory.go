// Package memory is an in-process Store used for local runs and tests. A
// single mutex serializes every operation, so each call is atomic.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cricketbet/internal/apperr"
	"cricketbet/internal/models"
	"cricketbet/internal/repository"

	"github.com/shopspring/decimal"
)

type Store struct {
	mu           sync.Mutex
	users        map[string]*models.User
	bets         map[string]*models.Bet
	transactions map[string]*models.Transaction
	odds         map[string]*models.Odds
	results      map[string]*models.MatchResult
	depositInfo  models.DepositInfo
	history      []*models.BalanceHistory
	now          func() time.Time
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		users:        make(map[string]*models.User),
		bets:         make(map[string]*models.Bet),
		transactions: make(map[string]*models.Transaction),
		odds:         make(map[string]*models.Odds),
		results:      make(map[string]*models.MatchResult),
		now:          time.Now,
	}
}

func (s *Store) Users() repository.UserRepository { return users{s} }
func (s *Store) Bets() repository.BetRepository { return bets{s} }
func (s *Store) Transactions() repository.TransactionRepository { return transactions{s} }
func (s *Store) Odds() repository.OddsRepository { return odds{s} }
func (s *Store) MatchResults() repository.MatchResultRepository { return results{s} }
func (s *Store) DepositInfo() repository.DepositInfoRepository { return depositInfo{s} }
func (s *Store) BalanceHistory() repository.BalanceHistoryRepository { return history{s} }
func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error { return nil }

// adjustBalance must be called with s.mu held.
func (s *Store) adjustBalance(userID string, amount decimal.Decimal, reason models.BalanceReason, referenceID string) (decimal.Decimal, error) {
	user, ok := s.users[userID]
	if !ok {
		return decimal.Zero, apperr.NotFound("user not found")
	}
	next := user.Balance.Add(amount)
	if next.IsNegative() {
		return decimal.Zero, apperr.Validation("insufficient balance")
	}
	user.Balance = next
	user.UpdatedAt = s.now()
	s.history = append(s.history, &models.BalanceHistory{
		ID:           int64(len(s.history) + 1),
		UserID:       userID,
		Balance:      next,
		ChangeAmount: amount,
		Reason:       reason,
		ReferenceID:  referenceID,
		CreatedAt:    s.now(),
	})
	return next, nil
}

type users struct{ s *Store }

func (r users) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Phone == user.Phone {
			return apperr.Conflict("phone already registered")
		}
	}
	now := r.s.now()
	stored := *user
	stored.CreatedAt, stored.UpdatedAt = now, now
	r.s.users[user.ID] = &stored
	user.CreatedAt, user.UpdatedAt = now, now
	return nil
}

func (r users) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *user
	return &cp, nil
}

func (r users) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (r users) List(_ context.Context) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		cp := *u
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (r users) UpdateProfile(_ context.Context, id string, bank *models.BankInfo, cryptoWallet *string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	if bank != nil {
		user.BankInfo = *bank
	}
	if cryptoWallet != nil {
		user.CryptoWallet = *cryptoWallet
	}
	user.UpdatedAt = r.s.now()
	cp := *user
	return &cp, nil
}

func (r users) DeleteByPhone(_ context.Context, phone string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.users {
		if u.Phone != phone {
			continue
		}
		if r.s.hasPendingItems(id) {
			return apperr.Conflict("user has pending bets or transactions")
		}
		delete(r.s.users, id)
		return nil
	}
	return apperr.NotFound("user not found")
}

// hasPendingItems reports whether userID still has money in escrow. Callers
// hold s.mu.
func (s *Store) hasPendingItems(userID string) bool {
	for _, b := range s.bets {
		if b.UserID == userID && b.Status == models.BetStatusPending {
			return true
		}
	}
	for _, t := range s.transactions {
		if t.UserID == userID && t.Status == models.TransactionStatusPending {
			return true
		}
	}
	return false
}

type bets struct{ s *Store }

func (r bets) Place(_ context.Context, bet *models.Bet) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	balance, err := r.s.adjustBalance(bet.UserID, bet.Amount.Neg(), models.ReasonBetPlaced, bet.ID)
	if err != nil {
		return decimal.Zero, err
	}
	bet.Status = models.BetStatusPending
	stored := *bet
	r.s.bets[bet.ID] = &stored
	return balance, nil
}

func (r bets) ListPendingByMatch(_ context.Context, matchID string) ([]*models.Bet, error) {
	return r.filter(func(b *models.Bet) bool {
		return b.MatchID == matchID && b.Status == models.BetStatusPending
	}, false), nil
}

func (r bets) ListByUser(_ context.Context, userID string) ([]*models.Bet, error) {
	return r.filter(func(b *models.Bet) bool { return b.UserID == userID }, true), nil
}

func (r bets) filter(keep func(*models.Bet) bool, newestFirst bool) []*models.Bet {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*models.Bet
	for _, b := range r.s.bets {
		if keep(b) {
			cp := *b
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if newestFirst {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

func (r bets) Settle(_ context.Context, bet *models.Bet, status models.BetStatus, payout decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.bets[bet.ID]
	if !ok {
		return apperr.NotFound("bet not found")
	}
	if stored.Status != models.BetStatusPending {
		return apperr.Conflict("bet already " + string(stored.Status))
	}
	if payout.IsPositive() {
		if _, err := r.s.adjustBalance(stored.UserID, payout, models.ReasonBetWon, stored.ID); err != nil {
			return err
		}
	}
	now := r.s.now()
	stored.Status = status
	stored.Payout = payout
	stored.SettledAt = &now
	return nil
}

type transactions struct{ s *Store }

func (r transactions) Create(_ context.Context, txn *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *txn
	r.s.transactions[txn.ID] = &stored
	return nil
}

func (r transactions) Get(_ context.Context, kind models.TransactionKind, id string) (*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	txn, ok := r.s.transactions[id]
	if !ok || txn.Kind != kind {
		return nil, apperr.NotFound(string(kind) + " not found")
	}
	cp := *txn
	return &cp, nil
}

func (r transactions) List(_ context.Context, kind models.TransactionKind) ([]*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*models.Transaction
	for _, txn := range r.s.transactions {
		if txn.Kind == kind {
			cp := *txn
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r transactions) Review(_ context.Context, kind models.TransactionKind, id string, status models.TransactionStatus) (*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	txn, ok := r.s.transactions[id]
	if !ok || txn.Kind != kind {
		return nil, apperr.NotFound(string(kind) + " not found")
	}
	if txn.Status != models.TransactionStatusPending {
		return nil, apperr.Conflict(string(kind) + " already " + string(txn.Status))
	}
	if status == models.TransactionStatusApproved {
		amount, reason := txn.Amount, models.ReasonDeposit
		if kind == models.TransactionKindWithdrawal {
			amount, reason = txn.Amount.Neg(), models.ReasonWithdrawal
		}
		if _, err := r.s.adjustBalance(txn.UserID, amount, reason, txn.ID); err != nil {
			return nil, err
		}
	}
	now := r.s.now()
	txn.Status = status
	txn.ReviewedAt = &now
	cp := *txn
	return &cp, nil
}

type odds struct{ s *Store }

func (r odds) Set(_ context.Context, o *models.Odds) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, settled := r.s.results[o.MatchID]; settled {
		return apperr.Conflict("match is already settled")
	}
	stored := *o
	stored.UpdatedAt = r.s.now()
	r.s.odds[o.MatchID] = &stored
	return nil
}

func (r odds) Get(_ context.Context, matchID string) (*models.Odds, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.odds[matchID]
	if !ok {
		return nil, apperr.NotFound("odds not found")
	}
	cp := *o
	return &cp, nil
}

func (r odds) GetMany(_ context.Context, matchIDs []string) (map[string]*models.Odds, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	found := make(map[string]*models.Odds, len(matchIDs))
	for _, id := range matchIDs {
		if o, ok := r.s.odds[id]; ok {
			cp := *o
			found[id] = &cp
		}
	}
	return found, nil
}

type results struct{ s *Store }

func (r results) Record(_ context.Context, result *models.MatchResult) (*models.MatchResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.results[result.MatchID]; ok {
		cp := *existing
		return &cp, nil
	}
	stored := *result
	stored.Team1Odds, stored.Team2Odds = models.DefaultOddsValue, models.DefaultOddsValue
	if o, ok := r.s.odds[result.MatchID]; ok {
		stored.Team1Odds, stored.Team2Odds = o.Team1, o.Team2
	}
	r.s.results[result.MatchID] = &stored
	cp := stored
	return &cp, nil
}

func (r results) Get(_ context.Context, matchID string) (*models.MatchResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result, ok := r.s.results[matchID]
	if !ok {
		return nil, apperr.NotFound("match result not found")
	}
	cp := *result
	return &cp, nil
}

type depositInfo struct{ s *Store }

func (r depositInfo) Get(context.Context) (*models.DepositInfo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := r.s.depositInfo
	return &cp, nil
}

func (r depositInfo) Update(_ context.Context, update models.DepositInfoUpdate) (*models.DepositInfo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	update.Apply(&r.s.depositInfo)
	r.s.depositInfo.UpdatedAt = r.s.now()
	cp := r.s.depositInfo
	return &cp, nil
}

type history struct{ s *Store }

func (r history) ListByUser(_ context.Context, userID string, limit, offset int) ([]*models.BalanceHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*models.BalanceHistory
	for i := len(r.s.history) - 1; i >= 0; i-- {
		if h := r.s.history[i]; h.UserID == userID {
			cp := *h
			list = append(list, &cp)
		}
	}
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r history) SumByUser(_ context.Context, userID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, h := range r.s.history {
		if h.UserID == userID {
			sum = sum.Add(h.ChangeAmount)
		}
	}
	return sum, nil
}
