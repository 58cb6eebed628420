package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cricketbet/internal/apperr"
	"cricketbet/internal/events"
	"cricketbet/internal/models"
	"cricketbet/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPlaceBet_EscrowDebit(t *testing.T) {
	store := memory.NewStore()
	publisher := &recordingPublisher{}
	svc := NewBetService(store, publisher, nil, nopLogger)
	user := seedUser(t, store, "100")

	resp, err := svc.PlaceBet(context.Background(), &models.PlaceBetRequest{
		UserID: user.ID, MatchID: "M1", Team: "India", Amount: dec("50"),
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.True(t, resp.Balance.Equal(dec("50")))
	assert.Equal(t, models.BetStatusPending, resp.Bet.Status)
	assert.True(t, balanceOf(t, store, user.ID).Equal(dec("50")))
	assert.Equal(t, 1, publisher.count(events.BetPlaced))

	history, err := store.BalanceHistory().ListByUser(context.Background(), user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.ReasonBetPlaced, history[0].Reason)
	assert.True(t, history[0].ChangeAmount.Equal(dec("-50")))
	assert.Equal(t, resp.Bet.ID, history[0].ReferenceID)
}

func TestPlaceBet_Validation(t *testing.T) {
	store := memory.NewStore()
	svc := NewBetService(store, nil, nil, nopLogger)
	user := seedUser(t, store, "10000")

	tests := []struct {
		name string
		req  models.PlaceBetRequest
	}{
		{"below minimum", models.PlaceBetRequest{UserID: user.ID, MatchID: "M1", Team: "India", Amount: dec("19.99")}},
		{"above maximum", models.PlaceBetRequest{UserID: user.ID, MatchID: "M1", Team: "India", Amount: dec("5000.01")}},
		{"too many decimals", models.PlaceBetRequest{UserID: user.ID, MatchID: "M1", Team: "India", Amount: dec("20.005")}},
		{"missing team", models.PlaceBetRequest{UserID: user.ID, MatchID: "M1", Team: "  ", Amount: dec("20")}},
		{"missing match", models.PlaceBetRequest{UserID: user.ID, Team: "India", Amount: dec("20")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceBet(context.Background(), &tt.req)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
	assert.True(t, balanceOf(t, store, user.ID).Equal(dec("10000")))
}

func TestPlaceBet_InsufficientBalance(t *testing.T) {
	store := memory.NewStore()
	svc := NewBetService(store, nil, nil, nopLogger)
	user := seedUser(t, store, "30")

	_, err := svc.PlaceBet(context.Background(), &models.PlaceBetRequest{
		UserID: user.ID, MatchID: "M1", Team: "India", Amount: dec("31"),
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.True(t, balanceOf(t, store, user.ID).Equal(dec("30")))

	bets, err := svc.ListUserBets(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, bets)
}

func TestPlaceBet_UnknownUser(t *testing.T) {
	svc := NewBetService(memory.NewStore(), nil, nil, nopLogger)

	_, err := svc.PlaceBet(context.Background(), &models.PlaceBetRequest{
		UserID: "ghost", MatchID: "M1", Team: "India", Amount: dec("20"),
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestPlaceBet_SettledMatchRejected(t *testing.T) {
	store := memory.NewStore()
	svc := NewBetService(store, nil, nil, nopLogger)
	user := seedUser(t, store, "100")
	_, err := store.MatchResults().Record(context.Background(), &models.MatchResult{
		MatchID: "M1", Winner: models.SideTeam1, Team1: "India", Team2: "Australia", SettledAt: time.Now(),
	})
	require.NoError(t, err)

	_, err = svc.PlaceBet(context.Background(), &models.PlaceBetRequest{
		UserID: user.ID, MatchID: "M1", Team: "India", Amount: dec("20"),
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPlaceBet_ConcurrentNeverOverdraws(t *testing.T) {
	store := memory.NewStore()
	svc := NewBetService(store, nil, nil, nopLogger)
	user := seedUser(t, store, "1000")

	var (
		wg       sync.WaitGroup
		accepted atomic.Int64
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceBet(context.Background(), &models.PlaceBetRequest{
				UserID: user.ID, MatchID: "M1", Team: "India", Amount: dec("100"),
			})
			if err == nil {
				accepted.Add(1)
				return
			}
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), accepted.Load())
	assert.True(t, balanceOf(t, store, user.ID).IsZero())

	bets, err := svc.ListUserBets(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, bets, 10)
}

// stalledPublisher never delivers and only returns once its context ends.
type stalledPublisher struct {
	calls atomic.Int32
}

func (p *stalledPublisher) Publish(ctx context.Context, _ events.Event) error {
	p.calls.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (p *stalledPublisher) Close() error { return nil }

func TestStalledPublisherDoesNotHoldMoneyPath(t *testing.T) {
	restore := publishTimeout
	publishTimeout = 20 * time.Millisecond
	t.Cleanup(func() { publishTimeout = restore })

	f := newSettlementFixture(t, false)
	publisher := &stalledPublisher{}
	f.bets = NewBetService(f.store, publisher, nil, nopLogger)
	settle := NewSettlementService(f.store, f.source, publisher, nil, nopLogger, SettlementOptions{UpstreamTimeout: time.Second})
	f.source.On("MatchTeams", mock.Anything, "M1").Return("India", "Australia", nil)

	users := make([]*models.User, 5)
	for i := range users {
		users[i] = seedUser(t, f.store, "100")
	}

	start := time.Now()
	for _, u := range users {
		f.placeBet(t, u.ID, "M1", "India", "10")
	}
	result, err := settle.SettleMatch(context.Background(), "M1", models.SideTeam1)
	require.NoError(t, err)
	elapsed := time.Since(start)

	assert.Equal(t, len(users), result.Won)
	// 5 placements, 5 settlements, 1 match event.
	assert.EqualValues(t, 11, publisher.calls.Load())
	assert.Less(t, elapsed, 2*time.Second)
	for _, u := range users {
		assert.True(t, balanceOf(t, f.store, u.ID).Equal(dec("105")))
	}
}
