package services

import (
	"context"
	"testing"

	"cricketbet/internal/apperr"
	"cricketbet/internal/models"
	"cricketbet/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fundUser credits a user through an approved deposit so the ledger matches
// the balance.
func fundUser(t *testing.T, store *memory.Store, userID, amount string) {
	t.Helper()
	ctx := context.Background()
	txns := NewTransactionService(store, nil, nil, nopLogger)
	txn, err := txns.RequestDeposit(ctx, &models.DepositRequest{UserID: userID, Amount: dec(amount), Method: "upi"})
	require.NoError(t, err)
	_, err = txns.ReviewTransaction(ctx, models.TransactionKindDeposit, txn.ID, models.ReviewApprove)
	require.NoError(t, err)
}

func TestGetBalanceHistory_NewestFirstWithPaging(t *testing.T) {
	store := memory.NewStore()
	svc := NewBalanceService(store, nopLogger)
	bets := NewBetService(store, nil, nil, nopLogger)
	ctx := context.Background()
	user := seedUser(t, store, "0")

	fundUser(t, store, user.ID, "1000")
	for _, amount := range []string{"20", "30", "40"} {
		_, err := bets.PlaceBet(ctx, &models.PlaceBetRequest{UserID: user.ID, MatchID: "M1", Team: "India", Amount: dec(amount)})
		require.NoError(t, err)
	}

	all, err := svc.GetBalanceHistory(ctx, user.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.True(t, all[0].ChangeAmount.Equal(dec("-40")))
	assert.True(t, all[0].Balance.Equal(dec("910")))
	assert.Equal(t, models.ReasonDeposit, all[3].Reason)

	page, err := svc.GetBalanceHistory(ctx, user.ID, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].ChangeAmount.Equal(dec("-30")))

	none, err := svc.GetBalanceHistory(ctx, "nobody", 10, -5)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestReconcileBalance(t *testing.T) {
	store := memory.NewStore()
	svc := NewBalanceService(store, nopLogger)
	ctx := context.Background()

	funded := seedUser(t, store, "0")
	fundUser(t, store, funded.ID, "250.50")
	rec, err := svc.ReconcileBalance(ctx, funded.ID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.True(t, rec.CalculatedBalance.Equal(dec("250.50")))

	// Seeded directly, so no ledger rows back the balance.
	seeded := seedUser(t, store, "75")
	rec, err = svc.ReconcileBalance(ctx, seeded.ID)
	require.NoError(t, err)
	assert.False(t, rec.Consistent)
	assert.True(t, rec.CalculatedBalance.IsZero())

	_, err = svc.ReconcileBalance(ctx, "ghost")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
