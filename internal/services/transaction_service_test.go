package services

import (
	"context"
	"sync"
	"testing"

	"cricketbet/internal/apperr"
	"cricketbet/internal/events"
	"cricketbet/internal/models"
	"cricketbet/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransactionService(t *testing.T) (*TransactionService, *memory.Store, *recordingPublisher) {
	t.Helper()
	store := memory.NewStore()
	publisher := &recordingPublisher{}
	return NewTransactionService(store, publisher, nil, nopLogger), store, publisher
}

func TestRequestWithdrawal_ExceedingBalanceRejected(t *testing.T) {
	svc, store, _ := newTransactionService(t)
	user := seedUser(t, store, "150")

	_, err := svc.RequestWithdrawal(context.Background(), &models.WithdrawalRequest{
		UserID: user.ID, Amount: dec("200"), Method: "upi",
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	pending, err := svc.ListTransactions(context.Background(), models.TransactionKindWithdrawal)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.True(t, balanceOf(t, store, user.ID).Equal(dec("150")))
}

func TestRequestDeposit_Limits(t *testing.T) {
	svc, store, _ := newTransactionService(t)
	user := seedUser(t, store, "0")

	for _, amount := range []string{"49.99", "20000.01", "100.001"} {
		_, err := svc.RequestDeposit(context.Background(), &models.DepositRequest{
			UserID: user.ID, Amount: dec(amount), Method: "upi",
		})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), amount)
	}

	_, err := svc.RequestDeposit(context.Background(), &models.DepositRequest{UserID: user.ID, Amount: dec("100")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "method is required")

	txn, err := svc.RequestDeposit(context.Background(), &models.DepositRequest{
		UserID: user.ID, Amount: dec("50"), Method: "upi", TransactionID: "UTR123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, txn.Status)
	assert.Equal(t, "UTR123", txn.Reference)
	assert.True(t, balanceOf(t, store, user.ID).IsZero())
}

func TestReviewTransaction_ApproveDepositCredits(t *testing.T) {
	svc, store, publisher := newTransactionService(t)
	ctx := context.Background()
	user := seedUser(t, store, "0")
	txn, err := svc.RequestDeposit(ctx, &models.DepositRequest{UserID: user.ID, Amount: dec("500"), Method: "bank"})
	require.NoError(t, err)

	reviewed, err := svc.ReviewTransaction(ctx, models.TransactionKindDeposit, txn.ID, models.ReviewApprove)
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusApproved, reviewed.Status)
	assert.NotNil(t, reviewed.ReviewedAt)
	assert.True(t, balanceOf(t, store, user.ID).Equal(dec("500")))
	assert.Equal(t, 1, publisher.count(events.TransactionReviewed))
}

func TestReviewTransaction_ConcurrentApprovalsApplyOnce(t *testing.T) {
	svc, store, _ := newTransactionService(t)
	ctx := context.Background()
	user := seedUser(t, store, "1000")
	txn, err := svc.RequestWithdrawal(ctx, &models.WithdrawalRequest{UserID: user.ID, Amount: dec("300"), Method: "upi"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.ReviewTransaction(ctx, models.TransactionKindWithdrawal, txn.ID, models.ReviewApprove)
			if assert.NoError(t, err) {
				assert.Equal(t, models.TransactionStatusApproved, got.Status)
			}
		}()
	}
	wg.Wait()

	assert.True(t, balanceOf(t, store, user.ID).Equal(dec("700")))
	history, err := store.BalanceHistory().ListByUser(ctx, user.ID, 100, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestReviewTransaction_OppositeDecisionConflicts(t *testing.T) {
	svc, store, _ := newTransactionService(t)
	ctx := context.Background()
	user := seedUser(t, store, "0")
	txn, err := svc.RequestDeposit(ctx, &models.DepositRequest{UserID: user.ID, Amount: dec("100"), Method: "upi"})
	require.NoError(t, err)

	_, err = svc.ReviewTransaction(ctx, models.TransactionKindDeposit, txn.ID, models.ReviewReject)
	require.NoError(t, err)
	assert.True(t, balanceOf(t, store, user.ID).IsZero())

	_, err = svc.ReviewTransaction(ctx, models.TransactionKindDeposit, txn.ID, models.ReviewApprove)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.True(t, balanceOf(t, store, user.ID).IsZero())
}

func TestReviewTransaction_WithdrawalApprovalNeedsFunds(t *testing.T) {
	svc, store, _ := newTransactionService(t)
	ctx := context.Background()
	user := seedUser(t, store, "200")
	txn, err := svc.RequestWithdrawal(ctx, &models.WithdrawalRequest{UserID: user.ID, Amount: dec("200"), Method: "upi"})
	require.NoError(t, err)

	// The balance is spent on a bet before the admin approves.
	_, err = NewBetService(store, nil, nil, nopLogger).PlaceBet(ctx, &models.PlaceBetRequest{
		UserID: user.ID, MatchID: "M1", Team: "India", Amount: dec("150"),
	})
	require.NoError(t, err)

	_, err = svc.ReviewTransaction(ctx, models.TransactionKindWithdrawal, txn.ID, models.ReviewApprove)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	stored, err := store.Transactions().Get(ctx, models.TransactionKindWithdrawal, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, stored.Status)
	assert.True(t, balanceOf(t, store, user.ID).Equal(dec("50")))
}

func TestReviewTransaction_UnknownAndInvalid(t *testing.T) {
	svc, store, _ := newTransactionService(t)
	ctx := context.Background()

	_, err := svc.ReviewTransaction(ctx, models.TransactionKindDeposit, "missing", models.ReviewApprove)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.ReviewTransaction(ctx, models.TransactionKindDeposit, "missing", models.ReviewAction("maybe"))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// A deposit id is not reachable as a withdrawal.
	user := seedUser(t, store, "0")
	txn, err := svc.RequestDeposit(ctx, &models.DepositRequest{UserID: user.ID, Amount: dec("100"), Method: "upi"})
	require.NoError(t, err)
	_, err = svc.ReviewTransaction(ctx, models.TransactionKindWithdrawal, txn.ID, models.ReviewApprove)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDepositInfo_PartialUpdate(t *testing.T) {
	svc, _, _ := newTransactionService(t)
	ctx := context.Background()

	_, err := svc.UpdateDepositInfo(ctx, models.DepositInfoUpdate{
		UPI:  "pay@upi",
		Bank: &models.BankInfo{Name: "SBI", AC: "123", IFSC: "SBIN0001"},
	})
	require.NoError(t, err)

	info, err := svc.UpdateDepositInfo(ctx, models.DepositInfoUpdate{Crypto: "TRX-wallet"})
	require.NoError(t, err)

	assert.Equal(t, "pay@upi", info.UPI)
	assert.Equal(t, "SBI", info.Bank.Name)
	assert.Equal(t, "TRX-wallet", info.Crypto)

	got, err := svc.GetDepositInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, info, got)
}
