package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/repository/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow  = time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)
	loanStart = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	loanEnd   = time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	loanFee   = decimal.RequireFromString("0.010")
)

type lendingFixture struct {
	store *memory.Store
	email *MockEmailService
	svc   LendingService
	clock *time.Time
}

func newLendingFixture(t *testing.T) *lendingFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, store.Users().Create(ctx, &domain.User{ID: "lender", DisplayName: "Lena", Email: "lena@example.com"}))
	require.NoError(t, store.Users().Create(ctx, &domain.User{ID: "borrower", DisplayName: "Bo", Email: "bo@example.com"}))
	require.NoError(t, store.Users().Create(ctx, &domain.User{ID: "borrower2", DisplayName: "Bea"}))
	require.NoError(t, store.Items().Create(ctx, &domain.Item{
		ID:                 "item-1",
		LenderUserID:       "lender",
		Title:              "Cordless Drill",
		BorrowingFeePerDay: decimal.RequireFromString("0.005"),
		IsAvailable:        true,
	}))

	email := new(MockEmailService)
	email.On("SendBorrowRequestNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	email.On("SendRequestApprovedNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	email.On("SendRequestDeniedNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	email.On("SendPaymentReceivedNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	email.On("SendReturnConfirmedNotification", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	clock := fixedNow
	f := &lendingFixture{store: store, email: email, clock: &clock}
	f.svc = NewLendingService(store, email, WithClock(func() time.Time { return *f.clock }))
	return f
}

func (f *lendingFixture) approved(t *testing.T, borrowerID string) *domain.BorrowRequest {
	t.Helper()
	ctx := context.Background()
	req, err := f.svc.CreateRequest(ctx, borrowerID, "item-1", loanStart, loanEnd, "")
	require.NoError(t, err)
	req, err = f.svc.ApproveRequest(ctx, "lender", req.ID)
	require.NoError(t, err)
	return req
}

func (f *lendingFixture) item(t *testing.T) *domain.Item {
	t.Helper()
	item, err := f.store.Items().GetByID(context.Background(), "item-1")
	require.NoError(t, err)
	return item
}

func TestLendingService_CreateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("Success notifies the lender", func(t *testing.T) {
		f := newLendingFixture(t)
		f.email.ExpectedCalls = nil
		f.email.On("SendBorrowRequestNotification", ctx, Recipient{Name: "Lena", Email: "lena@example.com"}, "Bo", "Cordless Drill", loanStart, loanEnd).Return(nil)

		req, err := f.svc.CreateRequest(ctx, "borrower", "item-1", loanStart, loanEnd, "hi")
		require.NoError(t, err)
		assert.Equal(t, domain.BorrowRequestStatusPending, req.Status)
		assert.True(t, f.item(t).IsAvailable)
		f.email.AssertExpectations(t)
	})

	t.Run("Unavailable item", func(t *testing.T) {
		f := newLendingFixture(t)
		item := f.item(t)
		item.IsAvailable = false
		require.NoError(t, f.store.Items().Update(ctx, item))

		_, err := f.svc.CreateRequest(ctx, "borrower", "item-1", loanStart, loanEnd, "")
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	})

	t.Run("Unknown item", func(t *testing.T) {
		f := newLendingFixture(t)
		_, err := f.svc.CreateRequest(ctx, "borrower", "missing", loanStart, loanEnd, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Notification failure does not fail the request", func(t *testing.T) {
		f := newLendingFixture(t)
		f.email.ExpectedCalls = nil
		f.email.On("SendBorrowRequestNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		_, err := f.svc.CreateRequest(ctx, "borrower", "item-1", loanStart, loanEnd, "")
		assert.NoError(t, err)
	})
}

func TestLendingService_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t)

	req := f.approved(t, "borrower")
	assert.True(t, req.QuotedFee.Equal(loanFee))

	_, err := f.svc.MarkReturned(ctx, "lender", "no-such-loan")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	loan, err := f.svc.PayRequest(ctx, "borrower", req.ID, loanFee, "0xfeed")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusActive, loan.Status)
	assert.False(t, f.item(t).IsAvailable)

	_, err = f.svc.SubmitReview(ctx, "borrower", loan.ID, 5, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	stored, err := f.store.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.ID, stored.TransactionID)

	*f.clock = loanEnd.Add(26 * time.Hour)
	view, err := f.svc.GetTransaction(ctx, "borrower", loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusOverdue, view.Status)
	assert.Equal(t, domain.LoanTimingOverdue, view.Timing.State)

	_, err = f.svc.MarkReturned(ctx, "borrower", loan.ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	returned, err := f.svc.MarkReturned(ctx, "lender", loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, returned.Status)
	assert.True(t, f.item(t).IsAvailable)

	stored, err = f.store.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BorrowRequestStatusCompleted, stored.Status)

	review, err := f.svc.SubmitReview(ctx, "borrower", loan.ID, 4, " prompt ")
	require.NoError(t, err)
	assert.Equal(t, "lender", review.RevieweeID)

	_, err = f.svc.SubmitReview(ctx, "borrower", loan.ID, 5, "")
	assert.ErrorIs(t, err, domain.ErrDuplicateReview)

	lender, err := f.store.Users().GetByID(ctx, "lender")
	require.NoError(t, err)
	assert.Equal(t, 4.0, lender.Rating)
	assert.Equal(t, 1, lender.ReviewCount)

	_, err = f.svc.SubmitReview(ctx, "lender", loan.ID, 5, "")
	require.NoError(t, err)
	borrower, err := f.store.Users().GetByID(ctx, "borrower")
	require.NoError(t, err)
	assert.Equal(t, 5.0, borrower.Rating)
}

func TestLendingService_PayRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("Wrong amount leaves everything unchanged", func(t *testing.T) {
		f := newLendingFixture(t)
		req := f.approved(t, "borrower")

		_, err := f.svc.PayRequest(ctx, "borrower", req.ID, decimal.RequireFromString("0.02"), "")
		assert.ErrorIs(t, err, domain.ErrAmountMismatch)
		assert.True(t, f.item(t).IsAvailable)
		active, err := f.store.Transactions().ListActive(ctx)
		require.NoError(t, err)
		assert.Empty(t, active)
	})

	t.Run("Second approved request loses after the first pays", func(t *testing.T) {
		f := newLendingFixture(t)
		first := f.approved(t, "borrower")
		second := f.approved(t, "borrower2")

		_, err := f.svc.PayRequest(ctx, "borrower", first.ID, loanFee, "")
		require.NoError(t, err)
		_, err = f.svc.PayRequest(ctx, "borrower2", second.ID, loanFee, "")
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	})

	t.Run("Concurrent payments admit exactly one", func(t *testing.T) {
		f := newLendingFixture(t)
		first := f.approved(t, "borrower")
		second := f.approved(t, "borrower2")

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, p := range []struct{ payer, id string }{{"borrower", first.ID}, {"borrower2", second.ID}} {
			wg.Add(1)
			go func(i int, payer, id string) {
				defer wg.Done()
				_, errs[i] = f.svc.PayRequest(ctx, payer, id, loanFee, "")
			}(i, p.payer, p.id)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, domain.ErrUnavailable)
		}
		assert.Equal(t, 1, succeeded)
		assert.False(t, f.item(t).IsAvailable)
		active, err := f.store.Transactions().ListActive(ctx)
		require.NoError(t, err)
		assert.Len(t, active, 1)
	})

	t.Run("Approving after the item is on loan", func(t *testing.T) {
		f := newLendingFixture(t)
		first := f.approved(t, "borrower")
		pending, err := f.svc.CreateRequest(ctx, "borrower2", "item-1", loanStart, loanEnd, "")
		require.NoError(t, err)
		_, err = f.svc.PayRequest(ctx, "borrower", first.ID, loanFee, "")
		require.NoError(t, err)

		_, err = f.svc.ApproveRequest(ctx, "lender", pending.ID)
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	})
}

func TestLendingService_DenyRequest(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t)
	f.email.ExpectedCalls = nil
	f.email.On("SendBorrowRequestNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.email.On("SendRequestDeniedNotification", mock.Anything, Recipient{Name: "Bo", Email: "bo@example.com"}, "Lena", "Cordless Drill").Return(nil)

	req, err := f.svc.CreateRequest(ctx, "borrower", "item-1", loanStart, loanEnd, "")
	require.NoError(t, err)

	_, err = f.svc.DenyRequest(ctx, "borrower", req.ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	denied, err := f.svc.DenyRequest(ctx, "lender", req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BorrowRequestStatusDenied, denied.Status)
	f.email.AssertExpectations(t)
}

func TestLendingService_Listings(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t)
	req := f.approved(t, "borrower")
	loan, err := f.svc.PayRequest(ctx, "borrower", req.ID, loanFee, "")
	require.NoError(t, err)

	sent, err := f.svc.ListRequests(ctx, "borrower", RoleBorrower)
	require.NoError(t, err)
	assert.Len(t, sent, 1)

	received, err := f.svc.ListRequests(ctx, "lender", RoleLender)
	require.NoError(t, err)
	assert.Len(t, received, 1)

	none, err := f.svc.ListRequests(ctx, "lender", RoleBorrower)
	require.NoError(t, err)
	assert.Empty(t, none)

	loans, err := f.svc.ListTransactions(ctx, "lender", RoleLender)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, loan.ID, loans[0].ID)
	assert.Equal(t, domain.LoanTimingOnTime, loans[0].Timing.State)

	_, err = f.svc.GetTransaction(ctx, "borrower2", loan.ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestLendingService_SendOverdueReminders(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t)
	req := f.approved(t, "borrower")
	_, err := f.svc.PayRequest(ctx, "borrower", req.ID, loanFee, "")
	require.NoError(t, err)

	n, err := f.svc.SendOverdueReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	*f.clock = loanEnd.Add(50 * time.Hour)
	f.email.On("SendOverdueReminder", mock.Anything, Recipient{Name: "Bo", Email: "bo@example.com"}, "Cordless Drill", 3).Return(nil).Once()

	n, err = f.svc.SendOverdueReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f.email.AssertExpectations(t)
}
