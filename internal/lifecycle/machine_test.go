package lifecycle

import (
	"testing"
	"time"

	"lendlocal-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func availableItem() domain.Item {
	return domain.Item{
		ID:                 "item-1",
		LenderUserID:       "lender",
		Title:              "Drill",
		BorrowingFeePerDay: decimal.RequireFromString("0.005"),
		IsAvailable:        true,
	}
}

func pendingRequest(t *testing.T) domain.BorrowRequest {
	t.Helper()
	req, err := CreateRequest(availableItem(), "borrower", day(15), day(17), " please ", now)
	require.NoError(t, err)
	return req
}

func approvedRequest(t *testing.T) domain.BorrowRequest {
	t.Helper()
	req, err := Approve(pendingRequest(t), availableItem(), "lender", now)
	require.NoError(t, err)
	return req
}

func TestCreateRequest(t *testing.T) {
	t.Run("Success produces pending", func(t *testing.T) {
		req := pendingRequest(t)
		assert.NotEmpty(t, req.ID)
		assert.Equal(t, domain.BorrowRequestStatusPending, req.Status)
		assert.Equal(t, "lender", req.LenderUserID)
		assert.Equal(t, "please", req.Message)
		assert.False(t, req.IsPaid())
	})

	t.Run("Unavailable item", func(t *testing.T) {
		item := availableItem()
		item.IsAvailable = false
		_, err := CreateRequest(item, "borrower", day(15), day(17), "", now)
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	})

	t.Run("Unavailable reported before self borrow", func(t *testing.T) {
		item := availableItem()
		item.IsAvailable = false
		_, err := CreateRequest(item, "lender", day(17), day(15), "", now)
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	})

	t.Run("Self borrow", func(t *testing.T) {
		_, err := CreateRequest(availableItem(), "lender", day(15), day(17), "", now)
		assert.ErrorIs(t, err, domain.ErrSelfBorrow)
	})

	t.Run("End not after start", func(t *testing.T) {
		_, err := CreateRequest(availableItem(), "borrower", day(15), day(15), "", now)
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
		_, err = CreateRequest(availableItem(), "borrower", day(17), day(15), "", now)
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
	})

	t.Run("Start today is too early", func(t *testing.T) {
		_, err := CreateRequest(availableItem(), "borrower", day(10), day(12), "", now)
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
	})

	t.Run("Start tomorrow is accepted", func(t *testing.T) {
		_, err := CreateRequest(availableItem(), "borrower", day(11), day(12), "", now)
		assert.NoError(t, err)
	})
}

func TestApproveAndDeny(t *testing.T) {
	t.Run("Approve freezes the fee", func(t *testing.T) {
		req := approvedRequest(t)
		assert.Equal(t, domain.BorrowRequestStatusApproved, req.Status)
		assert.True(t, req.QuotedFee.Equal(decimal.RequireFromString("0.010")))
	})

	t.Run("Only lender may approve", func(t *testing.T) {
		_, err := Approve(pendingRequest(t), availableItem(), "borrower", now)
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})

	t.Run("Approve twice", func(t *testing.T) {
		_, err := Approve(approvedRequest(t), availableItem(), "lender", now)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("Approve after item was taken", func(t *testing.T) {
		item := availableItem()
		item.IsAvailable = false
		_, err := Approve(pendingRequest(t), item, "lender", now)
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	})

	t.Run("Deny", func(t *testing.T) {
		req, err := Deny(pendingRequest(t), "lender", now)
		require.NoError(t, err)
		assert.Equal(t, domain.BorrowRequestStatusDenied, req.Status)
		assert.True(t, req.Status.IsTerminal())

		_, err = Approve(req, availableItem(), "lender", now)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("Only lender may deny", func(t *testing.T) {
		_, err := Deny(pendingRequest(t), "stranger", now)
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})

	t.Run("Deny approved request", func(t *testing.T) {
		_, err := Deny(approvedRequest(t), "lender", now)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestPay(t *testing.T) {
	fee := decimal.RequireFromString("0.01")

	t.Run("Exact fee creates an active loan", func(t *testing.T) {
		res, err := Pay(approvedRequest(t), availableItem(), "borrower", fee, "0xabc", now)
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionStatusActive, res.Transaction.Status)
		assert.False(t, res.Item.IsAvailable)
		assert.Equal(t, res.Transaction.ID, res.Request.TransactionID)
		assert.True(t, res.Transaction.FeePaid.Equal(fee))
		assert.Equal(t, day(17), res.Transaction.DueDate)
		assert.Equal(t, "lender", res.Transaction.LenderUserID)
		assert.Equal(t, "0xabc", res.Transaction.PaymentRef)
	})

	t.Run("Only borrower may pay", func(t *testing.T) {
		_, err := Pay(approvedRequest(t), availableItem(), "lender", fee, "", now)
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})

	t.Run("Pending request cannot be paid", func(t *testing.T) {
		_, err := Pay(pendingRequest(t), availableItem(), "borrower", fee, "", now)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("Paid request cannot be paid again", func(t *testing.T) {
		res, err := Pay(approvedRequest(t), availableItem(), "borrower", fee, "", now)
		require.NoError(t, err)
		_, err = Pay(res.Request, availableItem(), "borrower", fee, "", now)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("Item already on loan", func(t *testing.T) {
		item := availableItem()
		item.IsAvailable = false
		_, err := Pay(approvedRequest(t), item, "borrower", fee, "", now)
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	})

	t.Run("Wrong amount", func(t *testing.T) {
		_, err := Pay(approvedRequest(t), availableItem(), "borrower", decimal.RequireFromString("0.009"), "", now)
		assert.ErrorIs(t, err, domain.ErrAmountMismatch)
	})

	t.Run("Later rate change does not alter the quoted fee", func(t *testing.T) {
		item := availableItem()
		item.BorrowingFeePerDay = decimal.NewFromInt(100)
		res, err := Pay(approvedRequest(t), item, "borrower", fee, "", now)
		require.NoError(t, err)
		assert.True(t, res.Transaction.FeePaid.Equal(fee))
	})
}

func TestMarkReturned(t *testing.T) {
	paid := func(t *testing.T) PayResult {
		res, err := Pay(approvedRequest(t), availableItem(), "borrower", decimal.RequireFromString("0.01"), "", now)
		require.NoError(t, err)
		return res
	}

	t.Run("Lender returns an active loan", func(t *testing.T) {
		p := paid(t)
		returnedAt := day(16)
		res, err := MarkReturned(p.Transaction, p.Item, p.Request, "lender", returnedAt)
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionStatusCompleted, res.Transaction.Status)
		require.NotNil(t, res.Transaction.ReturnedDate)
		assert.Equal(t, returnedAt, *res.Transaction.ReturnedDate)
		assert.True(t, res.Item.IsAvailable)
		assert.Equal(t, domain.BorrowRequestStatusCompleted, res.Request.Status)
	})

	t.Run("Overdue loan can be returned", func(t *testing.T) {
		p := paid(t)
		late := day(25)
		assert.Equal(t, domain.TransactionStatusOverdue, p.Transaction.StatusAt(late))
		res, err := MarkReturned(p.Transaction, p.Item, p.Request, "lender", late)
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionStatusCompleted, res.Transaction.StatusAt(late))
	})

	t.Run("Borrower cannot mark returned", func(t *testing.T) {
		p := paid(t)
		_, err := MarkReturned(p.Transaction, p.Item, p.Request, "borrower", now)
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})

	t.Run("Returned twice", func(t *testing.T) {
		p := paid(t)
		res, err := MarkReturned(p.Transaction, p.Item, p.Request, "lender", now)
		require.NoError(t, err)
		_, err = MarkReturned(res.Transaction, res.Item, res.Request, "lender", now)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("Loan that was never paid", func(t *testing.T) {
		unpaid := domain.Transaction{LenderUserID: "lender"}
		_, err := MarkReturned(unpaid, availableItem(), approvedRequest(t), "lender", now)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestSubmitReview(t *testing.T) {
	completed := domain.Transaction{
		ID:             "tx-1",
		LenderUserID:   "lender",
		BorrowerUserID: "borrower",
		Status:         domain.TransactionStatusCompleted,
	}

	t.Run("Borrower reviews lender", func(t *testing.T) {
		r, err := SubmitReview(completed, "borrower", 5, "  great  ", nil, now)
		require.NoError(t, err)
		assert.Equal(t, "lender", r.RevieweeID)
		assert.Equal(t, "great", r.Comment)
	})

	t.Run("Active loan cannot be reviewed", func(t *testing.T) {
		active := completed
		active.Status = domain.TransactionStatusActive
		_, err := SubmitReview(active, "borrower", 5, "", nil, now)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("Stranger cannot review", func(t *testing.T) {
		_, err := SubmitReview(completed, "stranger", 5, "", nil, now)
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})

	t.Run("Duplicate review", func(t *testing.T) {
		first, err := SubmitReview(completed, "borrower", 4, "", nil, now)
		require.NoError(t, err)
		_, err = SubmitReview(completed, "borrower", 3, "", []domain.Review{first}, now)
		assert.ErrorIs(t, err, domain.ErrDuplicateReview)
	})

	t.Run("Both directions are independent", func(t *testing.T) {
		first, err := SubmitReview(completed, "borrower", 4, "", nil, now)
		require.NoError(t, err)
		second, err := SubmitReview(completed, "lender", 5, "", []domain.Review{first}, now)
		require.NoError(t, err)
		assert.Equal(t, "borrower", second.RevieweeID)
	})

	t.Run("Rating out of range", func(t *testing.T) {
		for _, score := range []int{0, 6} {
			_, err := SubmitReview(completed, "borrower", score, "", nil, now)
			assert.ErrorIs(t, err, domain.ErrInvalidRating)
		}
	})
}
