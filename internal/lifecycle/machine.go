// Package lifecycle holds the borrow state machine:
//
//	pending --approve--> approved --pay--> active --markReturned--> completed
//	pending --deny-----> denied
//
// Every transition is a pure function over records. Preconditions are checked
// in a fixed order and nothing is modified unless all of them pass, so callers
// can persist the returned records as-is inside one store transaction.
package lifecycle

import (
	"strings"
	"time"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayResult carries every record changed by a successful payment.
type PayResult struct {
	Request     domain.BorrowRequest
	Item        domain.Item
	Transaction domain.Transaction
}

// ReturnResult carries every record changed by a return.
type ReturnResult struct {
	Transaction domain.Transaction
	Item        domain.Item
	Request     domain.BorrowRequest
}

// EarliestStart is midnight UTC of the day after now.
func EarliestStart(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

// CreateRequest maps onto createBorrowRequest. Pending requests do not
// reserve the item; several may exist for one item at a time.
func CreateRequest(item domain.Item, borrowerID string, start, end time.Time, message string, now time.Time) (domain.BorrowRequest, error) {
	if !item.IsAvailable {
		return domain.BorrowRequest{}, domain.ErrUnavailable
	}
	if borrowerID == item.LenderUserID {
		return domain.BorrowRequest{}, domain.ErrSelfBorrow
	}
	if _, err := utils.LoanDays(start, end); err != nil {
		return domain.BorrowRequest{}, err
	}
	if start.Before(EarliestStart(now)) {
		return domain.BorrowRequest{}, domain.ErrInvalidRange
	}
	return domain.BorrowRequest{
		ID:                 uuid.NewString(),
		ItemID:             item.ID,
		LenderUserID:       item.LenderUserID,
		BorrowerUserID:     borrowerID,
		RequestedStartDate: start.UTC(),
		RequestedEndDate:   end.UTC(),
		Status:             domain.BorrowRequestStatusPending,
		Message:            strings.TrimSpace(message),
		CreatedOn:          now,
		UpdatedOn:          now,
	}, nil
}

// Approve maps onto approveBorrowRequest. The fee is quoted from the item's
// current rate and frozen on the request.
func Approve(req domain.BorrowRequest, item domain.Item, actorID string, now time.Time) (domain.BorrowRequest, error) {
	if actorID != req.LenderUserID {
		return req, domain.ErrNotAuthorized
	}
	if req.Status != domain.BorrowRequestStatusPending {
		return req, domain.ErrInvalidState
	}
	if !item.IsAvailable {
		return req, domain.ErrUnavailable
	}
	fee, err := utils.TotalFee(item.BorrowingFeePerDay, req.RequestedStartDate, req.RequestedEndDate)
	if err != nil {
		return req, err
	}
	req.Status = domain.BorrowRequestStatusApproved
	req.QuotedFee = fee
	req.UpdatedOn = now
	return req, nil
}

// Deny maps onto denyBorrowRequest.
func Deny(req domain.BorrowRequest, actorID string, now time.Time) (domain.BorrowRequest, error) {
	if actorID != req.LenderUserID {
		return req, domain.ErrNotAuthorized
	}
	if req.Status != domain.BorrowRequestStatusPending {
		return req, domain.ErrInvalidState
	}
	req.Status = domain.BorrowRequestStatusDenied
	req.UpdatedOn = now
	return req, nil
}

// Pay maps onto createTransaction. The caller must hold the item and request
// exclusively between reading them and persisting the result.
func Pay(req domain.BorrowRequest, item domain.Item, payerID string, amountPaid decimal.Decimal, paymentRef string, now time.Time) (PayResult, error) {
	if payerID != req.BorrowerUserID {
		return PayResult{}, domain.ErrNotAuthorized
	}
	if req.Status != domain.BorrowRequestStatusApproved || req.IsPaid() {
		return PayResult{}, domain.ErrInvalidState
	}
	if !item.IsAvailable {
		return PayResult{}, domain.ErrUnavailable
	}
	if !amountPaid.Equal(req.QuotedFee) {
		return PayResult{}, domain.ErrAmountMismatch
	}

	tx := domain.Transaction{
		ID:                uuid.NewString(),
		RequestID:         req.ID,
		ItemID:            item.ID,
		LenderUserID:      req.LenderUserID,
		BorrowerUserID:    req.BorrowerUserID,
		FeePaid:           req.QuotedFee,
		Status:            domain.TransactionStatusActive,
		BorrowedStartDate: req.RequestedStartDate,
		DueDate:           req.RequestedEndDate,
		PaymentRef:        strings.TrimSpace(paymentRef),
		CreatedOn:         now,
	}
	req.TransactionID = tx.ID
	req.UpdatedOn = now
	item.IsAvailable = false
	item.UpdatedOn = now
	return PayResult{Request: req, Item: item, Transaction: tx}, nil
}

// MarkReturned maps onto markItemReturned. Overdue loans are returned the
// same way as active ones.
func MarkReturned(tx domain.Transaction, item domain.Item, req domain.BorrowRequest, actorID string, now time.Time) (ReturnResult, error) {
	if actorID != tx.LenderUserID {
		return ReturnResult{}, domain.ErrNotAuthorized
	}
	if tx.Status != domain.TransactionStatusActive {
		return ReturnResult{}, domain.ErrInvalidState
	}
	returned := now
	tx.Status = domain.TransactionStatusCompleted
	tx.ReturnedDate = &returned
	item.IsAvailable = true
	item.UpdatedOn = now
	req.Status = domain.BorrowRequestStatusCompleted
	req.UpdatedOn = now
	return ReturnResult{Transaction: tx, Item: item, Request: req}, nil
}

// SubmitReview validates a review of the counterparty on a completed loan.
// existing holds the reviews already stored for tx.
func SubmitReview(tx domain.Transaction, reviewerID string, score int, comment string, existing []domain.Review, now time.Time) (domain.Review, error) {
	if tx.Status != domain.TransactionStatusCompleted {
		return domain.Review{}, domain.ErrInvalidState
	}
	reviewee := tx.Counterparty(reviewerID)
	if reviewee == "" {
		return domain.Review{}, domain.ErrNotAuthorized
	}
	for _, r := range existing {
		if r.TransactionID == tx.ID && r.ReviewerID == reviewerID {
			return domain.Review{}, domain.ErrDuplicateReview
		}
	}
	if score < 1 || score > 5 {
		return domain.Review{}, domain.ErrInvalidRating
	}
	return domain.Review{
		ID:            uuid.NewString(),
		TransactionID: tx.ID,
		ReviewerID:    reviewerID,
		RevieweeID:    reviewee,
		Rating:        score,
		Comment:       strings.TrimSpace(comment),
		CreatedOn:     now,
	}, nil
}
