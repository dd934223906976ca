package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BorrowRequestStatus string

const (
	BorrowRequestStatusPending   BorrowRequestStatus = "pending"
	BorrowRequestStatusApproved  BorrowRequestStatus = "approved"
	BorrowRequestStatusDenied    BorrowRequestStatus = "denied"
	BorrowRequestStatusCompleted BorrowRequestStatus = "completed"
)

// IsTerminal reports whether no further transition is defined from s.
func (s BorrowRequestStatus) IsTerminal() bool {
	return s == BorrowRequestStatusDenied || s == BorrowRequestStatusCompleted
}

type BorrowRequest struct {
	ID                 string              `json:"request_id"`
	ItemID             string              `json:"item_id"`
	LenderUserID       string              `json:"lender_user_id"`
	BorrowerUserID     string              `json:"borrower_user_id"`
	RequestedStartDate time.Time           `json:"requested_start_date"`
	RequestedEndDate   time.Time           `json:"requested_end_date"`
	Status             BorrowRequestStatus `json:"status"`
	Message            string              `json:"message,omitempty"`
	QuotedFee          decimal.Decimal     `json:"quoted_fee"`               // Frozen at approval
	TransactionID      string              `json:"transaction_id,omitempty"` // Set once payment produced a loan
	CreatedOn          time.Time           `json:"created_on"`
	UpdatedOn          time.Time           `json:"updated_on"`
}

// IsPaid reports whether the request has already been converted into a loan.
func (r *BorrowRequest) IsPaid() bool {
	return r.TransactionID != ""
}
