package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusActive    TransactionStatus = "active"
	TransactionStatusOverdue   TransactionStatus = "overdue" // Projection only, never stored
	TransactionStatusCompleted TransactionStatus = "completed"
)

// LoanTimingState is the display state of a loan on the active-loans panel.
type LoanTimingState string

const (
	LoanTimingOnTime   LoanTimingState = "on_time"
	LoanTimingDueSoon  LoanTimingState = "due_soon"
	LoanTimingOverdue  LoanTimingState = "overdue"
	LoanTimingReturned LoanTimingState = "returned"
)

type LoanTiming struct {
	DaysRemaining int             `json:"days_remaining"` // Negative once overdue
	State         LoanTimingState `json:"state"`
}

// Transaction is the loan derived from a paid borrow request. Only active and
// completed are ever persisted in Status.
type Transaction struct {
	ID                string            `json:"transaction_id"`
	RequestID         string            `json:"request_id"`
	ItemID            string            `json:"item_id"`
	LenderUserID      string            `json:"lender_user_id"`
	BorrowerUserID    string            `json:"borrower_user_id"`
	FeePaid           decimal.Decimal   `json:"fee_paid"`
	Status            TransactionStatus `json:"status"`
	BorrowedStartDate time.Time         `json:"borrowed_start_date"`
	DueDate           time.Time         `json:"due_date"`
	ReturnedDate      *time.Time        `json:"returned_date,omitempty"`
	PaymentRef        string            `json:"payment_ref,omitempty"`
	CreatedOn         time.Time         `json:"created_on"`
}

// IsOverdue reports whether the loan is still out after its due date.
func (t *Transaction) IsOverdue(now time.Time) bool {
	return t.Status != TransactionStatusCompleted && now.After(t.DueDate)
}

// StatusAt projects the stored status onto now.
func (t *Transaction) StatusAt(now time.Time) TransactionStatus {
	if t.IsOverdue(now) {
		return TransactionStatusOverdue
	}
	return t.Status
}

// Timing computes whole days left until the due date. Less than a full day
// left reads as due_soon with zero days remaining.
func (t *Transaction) Timing(now time.Time) LoanTiming {
	if t.Status == TransactionStatusCompleted {
		return LoanTiming{State: LoanTimingReturned}
	}
	const day = 24 * time.Hour
	if t.IsOverdue(now) {
		late := now.Sub(t.DueDate)
		days := int((late + day - 1) / day)
		return LoanTiming{DaysRemaining: -days, State: LoanTimingOverdue}
	}
	days := int(t.DueDate.Sub(now) / day)
	if days == 0 {
		return LoanTiming{DaysRemaining: 0, State: LoanTimingDueSoon}
	}
	return LoanTiming{DaysRemaining: days, State: LoanTimingOnTime}
}

// Counterparty returns the other side of the loan for userID, or "" when
// userID is not a party.
func (t *Transaction) Counterparty(userID string) string {
	switch userID {
	case t.LenderUserID:
		return t.BorrowerUserID
	case t.BorrowerUserID:
		return t.LenderUserID
	}
	return ""
}
