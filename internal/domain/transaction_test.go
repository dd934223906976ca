package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_StatusAt(t *testing.T) {
	due := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	tx := &Transaction{Status: TransactionStatusActive, DueDate: due}

	t.Run("Active before due date", func(t *testing.T) {
		assert.Equal(t, TransactionStatusActive, tx.StatusAt(due.Add(-time.Hour)))
	})

	t.Run("Active exactly at due date", func(t *testing.T) {
		assert.Equal(t, TransactionStatusActive, tx.StatusAt(due))
	})

	t.Run("Overdue after due date", func(t *testing.T) {
		assert.Equal(t, TransactionStatusOverdue, tx.StatusAt(due.Add(time.Second)))
		assert.Equal(t, TransactionStatusActive, tx.Status, "stored status must not change")
	})

	t.Run("Completed is never overdue", func(t *testing.T) {
		done := &Transaction{Status: TransactionStatusCompleted, DueDate: due}
		assert.Equal(t, TransactionStatusCompleted, done.StatusAt(due.Add(72*time.Hour)))
	})
}

func TestTransaction_Timing(t *testing.T) {
	due := time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)
	tx := &Transaction{Status: TransactionStatusActive, DueDate: due}

	tests := []struct {
		name string
		now  time.Time
		want LoanTiming
	}{
		{"Two full days left", due.Add(-50 * time.Hour), LoanTiming{DaysRemaining: 2, State: LoanTimingOnTime}},
		{"Exactly one day left", due.Add(-24 * time.Hour), LoanTiming{DaysRemaining: 1, State: LoanTimingOnTime}},
		{"Due within hours", due.Add(-3 * time.Hour), LoanTiming{DaysRemaining: 0, State: LoanTimingDueSoon}},
		{"One hour late", due.Add(time.Hour), LoanTiming{DaysRemaining: -1, State: LoanTimingOverdue}},
		{"Three days late", due.Add(72 * time.Hour), LoanTiming{DaysRemaining: -3, State: LoanTimingOverdue}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tx.Timing(tt.now))
		})
	}

	t.Run("Returned loan", func(t *testing.T) {
		done := &Transaction{Status: TransactionStatusCompleted, DueDate: due}
		assert.Equal(t, LoanTimingReturned, done.Timing(due.Add(time.Hour)).State)
	})
}

func TestTransaction_Counterparty(t *testing.T) {
	tx := &Transaction{LenderUserID: "lender", BorrowerUserID: "borrower"}
	assert.Equal(t, "borrower", tx.Counterparty("lender"))
	assert.Equal(t, "lender", tx.Counterparty("borrower"))
	assert.Empty(t, tx.Counterparty("stranger"))
}

func TestItemCategory_Valid(t *testing.T) {
	assert.True(t, ItemCategoryGarden.Valid())
	assert.False(t, ItemCategory("all").Valid())
	assert.True(t, ItemConditionFair.Valid())
	assert.False(t, ItemCondition("broken").Valid())
}
