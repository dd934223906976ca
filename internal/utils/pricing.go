package utils

import (
	"fmt"
	"strings"
	"time"

	"lendlocal-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format accepted on the wire
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// FeeQuote provides the breakdown shown on the borrow request form
type FeeQuote struct {
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Days      int64           `json:"days"`
	DailyFee  decimal.Decimal `json:"daily_fee"`
	TotalFee  decimal.Decimal `json:"total_fee"`
}

// ParseDate converts a yyyy-mm-dd string into midnight UTC of that day.
// RFC 3339 timestamps are accepted as well and normalized to UTC.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if t, err := time.Parse(DateLayout, dateStr); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd: %w", domain.ErrInvalidRange)
	}
	return t.UTC(), nil
}

// LoanDays returns the number of billable days between start and end.
// Partial days round up; end must be strictly after start.
func LoanDays(start, end time.Time) (int64, error) {
	if !end.After(start) {
		return 0, fmt.Errorf("end date must be after start date: %w", domain.ErrInvalidRange)
	}
	span := end.Sub(start)
	days := int64(span / day)
	if span%day != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days, nil
}

// TotalFee calculates the borrowing cost for the range as dailyFee times
// the billable days, in exact decimal arithmetic.
func TotalFee(dailyFee decimal.Decimal, start, end time.Time) (decimal.Decimal, error) {
	if dailyFee.IsNegative() {
		return decimal.Zero, fmt.Errorf("daily fee %s is negative: %w", dailyFee, domain.ErrInvalidRate)
	}
	days, err := LoanDays(start, end)
	if err != nil {
		return decimal.Zero, err
	}
	return dailyFee.Mul(decimal.NewFromInt(days)), nil
}

// QuoteFee calculates the fee together with its breakdown
func QuoteFee(dailyFee decimal.Decimal, start, end time.Time) (FeeQuote, error) {
	total, err := TotalFee(dailyFee, start, end)
	if err != nil {
		return FeeQuote{}, err
	}
	days, _ := LoanDays(start, end)
	return FeeQuote{
		StartDate: start,
		EndDate:   end,
		Days:      days,
		DailyFee:  dailyFee,
		TotalFee:  total,
	}, nil
}
