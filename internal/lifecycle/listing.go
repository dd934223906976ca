package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/geo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemDetails are the lender-editable fields of a listing.
type ItemDetails struct {
	Title              string
	Description        string
	ImageURL           string
	Category           domain.ItemCategory
	Condition          domain.ItemCondition
	BorrowingFeePerDay decimal.Decimal
	Location           geo.Point
}

// Validate applies the listing form rules.
func (d ItemDetails) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("title is required: %w", domain.ErrInvalidListing)
	}
	if strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("description is required: %w", domain.ErrInvalidListing)
	}
	if !d.Category.Valid() {
		return fmt.Errorf("unknown category %q: %w", d.Category, domain.ErrInvalidListing)
	}
	if !d.Condition.Valid() {
		return fmt.Errorf("unknown condition %q: %w", d.Condition, domain.ErrInvalidListing)
	}
	if d.BorrowingFeePerDay.IsNegative() {
		return domain.ErrInvalidRate
	}
	return nil
}

// ListItem maps onto listItem. New listings start available.
func ListItem(lenderID string, d ItemDetails, now time.Time) (domain.Item, error) {
	if err := d.Validate(); err != nil {
		return domain.Item{}, err
	}
	item := domain.Item{
		ID:           uuid.NewString(),
		LenderUserID: lenderID,
		IsAvailable:  true,
		CreatedOn:    now,
	}
	apply(&item, d, now)
	return item, nil
}

// UpdateItem replaces the lender-editable details. Availability and
// ownership are never touched here.
func UpdateItem(item domain.Item, actorID string, d ItemDetails, now time.Time) (domain.Item, error) {
	if actorID != item.LenderUserID {
		return item, domain.ErrNotAuthorized
	}
	if err := d.Validate(); err != nil {
		return item, err
	}
	apply(&item, d, now)
	return item, nil
}

func apply(item *domain.Item, d ItemDetails, now time.Time) {
	item.Title = strings.TrimSpace(d.Title)
	item.Description = strings.TrimSpace(d.Description)
	item.ImageURL = strings.TrimSpace(d.ImageURL)
	item.Category = d.Category
	item.Condition = d.Condition
	item.BorrowingFeePerDay = d.BorrowingFeePerDay
	item.Location = d.Location
	item.UpdatedOn = now
}
