package domain

import "errors"

// Lifecycle and validation failures. Callers match these with errors.Is;
// services wrap them with context via fmt.Errorf("...: %w", err).
var (
	ErrInvalidRange    = errors.New("invalid date range")
	ErrInvalidRate     = errors.New("invalid daily rate")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrUnavailable     = errors.New("item is not available")
	ErrSelfBorrow      = errors.New("cannot borrow your own item")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrInvalidState    = errors.New("invalid state for this action")
	ErrAmountMismatch  = errors.New("amount paid does not match borrowing fee")
	ErrDuplicateReview = errors.New("transaction already reviewed by this user")
	ErrInvalidListing  = errors.New("invalid item listing")
	ErrNotFound        = errors.New("not found")
)
