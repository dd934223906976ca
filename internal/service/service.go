package service

import (
	"context"
	"time"

	"lendlocal-backend/internal/availability"
	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/geo"
	"lendlocal-backend/internal/lifecycle"
	"lendlocal-backend/internal/security"
	"lendlocal-backend/internal/utils"

	"github.com/shopspring/decimal"
)

// Role selects which side of a request or loan a listing is for.
type Role string

const (
	RoleBorrower Role = "borrower"
	RoleLender   Role = "lender"
)

func (r Role) Valid() bool {
	return r == RoleBorrower || r == RoleLender
}

// LoanView is a loan with its read-time status and timing.
type LoanView struct {
	domain.Transaction
	Status domain.TransactionStatus `json:"status"`
	Timing domain.LoanTiming        `json:"timing"`
}

// ProfileUpdate holds the user-editable profile fields. Nil leaves a field
// unchanged.
type ProfileUpdate struct {
	DisplayName   *string
	Bio           *string
	ProfilePicURL *string
	Email         *string
}

// SignInCredentials carry a wallet's answer to a sign-in challenge. UserID
// optionally picks the id of a new account.
type SignInCredentials struct {
	UserID        string
	DisplayName   string
	WalletAddress string
	Challenge     string
	Signature     string
}

type UserService interface {
	Challenge(ctx context.Context, walletAddress string) (security.Challenge, error)
	SignIn(ctx context.Context, creds SignInCredentials) (*domain.User, string, error) // user, access token
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error)
	ListReviews(ctx context.Context, userID string) ([]domain.Review, error)
}

type MarketplaceService interface {
	ListItem(ctx context.Context, lenderID string, details lifecycle.ItemDetails) (*domain.Item, error)
	UpdateItem(ctx context.Context, actorID, itemID string, details lifecycle.ItemDetails) (*domain.Item, error)
	GetItem(ctx context.Context, itemID string) (*domain.Item, error)
	Browse(ctx context.Context, query, category string, origin *geo.Point) ([]availability.Listing, error)
	Quote(ctx context.Context, itemID string, start, end time.Time) (utils.FeeQuote, error)
}

type LendingService interface {
	CreateRequest(ctx context.Context, borrowerID, itemID string, start, end time.Time, message string) (*domain.BorrowRequest, error)
	ApproveRequest(ctx context.Context, lenderID, requestID string) (*domain.BorrowRequest, error)
	DenyRequest(ctx context.Context, lenderID, requestID string) (*domain.BorrowRequest, error)
	PayRequest(ctx context.Context, borrowerID, requestID string, amount decimal.Decimal, paymentRef string) (*LoanView, error)
	MarkReturned(ctx context.Context, lenderID, transactionID string) (*LoanView, error)
	SubmitReview(ctx context.Context, reviewerID, transactionID string, rating int, comment string) (*domain.Review, error)
	ListRequests(ctx context.Context, userID string, role Role) ([]domain.BorrowRequest, error)
	ListTransactions(ctx context.Context, userID string, role Role) ([]LoanView, error)
	GetTransaction(ctx context.Context, userID, transactionID string) (*LoanView, error)
	SendOverdueReminders(ctx context.Context) (int, error)
}

// Recipient is the addressee of a notification.
type Recipient struct {
	Name  string
	Email string
}

type EmailService interface {
	SendBorrowRequestNotification(ctx context.Context, lender Recipient, borrowerName, itemTitle string, start, end time.Time) error
	SendRequestApprovedNotification(ctx context.Context, borrower Recipient, lenderName, itemTitle string, fee decimal.Decimal) error
	SendRequestDeniedNotification(ctx context.Context, borrower Recipient, lenderName, itemTitle string) error
	SendPaymentReceivedNotification(ctx context.Context, lender Recipient, borrowerName, itemTitle string, fee decimal.Decimal, due time.Time) error
	SendReturnConfirmedNotification(ctx context.Context, borrower Recipient, itemTitle string) error
	SendOverdueReminder(ctx context.Context, borrower Recipient, itemTitle string, daysOverdue int) error
}

// Option configures a service.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newLoanView(tx domain.Transaction, now time.Time) LoanView {
	return LoanView{Transaction: tx, Status: tx.StatusAt(now), Timing: tx.Timing(now)}
}
