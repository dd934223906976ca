package repository

import (
	"context"

	"lendlocal-backend/internal/domain"
)

// Lookups return domain.ErrNotFound (possibly wrapped) when no row matches.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByWallet(ctx context.Context, walletAddress string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	List(ctx context.Context) ([]domain.Item, error)
	ListByLender(ctx context.Context, lenderID string) ([]domain.Item, error)
}

type BorrowRequestRepository interface {
	Create(ctx context.Context, req *domain.BorrowRequest) error
	GetByID(ctx context.Context, id string) (*domain.BorrowRequest, error)
	Update(ctx context.Context, req *domain.BorrowRequest) error
	ListByBorrower(ctx context.Context, borrowerID string) ([]domain.BorrowRequest, error)
	ListByLender(ctx context.Context, lenderID string) ([]domain.BorrowRequest, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	Update(ctx context.Context, tx *domain.Transaction) error
	ListByBorrower(ctx context.Context, borrowerID string) ([]domain.Transaction, error)
	ListByLender(ctx context.Context, lenderID string) ([]domain.Transaction, error)
	// ListActive returns loans whose stored status is active, overdue ones included.
	ListActive(ctx context.Context) ([]domain.Transaction, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	ListByTransaction(ctx context.Context, transactionID string) ([]domain.Review, error)
	ListByReviewee(ctx context.Context, revieweeID string) ([]domain.Review, error)
}

// Store groups the repositories and runs units of work atomically.
type Store interface {
	Users() UserRepository
	Items() ItemRepository
	Requests() BorrowRequestRepository
	Transactions() TransactionRepository
	Reviews() ReviewRepository

	// WithinTx runs fn against a transactional view of the store. Rows read
	// through GetByID inside fn stay locked until fn returns. The work is
	// committed when fn returns nil and rolled back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
}
