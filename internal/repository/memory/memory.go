// Package memory is an in-process repository.Store. Transactions are
// serialized by one mutex and applied to a copy of the tables, which replaces
// the live tables only when the unit of work succeeds.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/repository"
)

var ErrDuplicateID = errors.New("duplicate id")

type tables struct {
	users        map[string]domain.User
	items        map[string]domain.Item
	requests     map[string]domain.BorrowRequest
	transactions map[string]domain.Transaction
	reviews      []domain.Review
}

func newTables() *tables {
	return &tables{
		users:        make(map[string]domain.User),
		items:        make(map[string]domain.Item),
		requests:     make(map[string]domain.BorrowRequest),
		transactions: make(map[string]domain.Transaction),
	}
}

// clone copies every table. Records are values, so a shallow copy per map
// entry is enough except for the returned-date pointer.
func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.items {
		c.items[k] = v
	}
	for k, v := range t.requests {
		c.requests[k] = v
	}
	for k, v := range t.transactions {
		if v.ReturnedDate != nil {
			rd := *v.ReturnedDate
			v.ReturnedDate = &rd
		}
		c.transactions[k] = v
	}
	c.reviews = append([]domain.Review(nil), t.reviews...)
	return c
}

type state struct {
	mu   sync.Mutex
	data *tables
}

// Store implements repository.Store in memory. The zero value is not usable;
// call NewStore.
type Store struct {
	st *state
	tx *tables // non-nil inside WithinTx; the state mutex is already held
}

func NewStore() *Store {
	return &Store{st: &state{data: newTables()}}
}

func (s *Store) view(fn func(t *tables) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return fn(s.st.data)
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	work := s.st.data.clone()
	if err := fn(&Store{st: s.st, tx: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st.data = work
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Users() repository.UserRepository               { return userRepository{s} }
func (s *Store) Items() repository.ItemRepository               { return itemRepository{s} }
func (s *Store) Requests() repository.BorrowRequestRepository   { return requestRepository{s} }
func (s *Store) Transactions() repository.TransactionRepository { return transactionRepository{s} }
func (s *Store) Reviews() repository.ReviewRepository           { return reviewRepository{s} }

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}

func duplicate(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrDuplicateID)
}

type userRepository struct{ s *Store }

func (r userRepository) Create(ctx context.Context, u *domain.User) error {
	return r.s.view(func(t *tables) error {
		if _, ok := t.users[u.ID]; ok {
			return duplicate("user", u.ID)
		}
		if u.WalletAddress != "" {
			for _, other := range t.users {
				if strings.EqualFold(other.WalletAddress, u.WalletAddress) {
					return duplicate("wallet", u.WalletAddress)
				}
			}
		}
		t.users[u.ID] = *u
		return nil
	})
}

func (r userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var out domain.User
	err := r.s.view(func(t *tables) error {
		u, ok := t.users[id]
		if !ok {
			return notFound("user", id)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r userRepository) GetByWallet(ctx context.Context, walletAddress string) (*domain.User, error) {
	var out *domain.User
	err := r.s.view(func(t *tables) error {
		for _, u := range t.users {
			if u.WalletAddress != "" && strings.EqualFold(u.WalletAddress, walletAddress) {
				out = &u
				return nil
			}
		}
		return notFound("wallet", walletAddress)
	})
	return out, err
}

func (r userRepository) Update(ctx context.Context, u *domain.User) error {
	return r.s.view(func(t *tables) error {
		if _, ok := t.users[u.ID]; !ok {
			return notFound("user", u.ID)
		}
		t.users[u.ID] = *u
		return nil
	})
}

type itemRepository struct{ s *Store }

func (r itemRepository) Create(ctx context.Context, it *domain.Item) error {
	return r.s.view(func(t *tables) error {
		if _, ok := t.items[it.ID]; ok {
			return duplicate("item", it.ID)
		}
		t.items[it.ID] = *it
		return nil
	})
}

func (r itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	var out domain.Item
	err := r.s.view(func(t *tables) error {
		it, ok := t.items[id]
		if !ok {
			return notFound("item", id)
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r itemRepository) Update(ctx context.Context, it *domain.Item) error {
	return r.s.view(func(t *tables) error {
		old, ok := t.items[it.ID]
		if !ok {
			return notFound("item", it.ID)
		}
		updated := *it
		updated.LenderUserID = old.LenderUserID
		updated.CreatedOn = old.CreatedOn
		t.items[it.ID] = updated
		return nil
	})
}

func (r itemRepository) List(ctx context.Context) ([]domain.Item, error) {
	return r.filter(func(domain.Item) bool { return true })
}

func (r itemRepository) ListByLender(ctx context.Context, lenderID string) ([]domain.Item, error) {
	return r.filter(func(it domain.Item) bool { return it.LenderUserID == lenderID })
}

func (r itemRepository) filter(keep func(domain.Item) bool) ([]domain.Item, error) {
	var out []domain.Item
	err := r.s.view(func(t *tables) error {
		for _, it := range t.items {
			if keep(it) {
				out = append(out, it)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedOn.Equal(out[j].CreatedOn) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedOn.After(out[j].CreatedOn)
	})
	return out, err
}

type requestRepository struct{ s *Store }

func (r requestRepository) Create(ctx context.Context, br *domain.BorrowRequest) error {
	return r.s.view(func(t *tables) error {
		if _, ok := t.requests[br.ID]; ok {
			return duplicate("borrow request", br.ID)
		}
		t.requests[br.ID] = *br
		return nil
	})
}

func (r requestRepository) GetByID(ctx context.Context, id string) (*domain.BorrowRequest, error) {
	var out domain.BorrowRequest
	err := r.s.view(func(t *tables) error {
		br, ok := t.requests[id]
		if !ok {
			return notFound("borrow request", id)
		}
		out = br
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r requestRepository) Update(ctx context.Context, br *domain.BorrowRequest) error {
	return r.s.view(func(t *tables) error {
		if _, ok := t.requests[br.ID]; !ok {
			return notFound("borrow request", br.ID)
		}
		t.requests[br.ID] = *br
		return nil
	})
}

func (r requestRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]domain.BorrowRequest, error) {
	return r.filter(func(br domain.BorrowRequest) bool { return br.BorrowerUserID == borrowerID })
}

func (r requestRepository) ListByLender(ctx context.Context, lenderID string) ([]domain.BorrowRequest, error) {
	return r.filter(func(br domain.BorrowRequest) bool { return br.LenderUserID == lenderID })
}

func (r requestRepository) filter(keep func(domain.BorrowRequest) bool) ([]domain.BorrowRequest, error) {
	var out []domain.BorrowRequest
	err := r.s.view(func(t *tables) error {
		for _, br := range t.requests {
			if keep(br) {
				out = append(out, br)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedOn.Equal(out[j].CreatedOn) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedOn.After(out[j].CreatedOn)
	})
	return out, err
}

type transactionRepository struct{ s *Store }

func (r transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	return r.s.view(func(t *tables) error {
		if _, ok := t.transactions[tx.ID]; ok {
			return duplicate("transaction", tx.ID)
		}
		if tx.Status == domain.TransactionStatusActive {
			for _, other := range t.transactions {
				if other.ItemID == tx.ItemID && other.Status == domain.TransactionStatusActive {
					return fmt.Errorf("item %s already on loan: %w", tx.ItemID, domain.ErrUnavailable)
				}
			}
		}
		t.transactions[tx.ID] = *tx
		return nil
	})
}

func (r transactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var out domain.Transaction
	err := r.s.view(func(t *tables) error {
		tx, ok := t.transactions[id]
		if !ok {
			return notFound("transaction", id)
		}
		out = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r transactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	return r.s.view(func(t *tables) error {
		old, ok := t.transactions[tx.ID]
		if !ok {
			return notFound("transaction", tx.ID)
		}
		old.Status = tx.Status
		old.ReturnedDate = tx.ReturnedDate
		t.transactions[tx.ID] = old
		return nil
	})
}

func (r transactionRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]domain.Transaction, error) {
	return r.filter(func(tx domain.Transaction) bool { return tx.BorrowerUserID == borrowerID })
}

func (r transactionRepository) ListByLender(ctx context.Context, lenderID string) ([]domain.Transaction, error) {
	return r.filter(func(tx domain.Transaction) bool { return tx.LenderUserID == lenderID })
}

func (r transactionRepository) ListActive(ctx context.Context) ([]domain.Transaction, error) {
	out, err := r.filter(func(tx domain.Transaction) bool { return tx.Status == domain.TransactionStatusActive })
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, err
}

func (r transactionRepository) filter(keep func(domain.Transaction) bool) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := r.s.view(func(t *tables) error {
		for _, tx := range t.transactions {
			if keep(tx) {
				out = append(out, tx)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedOn.Equal(out[j].CreatedOn) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedOn.After(out[j].CreatedOn)
	})
	return out, err
}

type reviewRepository struct{ s *Store }

func (r reviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	return r.s.view(func(t *tables) error {
		for _, other := range t.reviews {
			if other.TransactionID == rv.TransactionID && other.ReviewerID == rv.ReviewerID {
				return domain.ErrDuplicateReview
			}
		}
		t.reviews = append(t.reviews, *rv)
		return nil
	})
}

func (r reviewRepository) ListByTransaction(ctx context.Context, transactionID string) ([]domain.Review, error) {
	return r.filter(func(rv domain.Review) bool { return rv.TransactionID == transactionID })
}

func (r reviewRepository) ListByReviewee(ctx context.Context, revieweeID string) ([]domain.Review, error) {
	out, err := r.filter(func(rv domain.Review) bool { return rv.RevieweeID == revieweeID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedOn.After(out[j].CreatedOn) })
	return out, err
}

func (r reviewRepository) filter(keep func(domain.Review) bool) ([]domain.Review, error) {
	var out []domain.Review
	err := r.s.view(func(t *tables) error {
		for _, rv := range t.reviews {
			if keep(rv) {
				out = append(out, rv)
			}
		}
		return nil
	})
	return out, err
}
