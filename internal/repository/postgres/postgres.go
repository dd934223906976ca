package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/logger"
	"lendlocal-backend/internal/repository"

	_ "github.com/lib/pq"
)

// Querier is the subset of *sql.DB and *sql.Tx the repositories need.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Store is the PostgreSQL implementation of repository.Store. A Store returned
// by WithinTx is bound to one *sql.Tx and locks rows it reads by id.
type Store struct {
	db   *sql.DB
	q    Querier
	inTx bool
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// Open connects with lib/pq and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{db: s.q, lock: s.inTx}
}

func (s *Store) Items() repository.ItemRepository {
	return &itemRepository{db: s.q, lock: s.inTx}
}

func (s *Store) Requests() repository.BorrowRequestRepository {
	return &borrowRequestRepository{db: s.q, lock: s.inTx}
}

func (s *Store) Transactions() repository.TransactionRepository {
	return &transactionRepository{db: s.q, lock: s.inTx}
}

func (s *Store) Reviews() repository.ReviewRepository {
	return &reviewRepository{db: s.q}
}

// WithinTx begins a transaction, runs fn and commits. Nested calls join the
// outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Error("Rollback failed", "error", rbErr)
		}
	}()

	if err := fn(&Store{db: s.db, q: tx, inTx: true}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	logger.DatabaseCall("EnsureSchema", "schema")
	_, err := s.db.ExecContext(ctx, schema)
	logger.DatabaseResult("EnsureSchema", 0, err)
	return err
}

// forUpdate appends a row lock when the repository is bound to a transaction.
func forUpdate(query string, lock bool) string {
	if lock {
		return query + " FOR UPDATE"
	}
	return query
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return err
}

func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id              TEXT PRIMARY KEY,
	display_name    TEXT NOT NULL,
	wallet_address  TEXT UNIQUE,
	email           TEXT NOT NULL DEFAULT '',
	profile_pic_url TEXT NOT NULL DEFAULT '',
	bio             TEXT NOT NULL DEFAULT '',
	rating          DOUBLE PRECISION NOT NULL DEFAULT 0,
	review_count    INTEGER NOT NULL DEFAULT 0,
	rating_total    INTEGER NOT NULL DEFAULT 0,
	created_on      TIMESTAMPTZ NOT NULL,
	updated_on      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
	id                    TEXT PRIMARY KEY,
	lender_user_id        TEXT NOT NULL REFERENCES users(id),
	title                 TEXT NOT NULL,
	description           TEXT NOT NULL,
	image_url             TEXT NOT NULL DEFAULT '',
	category              TEXT NOT NULL,
	condition             TEXT NOT NULL,
	borrowing_fee_per_day NUMERIC(20, 8) NOT NULL CHECK (borrowing_fee_per_day >= 0),
	is_available          BOOLEAN NOT NULL DEFAULT TRUE,
	lat                   DOUBLE PRECISION NOT NULL,
	lng                   DOUBLE PRECISION NOT NULL,
	created_on            TIMESTAMPTZ NOT NULL,
	updated_on            TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS borrow_requests (
	id                   TEXT PRIMARY KEY,
	item_id              TEXT NOT NULL REFERENCES items(id),
	lender_user_id       TEXT NOT NULL REFERENCES users(id),
	borrower_user_id     TEXT NOT NULL REFERENCES users(id),
	requested_start_date TIMESTAMPTZ NOT NULL,
	requested_end_date   TIMESTAMPTZ NOT NULL,
	status               TEXT NOT NULL,
	message              TEXT NOT NULL DEFAULT '',
	quoted_fee           NUMERIC(20, 8) NOT NULL DEFAULT 0,
	transaction_id       TEXT,
	created_on           TIMESTAMPTZ NOT NULL,
	updated_on           TIMESTAMPTZ NOT NULL,
	CHECK (requested_start_date < requested_end_date)
);

CREATE TABLE IF NOT EXISTS transactions (
	id                  TEXT PRIMARY KEY,
	request_id          TEXT NOT NULL UNIQUE REFERENCES borrow_requests(id),
	item_id             TEXT NOT NULL REFERENCES items(id),
	lender_user_id      TEXT NOT NULL REFERENCES users(id),
	borrower_user_id    TEXT NOT NULL REFERENCES users(id),
	fee_paid            NUMERIC(20, 8) NOT NULL,
	status              TEXT NOT NULL,
	borrowed_start_date TIMESTAMPTZ NOT NULL,
	due_date            TIMESTAMPTZ NOT NULL,
	returned_date       TIMESTAMPTZ,
	payment_ref         TEXT NOT NULL DEFAULT '',
	created_on          TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS transactions_one_active_per_item
	ON transactions (item_id) WHERE status = 'active';

CREATE TABLE IF NOT EXISTS reviews (
	id             TEXT PRIMARY KEY,
	transaction_id TEXT NOT NULL REFERENCES transactions(id),
	reviewer_id    TEXT NOT NULL REFERENCES users(id),
	reviewee_id    TEXT NOT NULL REFERENCES users(id),
	rating         INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment        TEXT NOT NULL DEFAULT '',
	created_on     TIMESTAMPTZ NOT NULL,
	UNIQUE (transaction_id, reviewer_id)
);
`
