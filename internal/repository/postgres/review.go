package postgres

import (
	"context"
	"errors"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/repository"

	"github.com/lib/pq"
)

type reviewRepository struct {
	db Querier
}

func NewReviewRepository(db Querier) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `id, transaction_id, reviewer_id, reviewee_id, rating, comment, created_on`

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

func (r *reviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `INSERT INTO reviews (id, transaction_id, reviewer_id, reviewee_id, rating, comment, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, rv.ID, rv.TransactionID, rv.ReviewerID, rv.RevieweeID, rv.Rating, rv.Comment, rv.CreatedOn)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrDuplicateReview
	}
	return err
}

func (r *reviewRepository) ListByTransaction(ctx context.Context, transactionID string) ([]domain.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE transaction_id = $1 ORDER BY created_on`, transactionID)
}

func (r *reviewRepository) ListByReviewee(ctx context.Context, revieweeID string) ([]domain.Review, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE reviewee_id = $1 ORDER BY created_on DESC`, revieweeID)
}

func (r *reviewRepository) list(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.TransactionID, &rv.ReviewerID, &rv.RevieweeID, &rv.Rating, &rv.Comment, &rv.CreatedOn); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
