package postgres

import (
	"context"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/repository"
)

type borrowRequestRepository struct {
	db   Querier
	lock bool
}

func NewBorrowRequestRepository(db Querier) repository.BorrowRequestRepository {
	return &borrowRequestRepository{db: db}
}

const borrowRequestColumns = `id, item_id, lender_user_id, borrower_user_id, requested_start_date, requested_end_date, status, message, quoted_fee, COALESCE(transaction_id, ''), created_on, updated_on`

func scanBorrowRequest(row rowScanner) (*domain.BorrowRequest, error) {
	br := &domain.BorrowRequest{}
	err := row.Scan(&br.ID, &br.ItemID, &br.LenderUserID, &br.BorrowerUserID, &br.RequestedStartDate, &br.RequestedEndDate, &br.Status, &br.Message, &br.QuotedFee, &br.TransactionID, &br.CreatedOn, &br.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return br, nil
}

func (r *borrowRequestRepository) Create(ctx context.Context, br *domain.BorrowRequest) error {
	query := `INSERT INTO borrow_requests (id, item_id, lender_user_id, borrower_user_id, requested_start_date, requested_end_date, status, message, quoted_fee, transaction_id, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12)`
	_, err := r.db.ExecContext(ctx, query, br.ID, br.ItemID, br.LenderUserID, br.BorrowerUserID, br.RequestedStartDate, br.RequestedEndDate, br.Status, br.Message, br.QuotedFee, br.TransactionID, br.CreatedOn, br.UpdatedOn)
	return err
}

func (r *borrowRequestRepository) GetByID(ctx context.Context, id string) (*domain.BorrowRequest, error) {
	query := forUpdate(`SELECT `+borrowRequestColumns+` FROM borrow_requests WHERE id = $1`, r.lock)
	br, err := scanBorrowRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("borrow request", id, err)
	}
	return br, nil
}

func (r *borrowRequestRepository) Update(ctx context.Context, br *domain.BorrowRequest) error {
	query := `UPDATE borrow_requests SET status=$1, quoted_fee=$2, transaction_id=NULLIF($3, ''), updated_on=$4 WHERE id=$5`
	res, err := r.db.ExecContext(ctx, query, br.Status, br.QuotedFee, br.TransactionID, br.UpdatedOn, br.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res, "borrow request", br.ID)
}

func (r *borrowRequestRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]domain.BorrowRequest, error) {
	return r.list(ctx, `SELECT `+borrowRequestColumns+` FROM borrow_requests WHERE borrower_user_id = $1 ORDER BY created_on DESC`, borrowerID)
}

func (r *borrowRequestRepository) ListByLender(ctx context.Context, lenderID string) ([]domain.BorrowRequest, error) {
	return r.list(ctx, `SELECT `+borrowRequestColumns+` FROM borrow_requests WHERE lender_user_id = $1 ORDER BY created_on DESC`, lenderID)
}

func (r *borrowRequestRepository) list(ctx context.Context, query string, args ...any) ([]domain.BorrowRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.BorrowRequest
	for rows.Next() {
		br, err := scanBorrowRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *br)
	}
	return requests, rows.Err()
}
