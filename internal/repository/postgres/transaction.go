package postgres

import (
	"context"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/logger"
	"lendlocal-backend/internal/repository"
)

type transactionRepository struct {
	db   Querier
	lock bool
}

func NewTransactionRepository(db Querier) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, request_id, item_id, lender_user_id, borrower_user_id, fee_paid, status, borrowed_start_date, due_date, returned_date, payment_ref, created_on`

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	tx := &domain.Transaction{}
	err := row.Scan(&tx.ID, &tx.RequestID, &tx.ItemID, &tx.LenderUserID, &tx.BorrowerUserID, &tx.FeePaid, &tx.Status, &tx.BorrowedStartDate, &tx.DueDate, &tx.ReturnedDate, &tx.PaymentRef, &tx.CreatedOn)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	logger.EnterMethod("transactionRepository.Create", "transactionID", tx.ID, "itemID", tx.ItemID)
	query := `INSERT INTO transactions (id, request_id, item_id, lender_user_id, borrower_user_id, fee_paid, status, borrowed_start_date, due_date, returned_date, payment_ref, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(ctx, query, tx.ID, tx.RequestID, tx.ItemID, tx.LenderUserID, tx.BorrowerUserID, tx.FeePaid, tx.Status, tx.BorrowedStartDate, tx.DueDate, tx.ReturnedDate, tx.PaymentRef, tx.CreatedOn)
	if err != nil {
		logger.ExitMethodWithError("transactionRepository.Create", err, "transactionID", tx.ID)
		return err
	}
	logger.ExitMethod("transactionRepository.Create", "transactionID", tx.ID)
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := forUpdate(`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, r.lock)
	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("transaction", id, err)
	}
	return tx, nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	query := `UPDATE transactions SET status=$1, returned_date=$2 WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, tx.Status, tx.ReturnedDate, tx.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res, "transaction", tx.ID)
}

func (r *transactionRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]domain.Transaction, error) {
	return r.list(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE borrower_user_id = $1 ORDER BY created_on DESC`, borrowerID)
}

func (r *transactionRepository) ListByLender(ctx context.Context, lenderID string) ([]domain.Transaction, error) {
	return r.list(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE lender_user_id = $1 ORDER BY created_on DESC`, lenderID)
}

func (r *transactionRepository) ListActive(ctx context.Context) ([]domain.Transaction, error) {
	return r.list(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE status = $1 ORDER BY due_date`, domain.TransactionStatusActive)
}

func (r *transactionRepository) list(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}
