package postgres

import (
	"context"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/logger"
	"lendlocal-backend/internal/repository"
)

type itemRepository struct {
	db   Querier
	lock bool
}

func NewItemRepository(db Querier) repository.ItemRepository {
	return &itemRepository{db: db}
}

const itemColumns = `id, lender_user_id, title, description, image_url, category, condition, borrowing_fee_per_day, is_available, lat, lng, created_on, updated_on`

func scanItem(row rowScanner) (*domain.Item, error) {
	it := &domain.Item{}
	err := row.Scan(&it.ID, &it.LenderUserID, &it.Title, &it.Description, &it.ImageURL, &it.Category, &it.Condition, &it.BorrowingFeePerDay, &it.IsAvailable, &it.Location.Lat, &it.Location.Lng, &it.CreatedOn, &it.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *itemRepository) Create(ctx context.Context, it *domain.Item) error {
	logger.EnterMethod("itemRepository.Create", "itemID", it.ID, "lenderID", it.LenderUserID)
	query := `INSERT INTO items (id, lender_user_id, title, description, image_url, category, condition, borrowing_fee_per_day, is_available, lat, lng, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(ctx, query, it.ID, it.LenderUserID, it.Title, it.Description, it.ImageURL, it.Category, it.Condition, it.BorrowingFeePerDay, it.IsAvailable, it.Location.Lat, it.Location.Lng, it.CreatedOn, it.UpdatedOn)
	if err != nil {
		logger.ExitMethodWithError("itemRepository.Create", err, "itemID", it.ID)
		return err
	}
	logger.ExitMethod("itemRepository.Create", "itemID", it.ID)
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	query := forUpdate(`SELECT `+itemColumns+` FROM items WHERE id = $1`, r.lock)
	it, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("item", id, err)
	}
	return it, nil
}

func (r *itemRepository) Update(ctx context.Context, it *domain.Item) error {
	logger.EnterMethod("itemRepository.Update", "itemID", it.ID, "isAvailable", it.IsAvailable)
	query := `UPDATE items SET title=$1, description=$2, image_url=$3, category=$4, condition=$5, borrowing_fee_per_day=$6, is_available=$7, lat=$8, lng=$9, updated_on=$10 WHERE id=$11`
	res, err := r.db.ExecContext(ctx, query, it.Title, it.Description, it.ImageURL, it.Category, it.Condition, it.BorrowingFeePerDay, it.IsAvailable, it.Location.Lat, it.Location.Lng, it.UpdatedOn, it.ID)
	if err == nil {
		err = expectOneRow(res, "item", it.ID)
	}
	if err != nil {
		logger.ExitMethodWithError("itemRepository.Update", err, "itemID", it.ID)
		return err
	}
	logger.ExitMethod("itemRepository.Update", "itemID", it.ID)
	return nil
}

func (r *itemRepository) List(ctx context.Context) ([]domain.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items ORDER BY created_on DESC`)
}

func (r *itemRepository) ListByLender(ctx context.Context, lenderID string) ([]domain.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items WHERE lender_user_id = $1 ORDER BY created_on DESC`, lenderID)
}

func (r *itemRepository) list(ctx context.Context, query string, args ...any) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}
