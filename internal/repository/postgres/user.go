package postgres

import (
	"context"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/repository"
)

type userRepository struct {
	db   Querier
	lock bool
}

func NewUserRepository(db Querier) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, display_name, COALESCE(wallet_address, ''), email, profile_pic_url, bio, rating, review_count, rating_total, created_on, updated_on`

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.DisplayName, &u.WalletAddress, &u.Email, &u.ProfilePicURL, &u.Bio, &u.Rating, &u.ReviewCount, &u.RatingTotal, &u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (id, display_name, wallet_address, email, profile_pic_url, bio, rating, review_count, rating_total, created_on, updated_on)
	          VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query, u.ID, u.DisplayName, u.WalletAddress, u.Email, u.ProfilePicURL, u.Bio, u.Rating, u.ReviewCount, u.RatingTotal, u.CreatedOn, u.UpdatedOn)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := forUpdate(`SELECT `+userColumns+` FROM users WHERE id = $1`, r.lock)
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("user", id, err)
	}
	return u, nil
}

func (r *userRepository) GetByWallet(ctx context.Context, walletAddress string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(wallet_address) = LOWER($1)`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, walletAddress))
	if err != nil {
		return nil, notFound("wallet", walletAddress, err)
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET display_name=$1, wallet_address=NULLIF($2, ''), email=$3, profile_pic_url=$4, bio=$5, rating=$6, review_count=$7, rating_total=$8, updated_on=$9 WHERE id=$10`
	res, err := r.db.ExecContext(ctx, query, u.DisplayName, u.WalletAddress, u.Email, u.ProfilePicURL, u.Bio, u.Rating, u.ReviewCount, u.RatingTotal, u.UpdatedOn, u.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res, "user", u.ID)
}
