package postgres

import (
	"context"
	"database/sql"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, name, email, COALESCE(fcm_token, ''), kyc_verified, completed_rentals, is_moderator, created_on
	          FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.FCMToken, &u.KYCVerified, &u.CompletedRentals, &u.IsModerator, &u.CreatedOn,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}
