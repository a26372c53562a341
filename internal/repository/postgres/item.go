package postgres

import (
	"context"
	"database/sql"
	"time"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/repository"
)

type itemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	it := &domain.Item{}
	query := `SELECT id, owner_id, name, daily_rate_cents, security_deposit_cents, delivery_fee_cents, currency, status, created_on, updated_on
	          FROM items WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&it.ID, &it.OwnerID, &it.Name, &it.DailyRateCents, &it.SecurityDepositCents,
		&it.DeliveryFeeCents, &it.Currency, &it.Status, &it.CreatedOn, &it.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *itemRepository) SetStatus(ctx context.Context, itemID int32, status domain.ItemStatus) error {
	query := `UPDATE items SET status = $1, updated_on = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), itemID)
	return err
}
