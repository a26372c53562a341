package postgres

import (
	"database/sql"

	"gearloop-backend/internal/repository"

	_ "github.com/lib/pq"
)

// Store bundles the postgres-backed repositories over one connection pool.
type Store struct {
	db *sql.DB

	Rentals       repository.RentalRepository
	Ledger        repository.LedgerRepository
	Disputes      repository.DisputeRepository
	Timeline      repository.TimelineRepository
	Items         repository.ItemRepository
	Users         repository.UserRepository
	Notifications repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:            db,
		Rentals:       NewRentalRepository(db),
		Ledger:        NewLedgerRepository(db),
		Disputes:      NewDisputeRepository(db),
		Timeline:      NewTimelineRepository(db),
		Items:         NewItemRepository(db),
		Users:         NewUserRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}
