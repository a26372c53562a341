package postgres

import (
	"context"
	"database/sql"
	"time"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/repository"
)

type timelineRepository struct {
	db *sql.DB
}

func NewTimelineRepository(db *sql.DB) repository.TimelineRepository {
	return &timelineRepository{db: db}
}

// appendEventTx inserts a timeline event inside an existing transaction so
// the audit trail commits or rolls back with the transition it records.
func appendEventTx(ctx context.Context, tx *sql.Tx, rentalID int32, event string, actorID *int32, details string) error {
	query := `INSERT INTO rental_events (rental_id, event, actor_id, details, created_on)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := tx.ExecContext(ctx, query, rentalID, event, actorID, details, time.Now())
	return err
}

func (r *timelineRepository) Append(ctx context.Context, ev *domain.TimelineEvent) error {
	query := `INSERT INTO rental_events (rental_id, event, actor_id, details, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_on`
	return r.db.QueryRowContext(ctx, query, ev.RentalID, ev.Event, ev.ActorID, ev.Details, time.Now()).
		Scan(&ev.ID, &ev.CreatedOn)
}

func (r *timelineRepository) ListByRental(ctx context.Context, rentalID int32) ([]domain.TimelineEvent, error) {
	query := `SELECT id, rental_id, event, actor_id, COALESCE(details, ''), created_on
	          FROM rental_events WHERE rental_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.TimelineEvent
	for rows.Next() {
		var ev domain.TimelineEvent
		if err := rows.Scan(&ev.ID, &ev.RentalID, &ev.Event, &ev.ActorID, &ev.Details, &ev.CreatedOn); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
