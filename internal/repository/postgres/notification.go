package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, note *domain.Notification) error {
	var attrs []byte
	if note.Attributes != nil {
		var err error
		attrs, err = json.Marshal(note.Attributes)
		if err != nil {
			return err
		}
	}

	query := `INSERT INTO notifications (user_id, type, title, message, is_read, attributes, created_on)
	          VALUES ($1, $2, $3, $4, FALSE, $5, $6) RETURNING id, created_on`
	return r.db.QueryRowContext(ctx, query, note.UserID, note.Type, note.Title, note.Message, attrs, time.Now()).
		Scan(&note.ID, &note.CreatedOn)
}

func (r *notificationRepository) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM notifications WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, type, title, message, is_read, attributes, created_on
	          FROM notifications WHERE user_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var attrs []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &attrs, &n.CreatedOn); err != nil {
			return nil, 0, err
		}
		if len(attrs) > 0 {
			_ = json.Unmarshal(attrs, &n.Attributes)
		}
		notes = append(notes, n)
	}
	return notes, count, rows.Err()
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID int32) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, userID)
	return err
}
