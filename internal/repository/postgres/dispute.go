package postgres

import (
	"context"
	"database/sql"
	"time"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/repository"
)

type disputeRepository struct {
	db *sql.DB
}

func NewDisputeRepository(db *sql.DB) repository.DisputeRepository {
	return &disputeRepository{db: db}
}

const disputeColumns = `id, rental_id, reported_by, reported_against, reason, COALESCE(evidence, ''),
	status, COALESCE(decision, ''), refund_amount_cents, owner_compensation_cents,
	resolved_by, resolved_at, created_on, updated_on`

func scanDispute(row rowScanner) (*domain.Dispute, error) {
	d := &domain.Dispute{}
	err := row.Scan(
		&d.ID, &d.RentalID, &d.ReportedBy, &d.ReportedAgainst, &d.Reason, &d.Evidence,
		&d.Status, &d.Decision, &d.RefundAmountCents, &d.OwnerCompensationCents,
		&d.ResolvedBy, &d.ResolvedAt, &d.CreatedOn, &d.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *disputeRepository) Create(ctx context.Context, d *domain.Dispute) error {
	query := `INSERT INTO disputes (rental_id, reported_by, reported_against, reason, evidence, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id, created_on, updated_on`
	return r.db.QueryRowContext(ctx, query,
		d.RentalID, d.ReportedBy, d.ReportedAgainst, d.Reason, d.Evidence, d.Status, time.Now(),
	).Scan(&d.ID, &d.CreatedOn, &d.UpdatedOn)
}

func (r *disputeRepository) GetByID(ctx context.Context, id int32) (*domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE id = $1`
	return scanDispute(r.db.QueryRowContext(ctx, query, id))
}

func (r *disputeRepository) GetOpenByRentalID(ctx context.Context, rentalID int32) (*domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE rental_id = $1 AND status IN ($2, $3) ORDER BY id DESC LIMIT 1`
	return scanDispute(r.db.QueryRowContext(ctx, query, rentalID, domain.DisputeStatusOpen, domain.DisputeStatusInvestigating))
}

func (r *disputeRepository) ListOpen(ctx context.Context, page, pageSize int32) ([]domain.Dispute, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	countQuery := `SELECT count(*) FROM disputes WHERE status IN ($1, $2)`
	if err := r.db.QueryRowContext(ctx, countQuery, domain.DisputeStatusOpen, domain.DisputeStatusInvestigating).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE status IN ($1, $2) ORDER BY created_on ASC LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, query, domain.DisputeStatusOpen, domain.DisputeStatusInvestigating, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var disputes []domain.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, 0, err
		}
		disputes = append(disputes, *d)
	}
	return disputes, count, rows.Err()
}
