package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/repository"
)

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, item_id, owner_id, renter_id,
	requested_start, requested_end, confirmed_start, confirmed_end,
	daily_rate_cents, total_days, subtotal_cents, platform_fee_cents,
	security_deposit_cents, delivery_fee_cents, total_cents, currency,
	commission_rate_bps, commission_cents, owner_payout_cents,
	status, renter_confirmed, owner_confirmed, renter_confirmed_at, owner_confirmed_at,
	item_received, item_returned, COALESCE(damage_report, ''), damage_deduction_cents, deposit_refund_cents,
	COALESCE(provider_order_id, ''), COALESCE(provider_payment_key, ''), COALESCE(payment_status, ''),
	COALESCE(rejection_reason, ''), created_on, updated_on`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	err := row.Scan(
		&rt.ID, &rt.ItemID, &rt.OwnerID, &rt.RenterID,
		&rt.RequestedStart, &rt.RequestedEnd, &rt.ConfirmedStart, &rt.ConfirmedEnd,
		&rt.DailyRateCents, &rt.TotalDays, &rt.SubtotalCents, &rt.PlatformFeeCents,
		&rt.SecurityDepositCents, &rt.DeliveryFeeCents, &rt.TotalCents, &rt.Currency,
		&rt.CommissionRateBps, &rt.CommissionCents, &rt.OwnerPayoutCents,
		&rt.Status, &rt.RenterConfirmed, &rt.OwnerConfirmed, &rt.RenterConfirmedAt, &rt.OwnerConfirmedAt,
		&rt.ItemReceived, &rt.ItemReturned, &rt.DamageReport, &rt.DamageDeductionCents, &rt.DepositRefundCents,
		&rt.ProviderOrderID, &rt.ProviderPaymentKey, &rt.PaymentStatus,
		&rt.RejectionReason, &rt.CreatedOn, &rt.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO rentals (item_id, owner_id, renter_id, requested_start, requested_end,
	            daily_rate_cents, total_days, subtotal_cents, platform_fee_cents,
	            security_deposit_cents, delivery_fee_cents, total_cents, currency,
	            status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	          RETURNING id, created_on, updated_on`
	now := time.Now()
	err = tx.QueryRowContext(ctx, query,
		rt.ItemID, rt.OwnerID, rt.RenterID, rt.RequestedStart, rt.RequestedEnd,
		rt.DailyRateCents, rt.TotalDays, rt.SubtotalCents, rt.PlatformFeeCents,
		rt.SecurityDepositCents, rt.DeliveryFeeCents, rt.TotalCents, rt.Currency,
		rt.Status, now, now,
	).Scan(&rt.ID, &rt.CreatedOn, &rt.UpdatedOn)
	if err != nil {
		return err
	}

	if err := appendEventTx(ctx, tx, rt.ID, domain.EventRentalRequested, &rt.RenterID, ""); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	return scanRental(r.db.QueryRowContext(ctx, query, id))
}

func (r *rentalRepository) GetByProviderOrderID(ctx context.Context, orderID string) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE provider_order_id = $1`
	return scanRental(r.db.QueryRowContext(ctx, query, orderID))
}

func (r *rentalRepository) UpdateApproval(ctx context.Context, rt *domain.Rental, actorID int32) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	query := `UPDATE rentals
	          SET status = $1, confirmed_start = $2, confirmed_end = $3,
	              provider_order_id = $4, provider_payment_key = $5, payment_status = $6,
	              updated_on = $7
	          WHERE id = $8 AND status = $9`
	res, err := tx.ExecContext(ctx, query,
		domain.RentalStatusPaymentPending, rt.ConfirmedStart, rt.ConfirmedEnd,
		rt.ProviderOrderID, rt.ProviderPaymentKey, domain.PaymentStatusPending,
		time.Now(), rt.ID, domain.RentalStatusPending,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if err := appendEventTx(ctx, tx, rt.ID, domain.EventRentalApproved, &actorID, ""); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *rentalRepository) UpdateStatus(ctx context.Context, rentalID int32, from, to domain.RentalStatus, event string, actorID *int32, details string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	query := `UPDATE rentals SET status = $1, rejection_reason = COALESCE(NULLIF($2, ''), rejection_reason), updated_on = $3
	          WHERE id = $4 AND status = $5`
	res, err := tx.ExecContext(ctx, query, to, details, time.Now(), rentalID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if err := appendEventTx(ctx, tx, rentalID, event, actorID, details); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *rentalRepository) ConfirmHandover(ctx context.Context, rentalID int32, party string, at time.Time) (repository.HandoverOutcome, error) {
	var flagCol, atCol, otherCol string
	switch party {
	case "renter":
		flagCol, atCol, otherCol = "renter_confirmed", "renter_confirmed_at", "owner_confirmed"
	case "owner":
		flagCol, atCol, otherCol = "owner_confirmed", "owner_confirmed_at", "renter_confirmed"
	default:
		return repository.HandoverOutcome{}, fmt.Errorf("unknown handover party %q", party)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return repository.HandoverOutcome{}, err
	}
	defer tx.Rollback()

	// Flag write and activation check in one statement: concurrent
	// confirmations cannot both observe "other side not yet confirmed".
	query := fmt.Sprintf(`UPDATE rentals
	          SET %s = TRUE, %s = $1,
	              status = CASE WHEN %s THEN '%s'::text ELSE status END,
	              updated_on = $1
	          WHERE id = $2 AND status = $3 AND %s = FALSE
	          RETURNING status`, flagCol, atCol, otherCol, domain.RentalStatusActive, flagCol)

	var newStatus domain.RentalStatus
	err = tx.QueryRowContext(ctx, query, at, rentalID, domain.RentalStatusAwaitingHandover).Scan(&newStatus)
	if err == sql.ErrNoRows {
		return repository.HandoverOutcome{Swapped: false}, nil
	}
	if err != nil {
		return repository.HandoverOutcome{}, err
	}

	outcome := repository.HandoverOutcome{
		Swapped:   true,
		Activated: newStatus == domain.RentalStatusActive,
	}

	if err := appendEventTx(ctx, tx, rentalID, domain.EventHandoverConfirmed, nil, party); err != nil {
		return repository.HandoverOutcome{}, err
	}
	if outcome.Activated {
		if err := appendEventTx(ctx, tx, rentalID, domain.EventRentalActivated, nil, ""); err != nil {
			return repository.HandoverOutcome{}, err
		}
	}
	return outcome, tx.Commit()
}

func (r *rentalRepository) MarkItemReceived(ctx context.Context, rentalID int32, actorID int32) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	query := `UPDATE rentals SET item_received = TRUE, updated_on = $1
	          WHERE id = $2 AND status = $3 AND item_received = FALSE`
	res, err := tx.ExecContext(ctx, query, time.Now(), rentalID, domain.RentalStatusActive)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if err := appendEventTx(ctx, tx, rentalID, domain.EventItemReceived, &actorID, ""); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *rentalRepository) MarkItemReturned(ctx context.Context, rentalID int32, actorID int32, damageReport string, damageDeductionCents int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	query := `UPDATE rentals SET item_returned = TRUE, damage_report = $1, damage_deduction_cents = $2, updated_on = $3
	          WHERE id = $4 AND status = $5 AND item_returned = FALSE`
	res, err := tx.ExecContext(ctx, query, damageReport, damageDeductionCents, time.Now(), rentalID, domain.RentalStatusActive)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if err := appendEventTx(ctx, tx, rentalID, domain.EventItemReturned, &actorID, damageReport); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *rentalRepository) ListByRenter(ctx context.Context, renterID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	return r.list(ctx, "renter_id", renterID, status, page, pageSize)
}

func (r *rentalRepository) ListByOwner(ctx context.Context, ownerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	return r.list(ctx, "owner_id", ownerID, status, page, pageSize)
}

func (r *rentalRepository) list(ctx context.Context, partyCol string, userID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE ` + partyCol + ` = $1`

	args := []interface{}{userID}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, 0, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, count, rows.Err()
}

func (r *rentalRepository) ListPaymentPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Rental, error) {
	return r.listByStatusBefore(ctx, domain.RentalStatusPaymentPending, cutoff)
}

func (r *rentalRepository) ListAwaitingHandoverBefore(ctx context.Context, cutoff time.Time) ([]domain.Rental, error) {
	return r.listByStatusBefore(ctx, domain.RentalStatusAwaitingHandover, cutoff)
}

func (r *rentalRepository) listByStatusBefore(ctx context.Context, status domain.RentalStatus, cutoff time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE status = $1 AND updated_on < $2 ORDER BY updated_on ASC`
	rows, err := r.db.QueryContext(ctx, query, status, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}
