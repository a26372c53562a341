package postgres

import (
	"context"
	"database/sql"
	"time"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/repository"
)

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

// insertEntriesTx writes one posting group inside an open transaction. Any
// failed insert aborts the whole group.
func insertEntriesTx(ctx context.Context, tx *sql.Tx, groupID string, entries []domain.TransactionIntent) error {
	query := `INSERT INTO wallet_transactions
	            (user_id, type, amount_cents, currency, related_rental_id, group_id, availability_status, status, description, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	now := time.Now()
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, query,
			e.UserID, e.Type, e.AmountCents, e.Currency, e.RelatedRentalID,
			groupID, e.Availability, e.Status, e.Description, now,
		); err != nil {
			return err
		}
	}
	return nil
}

// Advisory lock class for withdrawal posting, keyed per user.
const withdrawalLockClass = 1

func (r *ledgerRepository) PostWithdrawal(ctx context.Context, userID int32, groupID string, entry domain.TransactionIntent) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// Serialize withdrawal posting per user: two concurrent requests must
	// not both read a balance that covers them and together overdraw it.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, withdrawalLockClass, userID); err != nil {
		return false, err
	}

	var available int64
	balance := `SELECT COALESCE(SUM(CASE WHEN availability_status = 'AVAILABLE' AND status <> 'failed' AND type <> 'RENTAL_PAYMENT' THEN amount_cents ELSE 0 END), 0)
	            FROM wallet_transactions WHERE user_id = $1`
	if err := tx.QueryRowContext(ctx, balance, userID).Scan(&available); err != nil {
		return false, err
	}
	if -entry.AmountCents > available {
		return false, nil
	}

	if err := insertEntriesTx(ctx, tx, groupID, []domain.TransactionIntent{entry}); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *ledgerRepository) PostPaymentSuccess(ctx context.Context, rt *domain.Rental, groupID string, entries []domain.TransactionIntent) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// The status CAS is the idempotency gate: a redelivered success event
	// misses it and posts nothing.
	query := `UPDATE rentals
	          SET status = $1, payment_status = $2,
	              commission_rate_bps = $3, commission_cents = $4, owner_payout_cents = $5,
	              renter_confirmed = FALSE, owner_confirmed = FALSE,
	              renter_confirmed_at = NULL, owner_confirmed_at = NULL,
	              updated_on = $6
	          WHERE id = $7 AND status = $8`
	res, err := tx.ExecContext(ctx, query,
		domain.RentalStatusAwaitingHandover, domain.PaymentStatusPaid,
		rt.CommissionRateBps, rt.CommissionCents, rt.OwnerPayoutCents,
		time.Now(), rt.ID, domain.RentalStatusPaymentPending,
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

	if err := insertEntriesTx(ctx, tx, groupID, entries); err != nil {
		return false, err
	}
	if err := appendEventTx(ctx, tx, rt.ID, domain.EventPaymentSucceeded, nil, groupID); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *ledgerRepository) PostCompletion(ctx context.Context, rt *domain.Rental, groupID string, entries []domain.TransactionIntent, actorID int32) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	query := `UPDATE rentals
	          SET status = $1, deposit_refund_cents = $2, updated_on = $3
	          WHERE id = $4 AND status = $5 AND item_received AND item_returned`
	res, err := tx.ExecContext(ctx, query,
		domain.RentalStatusCompleted, rt.DepositRefundCents, time.Now(),
		rt.ID, domain.RentalStatusActive,
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

	// Promote the escrowed income entry; it is flipped, never re-created.
	promote := `UPDATE wallet_transactions SET availability_status = $1
	            WHERE related_rental_id = $2 AND type = $3 AND availability_status = $4`
	if _, err := tx.ExecContext(ctx, promote,
		domain.AvailabilityAvailable, rt.ID, domain.TransactionTypeRentalIncome, domain.AvailabilityPending,
	); err != nil {
		return false, err
	}

	if err := insertEntriesTx(ctx, tx, groupID, entries); err != nil {
		return false, err
	}

	stats := `UPDATE users SET completed_rentals = completed_rentals + 1 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, stats, rt.OwnerID); err != nil {
		return false, err
	}

	if err := appendEventTx(ctx, tx, rt.ID, domain.EventRentalCompleted, &actorID, groupID); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *ledgerRepository) PostResolution(ctx context.Context, rt *domain.Rental, dispute *domain.Dispute, to domain.RentalStatus, groupID string, entries []domain.TransactionIntent) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	query := `UPDATE rentals SET status = $1, updated_on = $2 WHERE id = $3 AND status = $4`
	res, err := tx.ExecContext(ctx, query, to, time.Now(), rt.ID, domain.RentalStatusDisputed)
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

	// The escrowed income entry is superseded by the resolution split.
	void := `UPDATE wallet_transactions SET status = $1
	         WHERE related_rental_id = $2 AND type = $3 AND availability_status = $4 AND status = $5`
	if _, err := tx.ExecContext(ctx, void,
		domain.TransactionStatusFailed, rt.ID, domain.TransactionTypeRentalIncome,
		domain.AvailabilityPending, domain.TransactionStatusCompleted,
	); err != nil {
		return false, err
	}

	if err := insertEntriesTx(ctx, tx, groupID, entries); err != nil {
		return false, err
	}

	resolve := `UPDATE disputes
	            SET status = $1, decision = $2, refund_amount_cents = $3, owner_compensation_cents = $4,
	                resolved_by = $5, resolved_at = $6, updated_on = $6
	            WHERE id = $7`
	if _, err := tx.ExecContext(ctx, resolve,
		domain.DisputeStatusResolved, dispute.Decision, dispute.RefundAmountCents, dispute.OwnerCompensationCents,
		dispute.ResolvedBy, time.Now(), dispute.ID,
	); err != nil {
		return false, err
	}

	if err := appendEventTx(ctx, tx, rt.ID, domain.EventDisputeResolved, dispute.ResolvedBy, groupID); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *ledgerRepository) PromotePendingIncome(ctx context.Context, rentalID int32) (bool, error) {
	query := `UPDATE wallet_transactions SET availability_status = $1
	          WHERE related_rental_id = $2 AND type = $3 AND availability_status = $4`
	res, err := r.db.ExecContext(ctx, query,
		domain.AvailabilityAvailable, rentalID, domain.TransactionTypeRentalIncome, domain.AvailabilityPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ledgerRepository) GetBalance(ctx context.Context, userID int32) (*domain.WalletBalance, error) {
	// Rental payments are funded through the gateway, not from wallet
	// balance; they are excluded from the fold but kept in the ledger for
	// the closed-loop accounting identity.
	query := `SELECT
	            COALESCE(SUM(CASE WHEN availability_status = 'AVAILABLE' AND status <> 'failed' AND type <> 'RENTAL_PAYMENT' THEN amount_cents ELSE 0 END), 0),
	            COALESCE(SUM(CASE WHEN availability_status = 'PENDING' AND status = 'completed' AND type <> 'RENTAL_PAYMENT' THEN amount_cents ELSE 0 END), 0),
	            COALESCE(-SUM(CASE WHEN status = 'pending' AND type = 'WITHDRAWAL_REQUEST' THEN amount_cents ELSE 0 END), 0)
	          FROM wallet_transactions WHERE user_id = $1`

	b := &domain.WalletBalance{UserID: userID}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&b.AvailableCents, &b.PendingCents, &b.LockedCents)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.WalletTransaction, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	countQuery := `SELECT count(*) FROM wallet_transactions WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, type, amount_cents, currency, related_rental_id, group_id, availability_status, status, COALESCE(description, ''), created_on
	          FROM wallet_transactions WHERE user_id = $1 ORDER BY created_on DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txs []domain.WalletTransaction
	for rows.Next() {
		var wt domain.WalletTransaction
		if err := rows.Scan(&wt.ID, &wt.UserID, &wt.Type, &wt.AmountCents, &wt.Currency, &wt.RelatedRentalID,
			&wt.GroupID, &wt.Availability, &wt.Status, &wt.Description, &wt.CreatedOn); err != nil {
			return nil, 0, err
		}
		txs = append(txs, wt)
	}
	return txs, count, rows.Err()
}

func (r *ledgerRepository) ListPendingWithdrawals(ctx context.Context) ([]domain.WalletTransaction, error) {
	query := `SELECT id, user_id, type, amount_cents, currency, related_rental_id, group_id, availability_status, status, COALESCE(description, ''), created_on
	          FROM wallet_transactions WHERE type = $1 AND status = $2 ORDER BY created_on ASC`
	rows, err := r.db.QueryContext(ctx, query, domain.TransactionTypeWithdrawalRequest, domain.TransactionStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.WalletTransaction
	for rows.Next() {
		var wt domain.WalletTransaction
		if err := rows.Scan(&wt.ID, &wt.UserID, &wt.Type, &wt.AmountCents, &wt.Currency, &wt.RelatedRentalID,
			&wt.GroupID, &wt.Availability, &wt.Status, &wt.Description, &wt.CreatedOn); err != nil {
			return nil, err
		}
		txs = append(txs, wt)
	}
	return txs, rows.Err()
}

func (r *ledgerRepository) CompleteWithdrawal(ctx context.Context, transactionID int32) error {
	query := `UPDATE wallet_transactions SET status = $1 WHERE id = $2 AND status = $3`
	_, err := r.db.ExecContext(ctx, query, domain.TransactionStatusCompleted, transactionID, domain.TransactionStatusPending)
	return err
}
