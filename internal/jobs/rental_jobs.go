package jobs

import (
	"context"
	"fmt"
	"time"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/logger"
)

// ExpireUnpaidRentals cancels rentals that sat in PAYMENT_PENDING past the
// payment TTL. The renter never paid, so no ledger entries exist to reverse.
func (jr *JobRunner) ExpireUnpaidRentals() {
	jr.runWithRecovery("ExpireUnpaidRentals", func() {
		ctx := context.Background()
		cutoff := time.Now().Add(-time.Duration(jr.config.Billing.PaymentTTLMinutes) * time.Minute)

		rentals, err := jr.store.Rentals.ListPaymentPendingBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list stale payment-pending rentals", "error", err)
			return
		}

		expired := 0
		for _, rental := range rentals {
			swapped, err := jr.store.Rentals.UpdateStatus(ctx, rental.ID,
				domain.RentalStatusPaymentPending, domain.RentalStatusCancelled,
				domain.EventRentalCancelled, nil, "payment window expired")
			if err != nil {
				logger.Error("Failed to expire rental", "rental_id", rental.ID, "error", err)
				continue
			}
			if !swapped {
				// Paid or cancelled between the list and the update.
				continue
			}
			expired++

			jr.services.Notifier.Notify(ctx, rental.RenterID, "RENTAL_EXPIRED", "Rental expired",
				"The payment window elapsed and the rental was cancelled",
				map[string]string{"rental_id": fmt.Sprintf("%d", rental.ID)})
		}

		logger.Info("Expired unpaid rentals", "listed", len(rentals), "expired", expired)
	})
}

// SendHandoverReminders nudges both parties of paid rentals that have been
// waiting on handover confirmations for more than a day.
func (jr *JobRunner) SendHandoverReminders() {
	jr.runWithRecovery("SendHandoverReminders", func() {
		ctx := context.Background()
		cutoff := time.Now().Add(-24 * time.Hour)

		rentals, err := jr.store.Rentals.ListAwaitingHandoverBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list rentals awaiting handover", "error", err)
			return
		}

		for _, rental := range rentals {
			attrs := map[string]string{"rental_id": fmt.Sprintf("%d", rental.ID)}
			if !rental.RenterConfirmed {
				jr.services.Notifier.Notify(ctx, rental.RenterID, "HANDOVER_REMINDER", "Handover pending",
					"Confirm the handover once you pick up the item", attrs)
			}
			if !rental.OwnerConfirmed {
				jr.services.Notifier.Notify(ctx, rental.OwnerID, "HANDOVER_REMINDER", "Handover pending",
					"Confirm the handover once you hand over the item", attrs)
			}
		}

		logger.Info("Sent handover reminders", "rentals", len(rentals))
	})
}
