package jobs

import (
	"context"
	"fmt"

	"gearloop-backend/internal/logger"
)

// ProcessPayoutRequests settles pending withdrawal entries. The actual bank
// transfer happens out of band; settling the entry here records that the
// money left the platform.
func (jr *JobRunner) ProcessPayoutRequests() {
	jr.runWithRecovery("ProcessPayoutRequests", func() {
		ctx := context.Background()

		pending, err := jr.store.Ledger.ListPendingWithdrawals(ctx)
		if err != nil {
			logger.Error("Failed to list pending withdrawals", "error", err)
			return
		}

		settled := 0
		for _, txn := range pending {
			if err := jr.store.Ledger.CompleteWithdrawal(ctx, txn.ID); err != nil {
				logger.Error("Failed to settle withdrawal",
					"transaction_id", txn.ID, "user_id", txn.UserID, "error", err)
				continue
			}
			settled++

			jr.services.Notifier.Notify(ctx, txn.UserID, "PAYOUT_SENT", "Payout sent",
				fmt.Sprintf("Your payout of %d %s is on its way", -txn.AmountCents, txn.Currency),
				map[string]string{"transaction_id": fmt.Sprintf("%d", txn.ID)})
		}

		logger.Info("Processed payout requests", "pending", len(pending), "settled", settled)
	})
}
