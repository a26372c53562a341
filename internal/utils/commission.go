package utils

import (
	"fmt"

	"gearloop-backend/internal/domain"
)

// CommissionResult is the payout split for one rental at the owner's current
// tier.
type CommissionResult struct {
	TierName         string
	RateBps          int32
	CommissionCents  int64
	OwnerPayoutCents int64
}

// ResolveTier selects the applicable commission tier: the tier with the
// highest min_rentals threshold not exceeding the owner's completed-rental
// count. Ties on the threshold resolve to the later (higher) tier.
func ResolveTier(tiers []domain.CommissionTier, completedRentals int32) (domain.CommissionTier, error) {
	if len(tiers) == 0 {
		return domain.CommissionTier{}, fmt.Errorf("commission tier table is empty")
	}

	found := false
	var best domain.CommissionTier
	for _, t := range tiers {
		if t.MinRentals > completedRentals {
			continue
		}
		if !found || t.MinRentals >= best.MinRentals {
			best = t
			found = true
		}
	}
	if !found {
		return domain.CommissionTier{}, fmt.Errorf("no commission tier matches %d completed rentals", completedRentals)
	}
	return best, nil
}

// CalculateCommission computes the commission and owner payout for a rental
// subtotal. Pure and deterministic: same inputs, same split. Rounding is
// half-up and applied once, to the final commission amount.
func CalculateCommission(subtotalCents int64, ownerCompletedRentals int32, tiers []domain.CommissionTier) (CommissionResult, error) {
	if subtotalCents < 0 {
		return CommissionResult{}, fmt.Errorf("subtotal must not be negative, got %d", subtotalCents)
	}

	tier, err := ResolveTier(tiers, ownerCompletedRentals)
	if err != nil {
		return CommissionResult{}, err
	}

	commission := RoundHalfUpBps(subtotalCents, tier.RateBps)
	return CommissionResult{
		TierName:         tier.Name,
		RateBps:          tier.RateBps,
		CommissionCents:  commission,
		OwnerPayoutCents: subtotalCents - commission,
	}, nil
}
