package domain

// CommissionTier is one rate bracket of the commission table. Rates are in
// basis points so the table stays integer-exact.
type CommissionTier struct {
	Name       string `json:"name" yaml:"name"`
	MinRentals int32  `json:"min_rentals" yaml:"min_rentals"`
	RateBps    int32  `json:"rate_bps" yaml:"rate_bps"`
}

// DefaultCommissionTiers is the built-in rate table, used when the config
// does not override it. Higher completed-rental counts never pay a higher
// rate.
var DefaultCommissionTiers = []CommissionTier{
	{Name: "standard", MinRentals: 0, RateBps: 1000},
	{Name: "silver", MinRentals: 10, RateBps: 800},
	{Name: "gold", MinRentals: 50, RateBps: 600},
	{Name: "platinum", MinRentals: 200, RateBps: 500},
}
