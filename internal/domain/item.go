package domain

import "time"

type ItemStatus string

const (
	ItemStatusAvailable   ItemStatus = "AVAILABLE"
	ItemStatusRented      ItemStatus = "RENTED"
	ItemStatusUnavailable ItemStatus = "UNAVAILABLE"
)

// Item is the narrow view of a listed item the engine needs: ownership and
// the price inputs captured into the rental's pricing snapshot. Catalog
// concerns (images, categories, location) live outside the engine.
type Item struct {
	ID                   int32      `json:"id"`
	OwnerID              int32      `json:"owner_id"`
	Name                 string     `json:"name"`
	DailyRateCents       int64      `json:"daily_rate_cents"`
	SecurityDepositCents int64      `json:"security_deposit_cents"`
	DeliveryFeeCents     int64      `json:"delivery_fee_cents"`
	Currency             string     `json:"currency"`
	Status               ItemStatus `json:"status"`
	CreatedOn            time.Time  `json:"created_on"`
	UpdatedOn            time.Time  `json:"updated_on"`
}
