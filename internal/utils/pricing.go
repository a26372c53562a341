package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gearloop-backend/internal/domain"
)

// Date represents a calendar date
type Date struct {
	Year  int
	Month int
	Day   int
}

// PricingSnapshot is the immutable price breakdown captured on a rental at
// request time. Total is derived from the parts, never accepted from input.
type PricingSnapshot struct {
	DailyRateCents       int64
	TotalDays            int32
	SubtotalCents        int64
	PlatformFeeCents     int64
	SecurityDepositCents int64
	DeliveryFeeCents     int64
	TotalCents           int64
	Currency             string
}

// ParseDate converts a yyyy-mm-dd formatted string into a Date struct
func ParseDate(dateStr string) (Date, error) {
	parts := strings.Split(dateStr, "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd")
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Date{}, fmt.Errorf("invalid year: %v", err)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Date{}, fmt.Errorf("invalid month: %v", err)
	}

	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return Date{}, fmt.Errorf("invalid day: %v", err)
	}

	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("month must be between 1 and 12")
	}

	if day < 1 || day > 31 {
		return Date{}, fmt.Errorf("day must be between 1 and 31")
	}

	return Date{Year: year, Month: month, Day: day}, nil
}

func (d Date) toTime() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// RentalDays returns the chargeable number of days between two dates, both
// ends included. Start and end on the same day is one chargeable day.
func RentalDays(startDate, endDate Date) (int32, error) {
	start := startDate.toTime()
	end := endDate.toTime()
	if end.Before(start) {
		return 0, fmt.Errorf("end date must be >= start date")
	}
	return int32(end.Sub(start).Hours()/24) + 1, nil
}

// RoundHalfUpBps applies a basis-point rate to an amount, rounding the final
// figure to the nearest minor currency unit with half-up rounding. Rounding
// happens once, here, never on intermediate terms.
func RoundHalfUpBps(amountCents int64, rateBps int32) int64 {
	if amountCents <= 0 || rateBps <= 0 {
		return 0
	}
	return (amountCents*int64(rateBps) + 5000) / 10000
}

// ComputeQuote builds the pricing snapshot for renting item over the given
// date range. platformFeeBps is the renter-side service fee rate.
func ComputeQuote(item *domain.Item, startDateStr, endDateStr string, platformFeeBps int32) (PricingSnapshot, error) {
	start, err := ParseDate(startDateStr)
	if err != nil {
		return PricingSnapshot{}, fmt.Errorf("invalid start date: %v", err)
	}

	end, err := ParseDate(endDateStr)
	if err != nil {
		return PricingSnapshot{}, fmt.Errorf("invalid end date: %v", err)
	}

	days, err := RentalDays(start, end)
	if err != nil {
		return PricingSnapshot{}, err
	}

	subtotal := item.DailyRateCents * int64(days)
	fee := RoundHalfUpBps(subtotal, platformFeeBps)

	snap := PricingSnapshot{
		DailyRateCents:       item.DailyRateCents,
		TotalDays:            days,
		SubtotalCents:        subtotal,
		PlatformFeeCents:     fee,
		SecurityDepositCents: item.SecurityDepositCents,
		DeliveryFeeCents:     item.DeliveryFeeCents,
		Currency:             item.Currency,
	}
	snap.TotalCents = snap.SubtotalCents + snap.PlatformFeeCents + snap.DeliveryFeeCents + snap.SecurityDepositCents
	return snap, nil
}
