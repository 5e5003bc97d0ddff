// Package pricing computes booking quotes.  All amounts are integers in
// pence; the only rounding point is the discount, which rounds half-up.
package pricing

import (
	"math"

	"github.com/brightdays/holiday-club-booking/internal/model"
)

// Quote is the price breakdown for a booking.  Total is always
// Subtotal - Discount and therefore never exceeds Subtotal.
type Quote struct {
	SubtotalPence uint32 `json:"subtotal_pence"`
	DiscountPence uint32 `json:"discount_pence"`
	TotalPence    uint32 `json:"total_pence"`
}

// Compute returns the quote for a booking option.  For full_week and
// single_day options the subtotal is price × children; for multi_day it is
// price × selected dates × children.  discountPercent of zero means no
// promo was applied.  The function is pure and deterministic.
func Compute(optionType string, pricePerChildPence uint32, dateCount, childCount int, discountPercent uint8) Quote {
	if dateCount < 0 {
		dateCount = 0
	}
	if childCount < 0 {
		childCount = 0
	}
	var subtotal uint64
	switch optionType {
	case model.OptionMultiDay:
		subtotal = uint64(pricePerChildPence) * uint64(dateCount) * uint64(childCount)
	default: // full_week, single_day
		subtotal = uint64(pricePerChildPence) * uint64(childCount)
	}
	// Saturate rather than wrap on absurd inputs; the real bound is the
	// request validator's children/dates limits, well below this.
	if subtotal > math.MaxUint32 {
		subtotal = math.MaxUint32
	}
	discount := roundHalfUpPercent(subtotal, discountPercent)
	return Quote{
		SubtotalPence: uint32(subtotal),
		DiscountPence: uint32(discount),
		TotalPence:    uint32(subtotal - discount),
	}
}

// roundHalfUpPercent returns round(subtotal * percent / 100) using integer
// arithmetic.  A percent above 100 is clamped so the total cannot go
// negative.
func roundHalfUpPercent(subtotal uint64, percent uint8) uint64 {
	if percent == 0 {
		return 0
	}
	if percent > 100 {
		percent = 100
	}
	return (subtotal*uint64(percent) + 50) / 100
}
