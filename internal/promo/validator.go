// Package promo decides whether a promo code may be applied to a booking.
// The checks here are pure; fetching the record and moving the usage
// counter live in the repository layer so the counter can be updated with
// a conditional statement.
package promo

import (
	"errors"
	"strings"
	"time"

	"github.com/brightdays/holiday-club-booking/internal/model"
)

// Typed rejections.  Each maps to a stable error code on the validation
// endpoint so clients can show a specific message.
var (
	ErrNotFound       = errors.New("promo code not found")
	ErrInactive       = errors.New("promo code is inactive")
	ErrOutOfWindow    = errors.New("promo code is outside its validity window")
	ErrUsageExhausted = errors.New("promo code has reached its usage limit")
	ErrClubMismatch   = errors.New("promo code is not valid for this club")
)

// Normalize upper-cases and trims a code for case-insensitive comparison.
// Codes are stored upper-cased, so normalized input matches storage.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks a loaded promo code against a club at a given instant.
// It returns nil when the code may be applied, or one of the typed
// rejections above.  A nil code means the lookup found nothing.
func Validate(p *model.PromoCode, clubID uint64, now time.Time) error {
	if p == nil {
		return ErrNotFound
	}
	if !p.IsActive {
		return ErrInactive
	}
	if now.Before(p.ValidFrom) || now.After(p.ValidUntil) {
		return ErrOutOfWindow
	}
	if p.MaxUses != nil && p.TimesUsed >= *p.MaxUses {
		return ErrUsageExhausted
	}
	if p.ClubID != nil && *p.ClubID != clubID {
		return ErrClubMismatch
	}
	return nil
}
