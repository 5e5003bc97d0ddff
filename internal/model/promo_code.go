package model

import "time"

// PromoCode is a percentage discount code.  Codes are matched
// case-insensitively, may be scoped to a single club and may carry a usage
// cap.  TimesUsed is only ever moved by conditional updates so that a
// scarce code cannot be over-redeemed by concurrent bookings.
//
// Fields:
//  ID              – primary key identifier.
//  Code            – unique code string (stored upper-cased).
//  DiscountPercent – whole-number percentage off the subtotal.
//  ValidFrom       – start of the validity window.
//  ValidUntil      – end of the validity window.
//  MaxUses         – usage cap (nil means unlimited).
//  TimesUsed       – redemptions so far.
//  ClubID          – optional club scope (nil means any club).
//  IsActive        – whether the code can be used at all.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type PromoCode struct {
	ID              uint64    // promo_codes.id
	Code            string    // promo_codes.code
	DiscountPercent uint8     // promo_codes.discount_percent
	ValidFrom       time.Time // promo_codes.valid_from
	ValidUntil      time.Time // promo_codes.valid_until
	MaxUses         *uint32   // promo_codes.max_uses (nullable)
	TimesUsed       uint32    // promo_codes.times_used
	ClubID          *uint64   // promo_codes.club_id (nullable)
	IsActive        bool      // promo_codes.is_active
	CreatedAt       time.Time // promo_codes.created_at
	UpdatedAt       time.Time // promo_codes.updated_at
}
