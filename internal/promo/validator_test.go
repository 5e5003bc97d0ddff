package promo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brightdays/holiday-club-booking/internal/model"
)

func uptr32(v uint32) *uint32 { return &v }
func uptr64(v uint64) *uint64 { return &v }

func basePromo() *model.PromoCode {
	return &model.PromoCode{
		ID:              1,
		Code:            "SUMMER10",
		DiscountPercent: 10,
		ValidFrom:       time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:      time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC),
		IsActive:        true,
	}
}

func TestValidate(t *testing.T) {
	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)

	t.Run("valid code passes", func(t *testing.T) {
		assert.NoError(t, Validate(basePromo(), 7, now))
	})

	t.Run("missing record is not found", func(t *testing.T) {
		assert.ErrorIs(t, Validate(nil, 7, now), ErrNotFound)
	})

	t.Run("inactive code", func(t *testing.T) {
		p := basePromo()
		p.IsActive = false
		assert.ErrorIs(t, Validate(p, 7, now), ErrInactive)
	})

	t.Run("before window opens", func(t *testing.T) {
		p := basePromo()
		early := p.ValidFrom.Add(-time.Hour)
		assert.ErrorIs(t, Validate(p, 7, early), ErrOutOfWindow)
	})

	t.Run("past valid_until", func(t *testing.T) {
		p := basePromo()
		late := p.ValidUntil.Add(time.Hour)
		assert.ErrorIs(t, Validate(p, 7, late), ErrOutOfWindow)
	})

	t.Run("usage exhausted", func(t *testing.T) {
		p := basePromo()
		p.MaxUses = uptr32(50)
		p.TimesUsed = 50
		assert.ErrorIs(t, Validate(p, 7, now), ErrUsageExhausted)
	})

	t.Run("usage below cap passes", func(t *testing.T) {
		p := basePromo()
		p.MaxUses = uptr32(50)
		p.TimesUsed = 49
		assert.NoError(t, Validate(p, 7, now))
	})

	t.Run("scoped to a different club", func(t *testing.T) {
		p := basePromo()
		p.ClubID = uptr64(3)
		assert.ErrorIs(t, Validate(p, 7, now), ErrClubMismatch)
	})

	t.Run("scoped to the booking club passes", func(t *testing.T) {
		p := basePromo()
		p.ClubID = uptr64(7)
		assert.NoError(t, Validate(p, 7, now))
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "SUMMER10", Normalize("  summer10 "))
	assert.Equal(t, "SUMMER10", Normalize("Summer10"))
	assert.Equal(t, "", Normalize("   "))
}
