package repository

import (
	"context"

	"github.com/brightdays/holiday-club-booking/internal/model"
)

// Catalog composes the per-table read repos into the single read-only
// view the lifecycle services consume.
type Catalog struct {
	clubs   *ClubRepo
	options *BookingOptionRepo
	days    *ClubDayRepo
}

// NewCatalog returns a Catalog over the given repos.
func NewCatalog(clubs *ClubRepo, options *BookingOptionRepo, days *ClubDayRepo) *Catalog {
	return &Catalog{clubs: clubs, options: options, days: days}
}

func (c *Catalog) ClubByID(ctx context.Context, id uint64) (*model.Club, error) {
	return c.clubs.ByID(ctx, id)
}

func (c *Catalog) OptionByID(ctx context.Context, id uint64) (*model.BookingOption, error) {
	return c.options.ByID(ctx, id)
}

func (c *Catalog) AvailableDays(ctx context.Context, clubID uint64) ([]model.ClubDay, error) {
	return c.days.AvailableByClub(ctx, clubID)
}

func (c *Catalog) DaysByDates(ctx context.Context, clubID uint64, dates []string) ([]model.ClubDay, error) {
	return c.days.ByClubAndDates(ctx, clubID, dates)
}
