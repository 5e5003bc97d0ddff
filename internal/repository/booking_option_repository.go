package repository

import (
	"context"
	"database/sql"

	"github.com/brightdays/holiday-club-booking/internal/model"
)

// BookingOptionRepo provides read access to booking_options.
type BookingOptionRepo struct {
	db *sql.DB
}

// NewBookingOptionRepo returns a new BookingOptionRepo bound to the given database.
func NewBookingOptionRepo(db *sql.DB) *BookingOptionRepo { return &BookingOptionRepo{db: db} }

const optionColumns = `id, club_id, name, option_type, time_slot,
	price_per_child_pence, is_active, created_at, updated_at`

// ByID returns an option by primary key, or nil when absent.
func (r *BookingOptionRepo) ByID(ctx context.Context, id uint64) (*model.BookingOption, error) {
	const q = `SELECT ` + optionColumns + ` FROM booking_options WHERE id = ?`
	var o model.BookingOption
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&o.ID, &o.ClubID, &o.Name, &o.OptionType, &o.TimeSlot,
		&o.PricePerChildPence, &o.IsActive, &o.CreatedAt, &o.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ActiveByClub returns a club's purchasable options.
func (r *BookingOptionRepo) ActiveByClub(ctx context.Context, clubID uint64) ([]model.BookingOption, error) {
	const q = `SELECT ` + optionColumns + ` FROM booking_options
	           WHERE club_id = ? AND is_active = 1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.BookingOption
	for rows.Next() {
		var o model.BookingOption
		if err := rows.Scan(
			&o.ID, &o.ClubID, &o.Name, &o.OptionType, &o.TimeSlot,
			&o.PricePerChildPence, &o.IsActive, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
