package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/brightdays/holiday-club-booking/internal/booking"
	"github.com/brightdays/holiday-club-booking/internal/model"
)

// ClubDayRepo provides access to club_days, including the conditional
// capacity counters that make concurrent checkouts safe.
type ClubDayRepo struct {
	db *sql.DB
}

// NewClubDayRepo returns a new ClubDayRepo bound to the given database.
func NewClubDayRepo(db *sql.DB) *ClubDayRepo { return &ClubDayRepo{db: db} }

const clubDayColumns = `id, club_id, date, morning_capacity, afternoon_capacity,
	morning_booked, afternoon_booked, is_available, created_at, updated_at`

func scanClubDays(rows *sql.Rows) ([]model.ClubDay, error) {
	var out []model.ClubDay
	for rows.Next() {
		var d model.ClubDay
		if err := rows.Scan(
			&d.ID, &d.ClubID, &d.Date, &d.MorningCapacity, &d.AfternoonCapacity,
			&d.MorningBooked, &d.AfternoonBooked, &d.IsAvailable, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// AvailableByClub returns every bookable day for a club ordered by date.
func (r *ClubDayRepo) AvailableByClub(ctx context.Context, clubID uint64) ([]model.ClubDay, error) {
	const q = `SELECT ` + clubDayColumns + ` FROM club_days
	           WHERE club_id = ? AND is_available = 1 ORDER BY date`
	rows, err := r.db.QueryContext(ctx, q, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClubDays(rows)
}

// ByClubAndDates returns the bookable days matching the given
// "2006-01-02" dates.  Missing dates are simply absent from the result.
func (r *ClubDayRepo) ByClubAndDates(ctx context.Context, clubID uint64, dates []string) ([]model.ClubDay, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(dates)), ",")
	q := `SELECT ` + clubDayColumns + ` FROM club_days
	      WHERE club_id = ? AND is_available = 1 AND date IN (` + placeholders + `) ORDER BY date`
	args := make([]interface{}, 0, len(dates)+1)
	args = append(args, clubID)
	for _, d := range dates {
		args = append(args, d)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClubDays(rows)
}

// reserveCapacityTx moves the booked counters up by n children on each
// day, slot-aware, using conditional updates with a capacity ceiling.  A
// day whose update matches no row is full (or gone), which fails the
// whole reservation.
func reserveCapacityTx(ctx context.Context, tx *sql.Tx, dayIDs []uint64, slot string, n int) error {
	var q string
	switch slot {
	case model.SlotMorning:
		q = `UPDATE club_days SET morning_booked = morning_booked + ?
		     WHERE id = ? AND is_available = 1 AND morning_booked + ? <= morning_capacity`
	case model.SlotAfternoon:
		q = `UPDATE club_days SET afternoon_booked = afternoon_booked + ?
		     WHERE id = ? AND is_available = 1 AND afternoon_booked + ? <= afternoon_capacity`
	default: // full_day holds a place in both halves
		q = `UPDATE club_days
		     SET morning_booked = morning_booked + ?, afternoon_booked = afternoon_booked + ?
		     WHERE id = ? AND is_available = 1
		       AND morning_booked + ? <= morning_capacity
		       AND afternoon_booked + ? <= afternoon_capacity`
	}
	for _, id := range dayIDs {
		var res sql.Result
		var err error
		if slot == model.SlotFullDay {
			res, err = tx.ExecContext(ctx, q, n, n, id, n, n)
		} else {
			res, err = tx.ExecContext(ctx, q, n, id, n)
		}
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: club day %d", booking.ErrCapacityExhausted, id)
		}
	}
	return nil
}

// releaseCapacityTx hands booked places back, flooring at zero so a
// double release can never underflow the counters.
func releaseCapacityTx(ctx context.Context, tx *sql.Tx, dayIDs []uint64, slot string, n int) error {
	var q string
	switch slot {
	case model.SlotMorning:
		q = `UPDATE club_days SET morning_booked = GREATEST(CAST(morning_booked AS SIGNED) - ?, 0) WHERE id = ?`
	case model.SlotAfternoon:
		q = `UPDATE club_days SET afternoon_booked = GREATEST(CAST(afternoon_booked AS SIGNED) - ?, 0) WHERE id = ?`
	default:
		q = `UPDATE club_days
		     SET morning_booked = GREATEST(CAST(morning_booked AS SIGNED) - ?, 0),
		         afternoon_booked = GREATEST(CAST(afternoon_booked AS SIGNED) - ?, 0)
		     WHERE id = ?`
	}
	for _, id := range dayIDs {
		var err error
		if slot == model.SlotFullDay {
			_, err = tx.ExecContext(ctx, q, n, n, id)
		} else {
			_, err = tx.ExecContext(ctx, q, n, id)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
