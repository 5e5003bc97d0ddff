package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/brightdays/holiday-club-booking/internal/booking"
	"github.com/brightdays/holiday-club-booking/internal/model"
)

// BookingRepo owns the bookings, booking_days and children tables.  It
// implements the lifecycle store: multi-step operations run inside a
// transaction here so the services never observe partial writes, and the
// state transitions are conditional updates so racing callers settle
// deterministically.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for callers that need to open their
// own transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, reference, club_id, booking_option_id, parent_name, parent_email,
	parent_phone, num_children, selected_dates, reserved_day_ids, subtotal_pence, discount_pence,
	total_pence, promo_code_id, status, stripe_checkout_session_id, stripe_payment_intent_id,
	created_at, updated_at`

func scanBooking(scan func(dest ...interface{}) error) (*model.Booking, error) {
	var b model.Booking
	var dates, reserved sql.NullString
	var promoID sql.NullInt64
	var sessionID, intentID sql.NullString
	err := scan(
		&b.ID, &b.Reference, &b.ClubID, &b.BookingOptionID, &b.ParentName, &b.ParentEmail,
		&b.ParentPhone, &b.NumChildren, &dates, &reserved, &b.SubtotalPence, &b.DiscountPence,
		&b.TotalPence, &promoID, &b.Status, &sessionID, &intentID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if dates.Valid && strings.TrimSpace(dates.String) != "" {
		if err := json.Unmarshal([]byte(dates.String), &b.SelectedDates); err != nil {
			return nil, err
		}
	}
	if reserved.Valid && strings.TrimSpace(reserved.String) != "" {
		if err := json.Unmarshal([]byte(reserved.String), &b.ReservedDayIDs); err != nil {
			return nil, err
		}
	}
	if promoID.Valid {
		id := uint64(promoID.Int64)
		b.PromoCodeID = &id
	}
	if sessionID.Valid {
		s := sessionID.String
		b.StripeCheckoutSessionID = &s
	}
	if intentID.Valid {
		s := intentID.String
		b.StripePaymentIntentID = &s
	}
	return &b, nil
}

func encodeDates(dates []string) (interface{}, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(dates)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func encodeDayIDs(ids []uint64) (interface{}, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Create inserts a pending booking, reserves capacity on the selected
// days, consumes the promo code if attached, then opens the checkout
// session via open and persists its id.  Everything happens in one
// transaction; a failure at any step (the gateway included) rolls the
// whole reservation back, so a gateway outage cannot strand pending rows
// or leak capacity.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking, dayIDs []uint64, open booking.SessionOpener) error {
	option, err := r.slotForOption(ctx, b.BookingOptionID)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	dates, err := encodeDates(b.SelectedDates)
	if err != nil {
		return err
	}
	reserved, err := encodeDayIDs(dayIDs)
	if err != nil {
		return err
	}
	var promoID interface{}
	if b.PromoCodeID != nil {
		promoID = *b.PromoCodeID
	}
	const ins = `INSERT INTO bookings
	             (reference, club_id, booking_option_id, parent_name, parent_email, parent_phone,
	              num_children, selected_dates, reserved_day_ids, subtotal_pence, discount_pence,
	              total_pence, promo_code_id, status)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins,
		b.Reference, b.ClubID, b.BookingOptionID, b.ParentName, b.ParentEmail, b.ParentPhone,
		b.NumChildren, dates, reserved, b.SubtotalPence, b.DiscountPence, b.TotalPence,
		promoID, model.BookingPending,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Status = model.BookingPending

	if err := reserveCapacityTx(ctx, tx, dayIDs, option, int(b.NumChildren)); err != nil {
		return err
	}
	if b.PromoCodeID != nil {
		if err := consumePromoTx(ctx, tx, *b.PromoCodeID); err != nil {
			return err
		}
	}

	sessionID, err := open(b)
	if err != nil {
		return err
	}
	const upd = `UPDATE bookings SET stripe_checkout_session_id = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, sessionID, b.ID); err != nil {
		return err
	}
	b.StripeCheckoutSessionID = &sessionID

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Restore inserts a booking row as-is, including its session id.  Used
// only when rebuilding a lost row from checkout session metadata.
func (r *BookingRepo) Restore(ctx context.Context, b *model.Booking) error {
	dates, err := encodeDates(b.SelectedDates)
	if err != nil {
		return err
	}
	reserved, err := encodeDayIDs(b.ReservedDayIDs)
	if err != nil {
		return err
	}
	var promoID interface{}
	if b.PromoCodeID != nil {
		promoID = *b.PromoCodeID
	}
	var sessionID interface{}
	if b.StripeCheckoutSessionID != nil {
		sessionID = *b.StripeCheckoutSessionID
	}
	const q = `INSERT INTO bookings
	           (reference, club_id, booking_option_id, parent_name, parent_email, parent_phone,
	            num_children, selected_dates, reserved_day_ids, subtotal_pence, discount_pence,
	            total_pence, promo_code_id, status, stripe_checkout_session_id)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		b.Reference, b.ClubID, b.BookingOptionID, b.ParentName, b.ParentEmail, b.ParentPhone,
		b.NumChildren, dates, reserved, b.SubtotalPence, b.DiscountPence, b.TotalPence,
		promoID, model.BookingPending, sessionID,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// ByID returns a booking by primary key, or nil when absent.
func (r *BookingRepo) ByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return scanBooking(r.db.QueryRowContext(ctx, q, id).Scan)
}

// ByReference returns a booking by its public reference, or nil.
func (r *BookingRepo) ByReference(ctx context.Context, reference string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = ?`
	return scanBooking(r.db.QueryRowContext(ctx, q, reference).Scan)
}

// BySessionID returns the booking for a checkout session, or nil.
func (r *BookingRepo) BySessionID(ctx context.Context, sessionID string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE stripe_checkout_session_id = ?`
	return scanBooking(r.db.QueryRowContext(ctx, q, sessionID).Scan)
}

// MarkPaid performs pending→paid as one conditional update.  The false
// return with no error is how a racing confirmation learns it lost.
func (r *BookingRepo) MarkPaid(ctx context.Context, id uint64, paymentIntentID string) (bool, error) {
	const q = `UPDATE bookings SET status = ?, stripe_payment_intent_id = ?
	           WHERE id = ? AND status = ?`
	var intent interface{}
	if paymentIntentID != "" {
		intent = paymentIntentID
	}
	res, err := r.db.ExecContext(ctx, q, model.BookingPaid, intent, id, model.BookingPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// InsertDays materializes attendance rows.  INSERT IGNORE plus the
// unique (booking_id, club_day_id) key absorbs webhook replays and
// verify races without double rows.
func (r *BookingRepo) InsertDays(ctx context.Context, bookingID uint64, dayIDs []uint64, slot string) error {
	if len(dayIDs) == 0 {
		return nil
	}
	q := `INSERT IGNORE INTO booking_days (booking_id, club_day_id, time_slot) VALUES `
	args := make([]interface{}, 0, len(dayIDs)*3)
	for i, dayID := range dayIDs {
		if i > 0 {
			q += ","
		}
		q += "(?, ?, ?)"
		args = append(args, bookingID, dayID, slot)
	}
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// CountDays reports how many attendance rows exist for a booking.
func (r *BookingRepo) CountDays(ctx context.Context, bookingID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM booking_days WHERE booking_id = ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(&n)
	return n, err
}

// CountChildren reports how many child records exist for a booking.
func (r *BookingRepo) CountChildren(ctx context.Context, bookingID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM children WHERE booking_id = ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(&n)
	return n, err
}

// InsertChildrenComplete writes the child batch and performs the
// paid→complete transition in one transaction.  If the conditional
// status update matches nothing the whole batch rolls back and false is
// returned, so a concurrent submission can never leave a partial set.
func (r *BookingRepo) InsertChildrenComplete(ctx context.Context, bookingID uint64, children []model.Child) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if len(children) > 0 {
		q := `INSERT INTO children
		      (booking_id, first_name, last_name, date_of_birth, allergies, medical_notes,
		       emergency_contact_name, emergency_contact_phone, pickup_authorization, photo_consent)
		      VALUES `
		args := make([]interface{}, 0, len(children)*10)
		for i, c := range children {
			if i > 0 {
				q += ","
			}
			q += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
			args = append(args,
				bookingID, c.FirstName, c.LastName, c.DateOfBirth,
				nullable(c.Allergies), nullable(c.MedicalNotes),
				c.EmergencyContactName, c.EmergencyContactPhone,
				nullable(c.PickupAuthorization), c.PhotoConsent,
			)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return false, err
		}
	}

	const upd = `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, upd, model.BookingComplete, bookingID, model.BookingPaid)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}

// Cancel performs pending→cancelled and releases the capacity and promo
// usage taken at creation, all in one transaction.  False with no error
// means the booking was no longer pending.
func (r *BookingRepo) Cancel(ctx context.Context, b *model.Booking, dayIDs []uint64, slot string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const upd = `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, upd, model.BookingCancelled, b.ID, model.BookingPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}
	if err := releaseCapacityTx(ctx, tx, dayIDs, slot, int(b.NumChildren)); err != nil {
		return false, err
	}
	if b.PromoCodeID != nil {
		if err := releasePromoTx(ctx, tx, *b.PromoCodeID); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}

// ExpiredPending lists pending bookings created before the cutoff, for
// the expiry sweep.
func (r *BookingRepo) ExpiredPending(ctx context.Context, before time.Time) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
	           WHERE status = ? AND created_at < ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, model.BookingPending, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// List returns bookings for the admin API, newest first, optionally
// filtered by status.
func (r *BookingRepo) List(ctx context.Context, status string, limit int) ([]model.Booking, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := `SELECT ` + bookingColumns + ` FROM bookings`
	args := []interface{}{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// slotForOption loads the time slot of a booking option; defaults to
// full_day if the option has vanished so capacity stays conservative.
func (r *BookingRepo) slotForOption(ctx context.Context, optionID uint64) (string, error) {
	const q = `SELECT time_slot FROM booking_options WHERE id = ?`
	var slot string
	err := r.db.QueryRowContext(ctx, q, optionID).Scan(&slot)
	if err == sql.ErrNoRows {
		return model.SlotFullDay, nil
	}
	if err != nil {
		return "", err
	}
	return slot, nil
}

func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
