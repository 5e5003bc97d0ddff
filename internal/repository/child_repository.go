package repository

import (
	"context"
	"database/sql"

	"github.com/brightdays/holiday-club-booking/internal/model"
)

// ChildRepo is the read side of the children table.  Writes go through
// BookingRepo.InsertChildrenComplete so they stay inside the completion
// transaction.
type ChildRepo struct {
	db *sql.DB
}

// NewChildRepo returns a new ChildRepo bound to the given database.
func NewChildRepo(db *sql.DB) *ChildRepo { return &ChildRepo{db: db} }

// ByBooking lists a booking's child records in insertion order.
func (r *ChildRepo) ByBooking(ctx context.Context, bookingID uint64) ([]model.Child, error) {
	const q = `SELECT id, booking_id, first_name, last_name, date_of_birth, allergies,
	                  medical_notes, emergency_contact_name, emergency_contact_phone,
	                  pickup_authorization, photo_consent, created_at
	           FROM children WHERE booking_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Child
	for rows.Next() {
		var c model.Child
		var allergies, medical, pickup sql.NullString
		err := rows.Scan(
			&c.ID, &c.BookingID, &c.FirstName, &c.LastName, &c.DateOfBirth, &allergies,
			&medical, &c.EmergencyContactName, &c.EmergencyContactPhone,
			&pickup, &c.PhotoConsent, &c.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if allergies.Valid {
			c.Allergies = &allergies.String
		}
		if medical.Valid {
			c.MedicalNotes = &medical.String
		}
		if pickup.Valid {
			c.PickupAuthorization = &pickup.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
