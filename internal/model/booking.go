package model

import "time"

// Booking status values.  The only legal transitions are
// pending → paid → complete, plus pending → cancelled as an administrative
// action.  Reverse or skipping transitions are rejected by conditional
// updates in the repository layer.
const (
	BookingPending   = "pending"
	BookingPaid      = "paid"
	BookingComplete  = "complete"
	BookingCancelled = "cancelled"
)

// Booking is the aggregate root of the booking core.  It is created in
// pending state by the reservation manager, moved to paid by the payment
// reconciler and to complete by the child-record workflow.  Bookings are
// never deleted by the normal flow.
//
// Fields:
//  ID                      – primary key identifier.
//  Reference               – opaque public identifier (UUID) used on all
//                            parent-facing endpoints.
//  ClubID                  – club being booked.
//  BookingOptionID         – purchased attendance option.
//  ParentName              – parent's full name.
//  ParentEmail             – parent's email address.
//  ParentPhone             – parent's phone number.
//  NumChildren             – number of attending children.
//  SelectedDates           – explicit "2006-01-02" dates for single_day and
//                            multi_day options; empty for full_week.
//  ReservedDayIDs          – ClubDay ids whose capacity this booking holds;
//                            cancellation releases exactly this set.
//  SubtotalPence           – price before discount.
//  DiscountPence           – promo discount applied at creation time.
//  TotalPence              – amount actually charged.
//  PromoCodeID             – promo applied, if any.
//  Status                  – lifecycle state, see constants above.
//  StripeCheckoutSessionID – gateway checkout session, set after creation.
//  StripePaymentIntentID   – gateway payment intent, set on confirmation.
//  CreatedAt               – creation timestamp.
//  UpdatedAt               – last update timestamp.
type Booking struct {
	ID                      uint64    // bookings.id
	Reference               string    // bookings.reference
	ClubID                  uint64    // bookings.club_id
	BookingOptionID         uint64    // bookings.booking_option_id
	ParentName              string    // bookings.parent_name
	ParentEmail             string    // bookings.parent_email
	ParentPhone             string    // bookings.parent_phone
	NumChildren             uint8     // bookings.num_children
	SelectedDates           []string  // bookings.selected_dates (JSON array)
	ReservedDayIDs          []uint64  // bookings.reserved_day_ids (JSON array)
	SubtotalPence           uint32    // bookings.subtotal_pence
	DiscountPence           uint32    // bookings.discount_pence
	TotalPence              uint32    // bookings.total_pence
	PromoCodeID             *uint64   // bookings.promo_code_id (nullable)
	Status                  string    // bookings.status
	StripeCheckoutSessionID *string   // bookings.stripe_checkout_session_id (nullable)
	StripePaymentIntentID   *string   // bookings.stripe_payment_intent_id (nullable)
	CreatedAt               time.Time // bookings.created_at
	UpdatedAt               time.Time // bookings.updated_at
}

// BookingDay links a paid booking to one attended ClubDay.  Rows are
// materialized only after payment confirmation; the unique pair
// (booking_id, club_day_id) is what makes racing confirmations safe.
//
// Fields:
//  ID        – primary key identifier.
//  BookingID – owning booking.
//  ClubDayID – attended day.
//  TimeSlot  – morning, afternoon or full_day.
//  CreatedAt – creation timestamp.
type BookingDay struct {
	ID        uint64    // booking_days.id
	BookingID uint64    // booking_days.booking_id
	ClubDayID uint64    // booking_days.club_day_id
	TimeSlot  string    // booking_days.time_slot
	CreatedAt time.Time // booking_days.created_at
}
