package model

import "time"

// Option types describe the attendance pattern a parent purchases.
const (
	OptionFullWeek  = "full_week"  // every available day of the club
	OptionSingleDay = "single_day" // exactly one selected day
	OptionMultiDay  = "multi_day"  // two or more selected days
)

// Time slots describe which part of the day is attended.
const (
	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"
	SlotFullDay   = "full_day"
)

// BookingOption is a purchasable attendance pattern for a club: an option
// type combined with a time slot and a per-child price in pence.  Options
// belong to the catalog store and are read-only to the booking core.
//
// Fields:
//  ID                 – primary key identifier.
//  ClubID             – club this option belongs to.
//  Name               – display label (e.g. "Full week, mornings").
//  OptionType         – one of full_week, single_day, multi_day.
//  TimeSlot           – one of morning, afternoon, full_day.
//  PricePerChildPence – price per child in pence.
//  IsActive           – whether the option can be purchased.
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type BookingOption struct {
	ID                 uint64    // booking_options.id
	ClubID             uint64    // booking_options.club_id
	Name               string    // booking_options.name
	OptionType         string    // booking_options.option_type
	TimeSlot           string    // booking_options.time_slot
	PricePerChildPence uint32    // booking_options.price_per_child_pence
	IsActive           bool      // booking_options.is_active
	CreatedAt          time.Time // booking_options.created_at
	UpdatedAt          time.Time // booking_options.updated_at
}
