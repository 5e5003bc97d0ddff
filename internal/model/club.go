package model

import "time"

// Club represents a holiday club venue and its running period.  Clubs are
// owned by the catalog store and are read-only to the booking core.  Each
// club runs over a date range and publishes one ClubDay per operating day.
// This struct corresponds to a row in the `clubs` table.
//
// Fields:
//  ID           – primary key identifier.
//  Slug         – URL-safe unique identifier used on public endpoints.
//  Name         – display name of the club.
//  Description  – optional marketing description.
//  StartDate    – first day of the club period.
//  EndDate      – last day of the club period.
//  MinAge       – minimum child age accepted.
//  MaxAge       – maximum child age accepted.
//  OpensAt      – daily opening time as "HH:MM".
//  MiddayAt     – morning/afternoon boundary as "HH:MM".
//  ClosesAt     – daily closing time as "HH:MM".
//  IsActive     – whether the club is visible at all.
//  BookingsOpen – whether new bookings are currently accepted.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Club struct {
	ID           uint64    // clubs.id
	Slug         string    // clubs.slug
	Name         string    // clubs.name
	Description  *string   // clubs.description (nullable)
	StartDate    time.Time // clubs.start_date
	EndDate      time.Time // clubs.end_date
	MinAge       uint8     // clubs.min_age
	MaxAge       uint8     // clubs.max_age
	OpensAt      string    // clubs.opens_at
	MiddayAt     string    // clubs.midday_at
	ClosesAt     string    // clubs.closes_at
	IsActive     bool      // clubs.is_active
	BookingsOpen bool      // clubs.bookings_open
	CreatedAt    time.Time // clubs.created_at
	UpdatedAt    time.Time // clubs.updated_at
}

// ClubDay is one operating day of a club with per-slot capacity.  The pair
// (club_id, date) is unique.  Capacity is enforced with conditional
// increments of the booked counters so that two concurrent checkouts can
// never oversell a day.
//
// Fields:
//  ID                – primary key identifier.
//  ClubID            – owning club.
//  Date              – calendar date of this operating day.
//  MorningCapacity   – maximum children in the morning slot.
//  AfternoonCapacity – maximum children in the afternoon slot.
//  MorningBooked     – children currently reserved in the morning slot.
//  AfternoonBooked   – children currently reserved in the afternoon slot.
//  IsAvailable       – whether the day is open for booking at all.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type ClubDay struct {
	ID                uint64    // club_days.id
	ClubID            uint64    // club_days.club_id
	Date              time.Time // club_days.date
	MorningCapacity   uint32    // club_days.morning_capacity
	AfternoonCapacity uint32    // club_days.afternoon_capacity
	MorningBooked     uint32    // club_days.morning_booked
	AfternoonBooked   uint32    // club_days.afternoon_booked
	IsAvailable       bool      // club_days.is_available
	CreatedAt         time.Time // club_days.created_at
	UpdatedAt         time.Time // club_days.updated_at
}
