package booking

import (
	"context"
	"time"

	"github.com/brightdays/holiday-club-booking/internal/model"
)

// CatalogStore is the read-only view of clubs, days and options consumed
// by the lifecycle services.  Implementations return nil records (not
// errors) when a lookup finds nothing.
type CatalogStore interface {
	ClubByID(ctx context.Context, id uint64) (*model.Club, error)
	OptionByID(ctx context.Context, id uint64) (*model.BookingOption, error)
	// AvailableDays returns every bookable day for a club ordered by date.
	AvailableDays(ctx context.Context, clubID uint64) ([]model.ClubDay, error)
	// DaysByDates returns the bookable days matching the given
	// "2006-01-02" dates.  Missing or unavailable dates are simply absent
	// from the result.
	DaysByDates(ctx context.Context, clubID uint64, dates []string) ([]model.ClubDay, error)
}

// PromoStore resolves promo codes.  Counter movement happens inside the
// booking store's transactional operations, not here.
type PromoStore interface {
	// ByCode looks a code up case-insensitively; nil when absent.
	ByCode(ctx context.Context, code string) (*model.PromoCode, error)
	ByID(ctx context.Context, id uint64) (*model.PromoCode, error)
}

// SessionOpener is called by BookingStore.Create inside the creation
// transaction, after the booking row, capacity and promo usage have been
// written.  Returning an error rolls the whole creation back, which is
// what keeps a gateway failure from leaving an orphaned pending row.
type SessionOpener func(b *model.Booking) (sessionID string, err error)

// BookingStore is the write surface of the lifecycle.  Multi-step
// operations are transactional inside the implementation so the services
// never observe partial writes.
type BookingStore interface {
	// Create inserts a pending booking, reserves per-slot capacity on the
	// given days, consumes the promo code if one is attached, then invokes
	// open and persists the returned session id.  Any failure rolls the
	// entire operation back.  Returns ErrCapacityExhausted when a day
	// cannot take the children, and promo.ErrUsageExhausted when the code
	// has no uses left.
	Create(ctx context.Context, b *model.Booking, dayIDs []uint64, open SessionOpener) error

	// Restore inserts a booking row as-is.  Used when a paid webhook
	// arrives for a session whose local row has been lost; the row is
	// rebuilt from session metadata before confirmation proceeds.
	Restore(ctx context.Context, b *model.Booking) error

	ByID(ctx context.Context, id uint64) (*model.Booking, error)
	ByReference(ctx context.Context, reference string) (*model.Booking, error)
	BySessionID(ctx context.Context, sessionID string) (*model.Booking, error)

	// MarkPaid performs the pending→paid transition as a single
	// conditional update and reports whether this caller won it.  A false
	// return with no error means another confirmation got there first.
	MarkPaid(ctx context.Context, id uint64, paymentIntentID string) (bool, error)

	// InsertDays materializes attendance rows, ignoring duplicates via the
	// (booking_id, club_day_id) unique key.
	InsertDays(ctx context.Context, bookingID uint64, dayIDs []uint64, slot string) error

	// CountChildren reports how many child records exist for a booking.
	CountChildren(ctx context.Context, bookingID uint64) (int, error)

	// InsertChildrenComplete atomically inserts the child batch and moves
	// paid→complete.  Returns false with no error when the booking was no
	// longer in paid state (a concurrent submission won).
	InsertChildrenComplete(ctx context.Context, bookingID uint64, children []model.Child) (bool, error)

	// Cancel moves a pending booking to cancelled, releasing capacity on
	// the given days and the promo usage if one was consumed.  Returns
	// false with no error when the booking was not pending.
	Cancel(ctx context.Context, b *model.Booking, dayIDs []uint64, slot string) (bool, error)

	// ExpiredPending lists pending bookings created before the cutoff.
	ExpiredPending(ctx context.Context, before time.Time) ([]model.Booking, error)
}

// Notifier delivers best-effort notifications after a durable state
// transition.  Failures are logged by the caller and never propagate.
type Notifier interface {
	BookingConfirmed(ctx context.Context, b *model.Booking, club *model.Club, option *model.BookingOption) error
	BookingCompleted(ctx context.Context, b *model.Booking, club *model.Club) error
}
