// Package booking implements the booking lifecycle core: provisional
// reservation, payment reconciliation and child-record completion.
package booking

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the lifecycle services.  Handlers translate
// these into HTTP statuses: not-found errors become 404, validation and
// state errors become 4xx with a stable code, gateway and persistence
// errors become 5xx.
var (
	ErrClubNotFound    = errors.New("club not found")
	ErrOptionNotFound  = errors.New("booking option not found")
	ErrBookingNotFound = errors.New("booking not found")

	// ErrBookingsClosed is returned when the club exists but is not
	// currently accepting bookings.
	ErrBookingsClosed = errors.New("bookings are closed for this club")

	// ErrCapacityExhausted is returned when a selected day cannot take the
	// requested number of children in the requested slot.
	ErrCapacityExhausted = errors.New("no capacity left for a selected day")

	// ErrInvalidState is returned when an operation is attempted against a
	// booking whose status does not permit it.
	ErrInvalidState = errors.New("operation not valid for booking state")

	// ErrAlreadySubmitted is returned when child records already exist for
	// a booking.
	ErrAlreadySubmitted = errors.New("child records already submitted")

	// ErrCountMismatch is returned when the number of submitted child
	// records does not match the booking's child count.
	ErrCountMismatch = errors.New("child record count does not match booking")

	// ErrGateway wraps payment provider failures.
	ErrGateway = errors.New("payment gateway error")
)

// ValidationError carries field-level detail for client-fixable input
// problems.  It unwraps to nothing; handlers match it with errors.As.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalidField(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
