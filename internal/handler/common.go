package handler // handler defines http handlers

import (
	"context"  // context carries timeouts into the service layer
	"errors"   // errors matches service sentinels
	"net/http" // net/http provides status codes
	"time"     // time builds request deadlines

	"github.com/go-playground/validator/v10" // struct-tag request validation
	"github.com/labstack/echo/v4"            // echo defines request context types

	"github.com/brightdays/holiday-club-booking/internal/booking"
	"github.com/brightdays/holiday-club-booking/internal/model"
)

// reqTimeout is the deadline applied to every handler's service call.
const reqTimeout = 10 * time.Second

// reqContext derives a bounded context from the incoming request.
func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), reqTimeout)
}

// Validator adapts go-playground/validator to Echo's Validator interface
// so handlers can call c.Validate on bound request structs.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a ready-to-register Echo validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// bookingResponse is the public view of a booking.  Internal ids and the
// payment intent are not exposed; the reference is the handle parents use.
type bookingResponse struct {
	Reference     string   `json:"reference"`
	Status        string   `json:"status"`
	ClubID        uint64   `json:"club_id"`
	OptionID      uint64   `json:"booking_option_id"`
	NumChildren   uint8    `json:"num_children"`
	SelectedDates []string `json:"selected_dates,omitempty"`
	SubtotalPence uint32   `json:"subtotal_pence"`
	DiscountPence uint32   `json:"discount_pence"`
	TotalPence    uint32   `json:"total_pence"`
	CreatedAt     string   `json:"created_at"`
}

func toBookingResponse(b *model.Booking) bookingResponse {
	return bookingResponse{
		Reference:     b.Reference,
		Status:        b.Status,
		ClubID:        b.ClubID,
		OptionID:      b.BookingOptionID,
		NumChildren:   b.NumChildren,
		SelectedDates: b.SelectedDates,
		SubtotalPence: b.SubtotalPence,
		DiscountPence: b.DiscountPence,
		TotalPence:    b.TotalPence,
		CreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// respondBookingError maps booking service errors onto HTTP responses.
// Unrecognized errors become an opaque 500 so internals never leak.
func respondBookingError(c echo.Context, err error) error {
	var ve *booking.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Message, "field": ve.Field})
	}
	switch {
	case errors.Is(err, booking.ErrClubNotFound),
		errors.Is(err, booking.ErrOptionNotFound),
		errors.Is(err, booking.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrBookingsClosed):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrCapacityExhausted):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrInvalidState),
		errors.Is(err, booking.ErrAlreadySubmitted):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrCountMismatch):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrGateway):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment provider unavailable"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
