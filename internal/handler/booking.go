// Package handler exposes HTTP handlers for the public booking API and the
// administrative API.  Handlers bind and validate request bodies, call the
// service layer with a bounded context, and translate service errors into
// HTTP responses.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brightdays/holiday-club-booking/internal/booking"
)

// BookingHandler bundles the lifecycle services for the parent-facing
// booking endpoints.
type BookingHandler struct {
	Reservations *booking.ReservationService
	Reconciler   *booking.ReconcilerService
	Completion   *booking.CompletionService
}

// NewBookingHandler constructs a BookingHandler and panics if any
// dependency is nil.
func NewBookingHandler(res *booking.ReservationService, rec *booking.ReconcilerService, comp *booking.CompletionService) *BookingHandler {
	if res == nil || rec == nil || comp == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Reservations: res, Reconciler: rec, Completion: comp}
}

// ----- DTOs -----

type createBookingReq struct {
	ClubID          uint64   `json:"club_id" validate:"required"`
	BookingOptionID uint64   `json:"booking_option_id" validate:"required"`
	SelectedDates   []string `json:"selected_dates"`
	ParentName      string   `json:"parent_name" validate:"required"`
	ParentEmail     string   `json:"parent_email" validate:"required,email"`
	ParentPhone     string   `json:"parent_phone" validate:"required"`
	NumChildren     int      `json:"num_children" validate:"required,min=1,max=10"`
	PromoCode       string   `json:"promo_code"`
}

type createBookingResp struct {
	Booking     bookingResponse `json:"booking"`
	CheckoutURL string          `json:"checkout_url"`
	PromoError  string          `json:"promo_error,omitempty"`
}

type childReq struct {
	FirstName             string `json:"first_name" validate:"required"`
	LastName              string `json:"last_name" validate:"required"`
	DateOfBirth           string `json:"date_of_birth" validate:"required"`
	Allergies             string `json:"allergies"`
	MedicalNotes          string `json:"medical_notes"`
	EmergencyContactName  string `json:"emergency_contact_name" validate:"required"`
	EmergencyContactPhone string `json:"emergency_contact_phone" validate:"required"`
	PickupAuthorization   string `json:"pickup_authorization"`
	PhotoConsent          bool   `json:"photo_consent"`
}

type submitChildrenReq struct {
	Children []childReq `json:"children" validate:"required,min=1,dive"`
}

// CreateBooking opens a provisional reservation and returns the hosted
// checkout URL.  A rejected promo code does not fail the request: the
// booking proceeds at full price and promo_error tells the client why.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	res, err := h.Reservations.CreateBooking(ctx, booking.CreateBookingInput{
		ClubID:          req.ClubID,
		BookingOptionID: req.BookingOptionID,
		SelectedDates:   req.SelectedDates,
		ParentName:      req.ParentName,
		ParentEmail:     req.ParentEmail,
		ParentPhone:     req.ParentPhone,
		NumChildren:     req.NumChildren,
		PromoCode:       req.PromoCode,
	})
	if err != nil {
		return respondBookingError(c, err)
	}

	resp := createBookingResp{
		Booking:     toBookingResponse(res.Booking),
		CheckoutURL: res.CheckoutURL,
	}
	if res.PromoError != nil {
		resp.PromoError = res.PromoError.Error()
	}
	return c.JSON(http.StatusCreated, resp)
}

// GetBooking returns the public view of a booking by its reference.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	b, err := h.Reconciler.BookingByReference(ctx, c.Param("reference"))
	if err != nil {
		return respondBookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": toBookingResponse(b)})
}

// VerifyPayment re-checks the gateway for a pending booking.  The client
// calls this from the post-checkout landing page so a missed webhook
// cannot strand a paid booking in pending state.
func (h *BookingHandler) VerifyPayment(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	res, err := h.Reconciler.VerifyByReference(ctx, c.Param("reference"))
	if err != nil {
		return respondBookingError(c, err)
	}
	resp := echo.Map{
		"outcome": res.Outcome,
		"booking": toBookingResponse(res.Booking),
	}
	if res.CheckoutURL != "" {
		resp["checkout_url"] = res.CheckoutURL
	}
	return c.JSON(http.StatusOK, resp)
}

// SubmitChildren records the per-child details for a paid booking and
// completes it.  The batch is accepted exactly once.
func (h *BookingHandler) SubmitChildren(c echo.Context) error {
	var req submitChildrenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	inputs := make([]booking.ChildInput, 0, len(req.Children))
	for _, ch := range req.Children {
		dob, err := time.Parse("2006-01-02", ch.DateOfBirth)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date_of_birth, want YYYY-MM-DD"})
		}
		inputs = append(inputs, booking.ChildInput{
			FirstName:             ch.FirstName,
			LastName:              ch.LastName,
			DateOfBirth:           dob,
			Allergies:             ch.Allergies,
			MedicalNotes:          ch.MedicalNotes,
			EmergencyContactName:  ch.EmergencyContactName,
			EmergencyContactPhone: ch.EmergencyContactPhone,
			PickupAuthorization:   ch.PickupAuthorization,
			PhotoConsent:          ch.PhotoConsent,
		})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	b, err := h.Completion.SubmitChildren(ctx, c.Param("reference"), inputs)
	if err != nil {
		return respondBookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": toBookingResponse(b)})
}
