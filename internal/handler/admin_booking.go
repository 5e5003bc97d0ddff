package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brightdays/holiday-club-booking/internal/booking"
	"github.com/brightdays/holiday-club-booking/internal/model"
	"github.com/brightdays/holiday-club-booking/internal/promo"
	"github.com/brightdays/holiday-club-booking/internal/repository"
)

// AdminHandler bundles dependencies for the administrative API: booking
// oversight, manual cancellation, promo management and the expiry sweep.
type AdminHandler struct {
	Bookings     *repository.BookingRepo
	Children     *repository.ChildRepo
	Promos       *repository.PromoRepo
	Reservations *booking.ReservationService
	PendingTTL   time.Duration
}

// NewAdminHandler constructs an AdminHandler and panics if any dependency
// is nil.
func NewAdminHandler(bookings *repository.BookingRepo, children *repository.ChildRepo, promos *repository.PromoRepo, res *booking.ReservationService, pendingTTL time.Duration) *AdminHandler {
	if bookings == nil || children == nil || promos == nil || res == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{
		Bookings:     bookings,
		Children:     children,
		Promos:       promos,
		Reservations: res,
		PendingTTL:   pendingTTL,
	}
}

// adminBooking extends the public booking view with contact details,
// which operators are allowed to see.
type adminBooking struct {
	bookingResponse
	ParentName  string `json:"parent_name"`
	ParentEmail string `json:"parent_email"`
	ParentPhone string `json:"parent_phone"`
}

func toAdminBooking(b *model.Booking) adminBooking {
	return adminBooking{
		bookingResponse: toBookingResponse(b),
		ParentName:      b.ParentName,
		ParentEmail:     b.ParentEmail,
		ParentPhone:     b.ParentPhone,
	}
}

type adminChild struct {
	FirstName             string  `json:"first_name"`
	LastName              string  `json:"last_name"`
	DateOfBirth           string  `json:"date_of_birth"`
	Allergies             *string `json:"allergies,omitempty"`
	MedicalNotes          *string `json:"medical_notes,omitempty"`
	EmergencyContactName  string  `json:"emergency_contact_name"`
	EmergencyContactPhone string  `json:"emergency_contact_phone"`
	PickupAuthorization   *string `json:"pickup_authorization,omitempty"`
	PhotoConsent          bool    `json:"photo_consent"`
}

// ListBookings returns bookings newest first.  The optional "status"
// query parameter filters by lifecycle state.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	status := c.QueryParam("status")
	switch status {
	case "", model.BookingPending, model.BookingPaid, model.BookingComplete, model.BookingCancelled:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	items, err := h.Bookings.List(ctx, status, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]adminBooking, 0, len(items))
	for i := range items {
		out = append(out, toAdminBooking(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetBooking returns one booking by reference together with its child
// records.
func (h *AdminHandler) GetBooking(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	b, err := h.Bookings.ByReference(ctx, c.Param("reference"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if b == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	children, err := h.Children.ByBooking(ctx, b.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	outChildren := make([]adminChild, 0, len(children))
	for _, ch := range children {
		outChildren = append(outChildren, adminChild{
			FirstName:             ch.FirstName,
			LastName:              ch.LastName,
			DateOfBirth:           ch.DateOfBirth.Format("2006-01-02"),
			Allergies:             ch.Allergies,
			MedicalNotes:          ch.MedicalNotes,
			EmergencyContactName:  ch.EmergencyContactName,
			EmergencyContactPhone: ch.EmergencyContactPhone,
			PickupAuthorization:   ch.PickupAuthorization,
			PhotoConsent:          ch.PhotoConsent,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking":  toAdminBooking(b),
		"children": outChildren,
	})
}

// CancelBooking cancels a pending booking, releasing its day capacity
// and promo usage.  Paid or complete bookings cannot be cancelled here.
func (h *AdminHandler) CancelBooking(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	b, err := h.Reservations.CancelPending(ctx, c.Param("reference"))
	if err != nil {
		return respondBookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": toAdminBooking(b)})
}

type createPromoReq struct {
	Code            string  `json:"code" validate:"required"`
	DiscountPercent uint8   `json:"discount_percent" validate:"required,min=1,max=100"`
	ValidFrom       string  `json:"valid_from" validate:"required"`
	ValidUntil      string  `json:"valid_until" validate:"required"`
	MaxUses         *uint32 `json:"max_uses"`
	ClubID          *uint64 `json:"club_id"`
}

// CreatePromo registers a new promo code.  Codes are stored upper-cased
// and must be unique.
func (h *AdminHandler) CreatePromo(c echo.Context) error {
	var req createPromoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	from, err := time.Parse(time.RFC3339, req.ValidFrom)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid valid_from, want RFC3339"})
	}
	until, err := time.Parse(time.RFC3339, req.ValidUntil)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid valid_until, want RFC3339"})
	}
	if !until.After(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid_until must be after valid_from"})
	}

	p := &model.PromoCode{
		Code:            promo.Normalize(req.Code),
		DiscountPercent: req.DiscountPercent,
		ValidFrom:       from.UTC(),
		ValidUntil:      until.UTC(),
		MaxUses:         req.MaxUses,
		ClubID:          req.ClubID,
		IsActive:        true,
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Promos.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "promo code already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create promo failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":   p.ID,
		"code": p.Code,
	})
}

// RunSweep cancels pending bookings older than the configured TTL and
// reports how many were swept.  The background sweeper runs the same
// operation on a timer; this endpoint exists for operators who do not
// want to wait for the next tick.
func (h *AdminHandler) RunSweep(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	n, err := h.Reservations.SweepExpired(ctx, h.PendingTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sweep failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"swept": n})
}
