// This file defines handlers for the public catalog API.  These routes let
// unauthenticated parents browse clubs, their operating days and their
// booking options before starting a checkout.  Internal counters are
// translated into remaining-place numbers; raw booked counts are not
// exposed.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brightdays/holiday-club-booking/internal/model"
	"github.com/brightdays/holiday-club-booking/internal/repository"
)

// CatalogHandler aggregates repositories needed for unauthenticated
// browsing.  Responses are sanitized for public consumption.
type CatalogHandler struct {
	Clubs   *repository.ClubRepo
	Options *repository.BookingOptionRepo
	Days    *repository.ClubDayRepo
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(clubs *repository.ClubRepo, options *repository.BookingOptionRepo, days *repository.ClubDayRepo) *CatalogHandler {
	if clubs == nil || options == nil || days == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Clubs: clubs, Options: options, Days: days}
}

// publicClub is a club exposed via the public API.
type publicClub struct {
	ID           uint64  `json:"id"`
	Slug         string  `json:"slug"`
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	MinAge       uint8   `json:"min_age"`
	MaxAge       uint8   `json:"max_age"`
	OpensAt      string  `json:"opens_at"`
	MiddayAt     string  `json:"midday_at"`
	ClosesAt     string  `json:"closes_at"`
	BookingsOpen bool    `json:"bookings_open"`
}

// publicDay is one operating day with remaining places per slot.
type publicDay struct {
	ID                 uint64 `json:"id"`
	Date               string `json:"date"`
	MorningRemaining   uint32 `json:"morning_remaining"`
	AfternoonRemaining uint32 `json:"afternoon_remaining"`
}

// publicOption is a purchasable attendance pattern.
type publicOption struct {
	ID                 uint64 `json:"id"`
	Name               string `json:"name"`
	OptionType         string `json:"option_type"`
	TimeSlot           string `json:"time_slot"`
	PricePerChildPence uint32 `json:"price_per_child_pence"`
}

func toPublicClub(cl model.Club) publicClub {
	return publicClub{
		ID:           cl.ID,
		Slug:         cl.Slug,
		Name:         cl.Name,
		Description:  cl.Description,
		StartDate:    cl.StartDate.Format("2006-01-02"),
		EndDate:      cl.EndDate.Format("2006-01-02"),
		MinAge:       cl.MinAge,
		MaxAge:       cl.MaxAge,
		OpensAt:      cl.OpensAt,
		MiddayAt:     cl.MiddayAt,
		ClosesAt:     cl.ClosesAt,
		BookingsOpen: cl.BookingsOpen,
	}
}

func remaining(capacity, booked uint32) uint32 {
	if booked >= capacity {
		return 0
	}
	return capacity - booked
}

// ListClubs returns all active clubs.  Response JSON contains an "items"
// array of publicClub.
func (h *CatalogHandler) ListClubs(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	clubs, err := h.Clubs.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]publicClub, 0, len(clubs))
	for _, cl := range clubs {
		out = append(out, toPublicClub(cl))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetClub returns one club by slug together with its bookable days and
// active options, which is everything a booking form needs.
func (h *CatalogHandler) GetClub(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	cl, err := h.Clubs.BySlug(ctx, c.Param("slug"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if cl == nil || !cl.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "club not found"})
	}

	days, err := h.Days.AvailableByClub(ctx, cl.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	options, err := h.Options.ActiveByClub(ctx, cl.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	outDays := make([]publicDay, 0, len(days))
	for _, d := range days {
		outDays = append(outDays, publicDay{
			ID:                 d.ID,
			Date:               d.Date.Format("2006-01-02"),
			MorningRemaining:   remaining(d.MorningCapacity, d.MorningBooked),
			AfternoonRemaining: remaining(d.AfternoonCapacity, d.AfternoonBooked),
		})
	}
	outOptions := make([]publicOption, 0, len(options))
	for _, o := range options {
		outOptions = append(outOptions, publicOption{
			ID:                 o.ID,
			Name:               o.Name,
			OptionType:         o.OptionType,
			TimeSlot:           o.TimeSlot,
			PricePerChildPence: o.PricePerChildPence,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"club":    toPublicClub(*cl),
		"days":    outDays,
		"options": outOptions,
	})
}
