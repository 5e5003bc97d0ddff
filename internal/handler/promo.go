package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brightdays/holiday-club-booking/internal/booking"
	"github.com/brightdays/holiday-club-booking/internal/promo"
)

// PromoHandler serves the pre-checkout promo code preview.  The preview
// is advisory only: the authoritative validation and the usage counter
// movement happen again inside booking creation.
type PromoHandler struct {
	Promos booking.PromoStore
}

// NewPromoHandler constructs a PromoHandler.
func NewPromoHandler(promos booking.PromoStore) *PromoHandler {
	if promos == nil {
		panic("nil promo store passed to NewPromoHandler")
	}
	return &PromoHandler{Promos: promos}
}

type validatePromoReq struct {
	Code   string `json:"code" validate:"required"`
	ClubID uint64 `json:"club_id" validate:"required"`
}

// ValidatePromo reports whether a code would currently apply to a club
// and, if so, its discount percentage.
func (h *PromoHandler) ValidatePromo(c echo.Context) error {
	var req validatePromoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	p, err := h.Promos.ByCode(ctx, promo.Normalize(req.Code))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if err := promo.Validate(p, req.ClubID, time.Now().UTC()); err != nil {
		if errors.Is(err, promo.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"valid": false, "error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"valid": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"valid":            true,
		"code":             p.Code,
		"discount_percent": p.DiscountPercent,
	})
}
