package router

import (
	"github.com/labstack/echo/v4"

	"github.com/brightdays/holiday-club-booking/internal/handler"
)

// RegisterPublic registers the unauthenticated parent-facing API under
// /v1: catalog browsing, promo preview and the booking lifecycle.  The
// booking endpoints are keyed by the opaque booking reference, which is
// the only credential a parent holds.
// Catalog responses are cached; booking state must always be fresh, so
// the cache middleware is scoped to the catalog routes only.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, b *handler.BookingHandler, p *handler.PromoHandler, cache echo.MiddlewareFunc) {
	// Catalog browsing: list active clubs and club detail by slug.
	e.GET("/v1/clubs", cat.ListClubs, cache)
	e.GET("/v1/clubs/:slug", cat.GetClub, cache)

	// Promo preview for the booking form.  Advisory only: the code is
	// validated again, and its usage counter moved, at booking creation.
	e.POST("/v1/promo-codes/validate", p.ValidatePromo)

	// Booking lifecycle.
	e.POST("/v1/bookings", b.CreateBooking)
	e.GET("/v1/bookings/:reference", b.GetBooking)
	e.POST("/v1/bookings/:reference/verify-payment", b.VerifyPayment)
	e.POST("/v1/bookings/:reference/children", b.SubmitChildren)
}

// RegisterWebhook registers the payment provider callback.  It lives
// outside /v1 and must never sit behind the response cache: the provider
// signs every request and retries on failure.
func RegisterWebhook(e *echo.Echo, w *handler.WebhookHandler) {
	e.POST("/webhooks/stripe", w.HandleStripeEvent)
}
