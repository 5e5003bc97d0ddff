package router

import (
	"github.com/labstack/echo/v4"

	"github.com/brightdays/holiday-club-booking/internal/handler"    // admin handlers
	"github.com/brightdays/holiday-club-booking/internal/middleware" // JWT + role middlewares
)

// RegisterAdmin registers the operator API.  Login is open; everything
// else requires a valid JWT carrying the ADMIN role.
func RegisterAdmin(e *echo.Echo, auth *handler.AdminAuthHandler, a *handler.AdminHandler, jwtSecret string) {
	e.POST("/v1/admin/login", auth.Login)

	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Bookings ----
	g.GET("/bookings", a.ListBookings)
	g.GET("/bookings/:reference", a.GetBooking)
	g.POST("/bookings/:reference/cancel", a.CancelBooking)

	// ---- Promo codes ----
	g.POST("/promo-codes", a.CreatePromo)

	// ---- Maintenance ----
	g.POST("/sweep", a.RunSweep)
}
