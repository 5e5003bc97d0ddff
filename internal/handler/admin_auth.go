package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brightdays/holiday-club-booking/internal/config"
	"github.com/brightdays/holiday-club-booking/internal/repository"
	"github.com/brightdays/holiday-club-booking/internal/utils"
)

// AdminAuthHandler bundles dependencies for the admin login endpoint.
// Operator accounts are provisioned out of band; there is no public
// registration.
type AdminAuthHandler struct {
	Cfg    config.Config
	Admins *repository.AdminRepo
}

// NewAdminAuthHandler constructs an AdminAuthHandler.
func NewAdminAuthHandler(cfg config.Config, admins *repository.AdminRepo) *AdminAuthHandler {
	if admins == nil {
		panic("nil admin repository passed to NewAdminAuthHandler")
	}
	return &AdminAuthHandler{Cfg: cfg, Admins: admins}
}

type adminLoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminLoginResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Login verifies operator credentials and returns a short-lived access
// token.  Unknown email and wrong password produce the same response so
// the endpoint cannot be used to probe for accounts.
func (h *AdminAuthHandler) Login(c echo.Context) error {
	var req adminLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	a, err := h.Admins.ByEmail(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if a == nil || !a.IsActive || !utils.VerifyPassword(a.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, a.ID, "ADMIN", h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, adminLoginResp{Token: access.Token, Expires: access.Exp})
}
