package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	stripe "github.com/stripe/stripe-go/v79"

	"github.com/brightdays/holiday-club-booking/internal/booking"
	"github.com/brightdays/holiday-club-booking/internal/payment"
)

// maxWebhookBody caps the raw payload read from the payment provider.
const maxWebhookBody = 1 << 16

// WebhookHandler receives payment provider events.  Signature
// verification happens here, before anything touches the reconciler.
type WebhookHandler struct {
	Reconciler *booking.ReconcilerService
	Secret     string // webhook signing secret
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(rec *booking.ReconcilerService, secret string) *WebhookHandler {
	if rec == nil {
		panic("nil reconciler passed to NewWebhookHandler")
	}
	return &WebhookHandler{Reconciler: rec, Secret: secret}
}

// HandleStripeEvent verifies and dispatches one webhook event.  Only
// checkout.session.completed is acted on; everything else is accepted
// and ignored so the provider does not retry event types we do not use.
// Processing is idempotent, so replays of the same event are harmless.
func (h *WebhookHandler) HandleStripeEvent(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable payload"})
	}

	event, err := payment.VerifyWebhook(payload, c.Request().Header.Get("Stripe-Signature"), h.Secret)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "signature verification failed"})
	}

	if event.Type != "checkout.session.completed" {
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed event payload"})
	}

	state := &payment.SessionState{
		Paid:     session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: session.Metadata,
	}
	if session.PaymentIntent != nil {
		state.PaymentIntentID = session.PaymentIntent.ID
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	outcome, err := h.Reconciler.HandleSessionPaid(ctx, session.ID, state)
	if err != nil {
		// A 500 makes the provider retry later, which is what we want for
		// transient failures.
		log.Printf("webhook: session %s: %v", session.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "processing failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true, "outcome": outcome})
}
