// Package payment wraps the external payment provider behind a small
// interface so the booking core can be exercised without network access.
package payment

import (
	"context"
	"time"
)

// SessionRequest describes the hosted checkout session to open for a
// booking.  Metadata must carry everything needed to reconstruct the
// booking from a webhook event alone.
type SessionRequest struct {
	Reference     string            // public booking reference
	AmountPence   int64             // total to charge
	Currency      string            // ISO currency code, e.g. "gbp"
	Description   string            // line item label shown to the parent
	CustomerEmail string            // pre-filled on the hosted page
	SuccessURL    string            // redirect after successful payment
	CancelURL     string            // redirect after abandoning checkout
	ExpiresAt     time.Time         // when the session stops accepting payment (zero keeps the provider default)
	Metadata      map[string]string // booking fingerprint for the webhook
}

// Session is a newly created checkout session.
type Session struct {
	ID  string // opaque gateway session id
	URL string // hosted checkout page to redirect the parent to
}

// SessionState is the gateway's current view of a session, used by the
// manual-verify path and by the reconciler's paid check.
type SessionState struct {
	Paid            bool              // whether the session has been paid
	PaymentIntentID string            // payment intent id once paid
	URL             string            // checkout URL while still payable
	Metadata        map[string]string // metadata set at creation
}

// Gateway is the payment provider surface used by the booking core.
type Gateway interface {
	// CreateSession opens a hosted checkout session.
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	// SessionState fetches the current state of a session by id.
	SessionState(ctx context.Context, sessionID string) (*SessionState, error)
	// ExpireSession closes a still-payable session so it can no longer
	// capture money.  Called when the booking behind it is cancelled.
	ExpireSession(ctx context.Context, sessionID string) error
}
