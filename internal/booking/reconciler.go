package booking

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/brightdays/holiday-club-booking/internal/model"
	"github.com/brightdays/holiday-club-booking/internal/payment"
)

// Outcome of a confirmation attempt.  Both reconciliation entry points
// (webhook and manual verify) report one of these.
type Outcome string

const (
	// OutcomeAlreadyPaid means the booking was paid or complete before
	// this call; nothing was changed.
	OutcomeAlreadyPaid Outcome = "already_paid"
	// OutcomeVerified means this call performed the pending→paid
	// transition and materialized the attendance days.
	OutcomeVerified Outcome = "verified"
	// OutcomeStillPending means the gateway has not seen payment yet.
	OutcomeStillPending Outcome = "unpaid"
	// OutcomeCancelled means a payment event arrived for a booking that
	// was cancelled in the meantime.  The webhook path acknowledges it so
	// the provider stops redelivering; the capture is flagged for refund.
	OutcomeCancelled Outcome = "cancelled"
)

// VerifyResult is the manual-verify response: the outcome plus the
// checkout URL when the session is still payable.
type VerifyResult struct {
	Outcome     Outcome
	Booking     *model.Booking
	CheckoutURL string
}

// ReconcilerService converges the webhook and manual-verify paths on one
// idempotent confirmation routine.  Neither caller is special-cased; the
// only difference is whether the session state was already carried by a
// verified webhook event or has to be fetched from the gateway.
type ReconcilerService struct {
	store    BookingStore
	catalog  CatalogStore
	gateway  payment.Gateway
	notifier Notifier
	now      func() time.Time
}

// NewReconcilerService wires a reconciler.  notifier may be nil, in which
// case confirmations simply go unnotified.
func NewReconcilerService(store BookingStore, catalog CatalogStore, gateway payment.Gateway, notifier Notifier) *ReconcilerService {
	if store == nil || catalog == nil || gateway == nil {
		panic("nil dependency passed to NewReconcilerService")
	}
	return &ReconcilerService{
		store:    store,
		catalog:  catalog,
		gateway:  gateway,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// BookingByReference loads a booking for read-only display.
func (s *ReconcilerService) BookingByReference(ctx context.Context, reference string) (*model.Booking, error) {
	b, err := s.store.ByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

// VerifyByReference is the manual poll path: it loads the booking, asks
// the gateway for the session state and runs the shared confirmation.
// When the session is unpaid it surfaces the checkout URL so the parent
// can finish paying.
func (s *ReconcilerService) VerifyByReference(ctx context.Context, reference string) (*VerifyResult, error) {
	b, err := s.store.ByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	outcome, state, err := s.confirm(ctx, b, nil)
	if err != nil {
		return nil, err
	}
	res := &VerifyResult{Outcome: outcome, Booking: b}
	if outcome == OutcomeStillPending && state != nil {
		res.CheckoutURL = state.URL
	}
	return res, nil
}

// HandleSessionPaid is the webhook path.  The event has already been
// signature-verified; state carries what the event reported.  If the
// local booking row has been lost, it is rebuilt from session metadata
// before confirmation proceeds; the metadata is required to be
// self-sufficient for exactly this reason.
func (s *ReconcilerService) HandleSessionPaid(ctx context.Context, sessionID string, state *payment.SessionState) (Outcome, error) {
	b, err := s.store.BySessionID(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if b == nil {
		b, err = s.restoreFromMetadata(ctx, sessionID, state)
		if err != nil {
			return "", err
		}
	}
	if b.Status == model.BookingCancelled {
		// The session outlived the booking.  Acknowledge so the provider
		// stops redelivering; a captured payment needs a manual refund.
		if state != nil && state.Paid {
			log.Printf("reconciler: ALERT payment captured for cancelled booking %s (session %s); refund required", b.Reference, sessionID)
		}
		return OutcomeCancelled, nil
	}
	outcome, _, err := s.confirm(ctx, b, state)
	return outcome, err
}

// confirm is the single idempotent pending→paid transition.  state may be
// nil, in which case it is fetched from the gateway.  The idempotence
// guard (an early return on paid/complete) plus the conditional MarkPaid
// update and the unique key behind InsertDays make a webhook racing a
// manual verify harmless.
func (s *ReconcilerService) confirm(ctx context.Context, b *model.Booking, state *payment.SessionState) (Outcome, *payment.SessionState, error) {
	switch b.Status {
	case model.BookingPaid, model.BookingComplete:
		// Re-run day materialization before acknowledging: a prior
		// confirmation may have failed between MarkPaid and InsertDays,
		// and this replay is the only retry there is.  The unique key
		// makes it a no-op when the rows already exist.
		if err := s.materializeDays(ctx, b); err != nil {
			return "", nil, err
		}
		return OutcomeAlreadyPaid, nil, nil
	case model.BookingCancelled:
		return "", nil, ErrInvalidState
	}
	if b.StripeCheckoutSessionID == nil {
		return "", nil, fmt.Errorf("booking %s has no checkout session", b.Reference)
	}
	if state == nil {
		var err error
		state, err = s.gateway.SessionState(ctx, *b.StripeCheckoutSessionID)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrGateway, err)
		}
	}
	if !state.Paid {
		return OutcomeStillPending, state, nil
	}

	won, err := s.store.MarkPaid(ctx, b.ID, state.PaymentIntentID)
	if err != nil {
		return "", nil, err
	}
	if !won {
		// The competing confirmation owns the transition; materialize
		// anyway in case it died before its InsertDays (duplicates are
		// absorbed by the unique key).
		if err := s.materializeDays(ctx, b); err != nil {
			return "", nil, err
		}
		return OutcomeAlreadyPaid, nil, nil
	}
	b.Status = model.BookingPaid
	if state.PaymentIntentID != "" {
		intent := state.PaymentIntentID
		b.StripePaymentIntentID = &intent
	}

	if err := s.materializeDays(ctx, b); err != nil {
		// The status change is durable; day materialization will be
		// retried by the gateway's webhook redelivery or a manual verify
		// re-run, and duplicates are absorbed by the unique key.
		return "", nil, err
	}

	s.notifyConfirmed(ctx, b)
	return OutcomeVerified, nil, nil
}

// materializeDays creates one BookingDay per attended ClubDay: the
// explicit selected dates, or every available day for full_week options
// booked without explicit dates.
func (s *ReconcilerService) materializeDays(ctx context.Context, b *model.Booking) error {
	option, err := s.catalog.OptionByID(ctx, b.BookingOptionID)
	if err != nil {
		return err
	}
	slot := model.SlotFullDay
	if option != nil {
		slot = option.TimeSlot
	}
	var days []model.ClubDay
	if len(b.SelectedDates) == 0 {
		days, err = s.catalog.AvailableDays(ctx, b.ClubID)
	} else {
		days, err = s.catalog.DaysByDates(ctx, b.ClubID, b.SelectedDates)
	}
	if err != nil {
		return err
	}
	dayIDs := make([]uint64, 0, len(days))
	for _, d := range days {
		dayIDs = append(dayIDs, d.ID)
	}
	return s.store.InsertDays(ctx, b.ID, dayIDs, slot)
}

func (s *ReconcilerService) notifyConfirmed(ctx context.Context, b *model.Booking) {
	if s.notifier == nil {
		return
	}
	club, err := s.catalog.ClubByID(ctx, b.ClubID)
	if err != nil {
		log.Printf("reconciler: load club for notification failed: %v", err)
	}
	option, err := s.catalog.OptionByID(ctx, b.BookingOptionID)
	if err != nil {
		log.Printf("reconciler: load option for notification failed: %v", err)
	}
	if err := s.notifier.BookingConfirmed(ctx, b, club, option); err != nil {
		log.Printf("reconciler: confirmation notification failed for %s: %v", b.Reference, err)
	}
}

// restoreFromMetadata rebuilds a booking row from checkout session
// metadata.  Only invoked when a paid session has no local row.
func (s *ReconcilerService) restoreFromMetadata(ctx context.Context, sessionID string, state *payment.SessionState) (*model.Booking, error) {
	if state == nil || len(state.Metadata) == 0 {
		var err error
		state, err = s.gateway.SessionState(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGateway, err)
		}
	}
	b, err := bookingFromMetadata(state.Metadata)
	if err != nil {
		return nil, err
	}
	b.StripeCheckoutSessionID = &sessionID
	if err := s.store.Restore(ctx, b); err != nil {
		return nil, err
	}
	log.Printf("reconciler: restored booking %s from session metadata", b.Reference)
	return b, nil
}

// bookingFromMetadata parses the metadata written by sessionMetadata.
func bookingFromMetadata(m map[string]string) (*model.Booking, error) {
	ref := m["booking_reference"]
	if ref == "" {
		return nil, fmt.Errorf("session metadata missing booking_reference")
	}
	clubID, err := strconv.ParseUint(m["club_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session metadata: bad club_id: %w", err)
	}
	optionID, err := strconv.ParseUint(m["booking_option_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session metadata: bad booking_option_id: %w", err)
	}
	numChildren, err := strconv.Atoi(m["num_children"])
	if err != nil || numChildren < 1 {
		return nil, fmt.Errorf("session metadata: bad num_children %q", m["num_children"])
	}
	subtotal, _ := strconv.ParseUint(m["subtotal_pence"], 10, 32)
	discount, _ := strconv.ParseUint(m["discount_pence"], 10, 32)
	total, err := strconv.ParseUint(m["total_pence"], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("session metadata: bad total_pence: %w", err)
	}
	var dates []string
	if raw := strings.TrimSpace(m["selected_dates"]); raw != "" {
		dates = strings.Split(raw, ",")
	}
	b := &model.Booking{
		Reference:       ref,
		ClubID:          clubID,
		BookingOptionID: optionID,
		ParentName:      m["parent_name"],
		ParentEmail:     m["parent_email"],
		ParentPhone:     m["parent_phone"],
		NumChildren:     uint8(numChildren),
		SelectedDates:   dates,
		SubtotalPence:   uint32(subtotal),
		DiscountPence:   uint32(discount),
		TotalPence:      uint32(total),
		Status:          model.BookingPending,
	}
	if raw := m["promo_code_id"]; raw != "" {
		if id, perr := strconv.ParseUint(raw, 10, 64); perr == nil {
			b.PromoCodeID = &id
		}
	}
	return b, nil
}
