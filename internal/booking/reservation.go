package booking

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brightdays/holiday-club-booking/internal/model"
	"github.com/brightdays/holiday-club-booking/internal/payment"
	"github.com/brightdays/holiday-club-booking/internal/pricing"
	"github.com/brightdays/holiday-club-booking/internal/promo"
)

// minSessionLifetime is the shortest checkout session expiry Stripe
// accepts (30 minutes from creation).
const minSessionLifetime = 30 * time.Minute

// CheckoutConfig carries the gateway redirect targets and currency used
// when opening checkout sessions.
type CheckoutConfig struct {
	Currency   string        // ISO code, e.g. "gbp"
	SuccessURL string        // redirect after payment
	CancelURL  string        // redirect after abandoning checkout
	PendingTTL time.Duration // session expiry, matched to the sweep cutoff (zero keeps the provider default)
}

// CreateBookingInput is the request to open a provisional reservation.
type CreateBookingInput struct {
	ClubID          uint64
	BookingOptionID uint64
	SelectedDates   []string // "2006-01-02", required for single/multi day
	ParentName      string
	ParentEmail     string
	ParentPhone     string
	NumChildren     int
	PromoCode       string // optional; rejection degrades to no discount
}

// CreateBookingResult is returned to the caller so it can redirect the
// parent to the hosted checkout page.
type CreateBookingResult struct {
	Booking     *model.Booking
	CheckoutURL string
	PromoError  error // non-nil when a supplied code was rejected
}

// ReservationService creates pending bookings and their checkout
// sessions.  It is also the place that cancels pending bookings, since
// cancellation releases the capacity and promo usage that creation took.
type ReservationService struct {
	catalog CatalogStore
	promos  PromoStore
	store   BookingStore
	gateway payment.Gateway
	cfg     CheckoutConfig
	now     func() time.Time
}

// NewReservationService wires a reservation service.  All dependencies
// must be non-nil.
func NewReservationService(catalog CatalogStore, promos PromoStore, store BookingStore, gateway payment.Gateway, cfg CheckoutConfig) *ReservationService {
	if catalog == nil || promos == nil || store == nil || gateway == nil {
		panic("nil dependency passed to NewReservationService")
	}
	return &ReservationService{
		catalog: catalog,
		promos:  promos,
		store:   store,
		gateway: gateway,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateBooking runs the full reservation path: catalog checks, promo
// resolution, pricing, then a single transaction covering the booking
// row, capacity reservation, promo consumption and checkout session
// creation.  A gateway failure rolls everything back, so no orphaned
// pending rows are left behind.
func (s *ReservationService) CreateBooking(ctx context.Context, in CreateBookingInput) (*CreateBookingResult, error) {
	club, err := s.catalog.ClubByID(ctx, in.ClubID)
	if err != nil {
		return nil, err
	}
	if club == nil || !club.IsActive {
		return nil, ErrClubNotFound
	}
	if !club.BookingsOpen {
		return nil, ErrBookingsClosed
	}
	option, err := s.catalog.OptionByID(ctx, in.BookingOptionID)
	if err != nil {
		return nil, err
	}
	if option == nil || !option.IsActive || option.ClubID != club.ID {
		return nil, ErrOptionNotFound
	}
	if in.NumChildren < 1 {
		return nil, invalidField("num_children", "must be at least 1")
	}
	dates, err := normalizeDates(option.OptionType, in.SelectedDates)
	if err != nil {
		return nil, err
	}
	days, err := s.resolveDays(ctx, club.ID, option.OptionType, dates)
	if err != nil {
		return nil, err
	}

	// Promo resolution is advisory here: a rejected code means the parent
	// pays full price, it does not fail the booking.
	var promoCode *model.PromoCode
	var promoErr error
	if code := promo.Normalize(in.PromoCode); code != "" {
		rec, perr := s.promos.ByCode(ctx, code)
		if perr != nil {
			return nil, perr
		}
		if verr := promo.Validate(rec, club.ID, s.now()); verr != nil {
			promoErr = verr
		} else {
			promoCode = rec
		}
	}

	var percent uint8
	var promoID *uint64
	if promoCode != nil {
		percent = promoCode.DiscountPercent
		id := promoCode.ID
		promoID = &id
	}
	quote := pricing.Compute(option.OptionType, option.PricePerChildPence, len(dates), in.NumChildren, percent)

	b := &model.Booking{
		Reference:       uuid.NewString(),
		ClubID:          club.ID,
		BookingOptionID: option.ID,
		ParentName:      strings.TrimSpace(in.ParentName),
		ParentEmail:     strings.TrimSpace(in.ParentEmail),
		ParentPhone:     strings.TrimSpace(in.ParentPhone),
		NumChildren:     uint8(in.NumChildren),
		SelectedDates:   dates,
		SubtotalPence:   quote.SubtotalPence,
		DiscountPence:   quote.DiscountPence,
		TotalPence:      quote.TotalPence,
		PromoCodeID:     promoID,
		Status:          model.BookingPending,
	}

	dayIDs := make([]uint64, 0, len(days))
	for _, d := range days {
		dayIDs = append(dayIDs, d.ID)
	}
	// The reserved set is persisted with the booking so cancellation
	// releases exactly what was taken, even if the catalog changes.
	b.ReservedDayIDs = dayIDs

	var checkoutURL string
	err = s.store.Create(ctx, b, dayIDs, func(created *model.Booking) (string, error) {
		sess, gerr := s.gateway.CreateSession(ctx, payment.SessionRequest{
			Reference:     created.Reference,
			AmountPence:   int64(created.TotalPence),
			Currency:      s.cfg.Currency,
			Description:   fmt.Sprintf("%s - %s", club.Name, option.Name),
			CustomerEmail: created.ParentEmail,
			SuccessURL:    s.cfg.SuccessURL,
			CancelURL:     s.cfg.CancelURL,
			ExpiresAt:     s.sessionExpiry(),
			Metadata:      sessionMetadata(created),
		})
		if gerr != nil {
			return "", fmt.Errorf("%w: %v", ErrGateway, gerr)
		}
		checkoutURL = sess.URL
		return sess.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return &CreateBookingResult{Booking: b, CheckoutURL: checkoutURL, PromoError: promoErr}, nil
}

// CancelPending performs the administrative pending→cancelled transition,
// handing back the capacity and promo usage the reservation took.  It
// returns ErrInvalidState when the booking is no longer pending.
func (s *ReservationService) CancelPending(ctx context.Context, reference string) (*model.Booking, error) {
	b, err := s.store.ByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if b.Status != model.BookingPending {
		return nil, ErrInvalidState
	}
	return b, s.cancel(ctx, b)
}

// SweepExpired cancels pending bookings older than maxAge.  It is called
// by the background sweeper and by the manual admin trigger.  Individual
// failures are logged and skipped so one bad row cannot stall the sweep.
func (s *ReservationService) SweepExpired(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := s.now().Add(-maxAge)
	stale, err := s.store.ExpiredPending(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	swept := 0
	for i := range stale {
		b := stale[i]
		if err := s.cancel(ctx, &b); err != nil {
			log.Printf("sweep: cancel booking %s failed: %v", b.Reference, err)
			continue
		}
		swept++
	}
	return swept, nil
}

// sessionExpiry returns the absolute expiry for a new checkout session,
// floored at the shortest lifetime the provider accepts.
func (s *ReservationService) sessionExpiry() time.Time {
	if s.cfg.PendingTTL <= 0 {
		return time.Time{}
	}
	ttl := s.cfg.PendingTTL
	if ttl < minSessionLifetime {
		ttl = minSessionLifetime
	}
	return s.now().Add(ttl)
}

func (s *ReservationService) cancel(ctx context.Context, b *model.Booking) error {
	option, err := s.catalog.OptionByID(ctx, b.BookingOptionID)
	if err != nil {
		return err
	}
	slot := model.SlotFullDay
	if option != nil {
		slot = option.TimeSlot
	}
	dayIDs := b.ReservedDayIDs
	if len(dayIDs) == 0 {
		// Rows written before the reserved set was persisted (or rebuilt
		// from session metadata) fall back to re-deriving it.
		days, err := s.resolveDaysForBooking(ctx, b, option)
		if err != nil {
			return err
		}
		for _, d := range days {
			dayIDs = append(dayIDs, d.ID)
		}
	}
	ok, err := s.store.Cancel(ctx, b, dayIDs, slot)
	if err != nil {
		return err
	}
	if !ok {
		// lost a race with a confirmation or another cancel
		return ErrInvalidState
	}
	b.Status = model.BookingCancelled
	// Close the checkout session so the cancelled booking can no longer
	// capture money.  Best effort: if this fails the webhook path still
	// refuses to confirm a cancelled booking.
	if b.StripeCheckoutSessionID != nil {
		if err := s.gateway.ExpireSession(ctx, *b.StripeCheckoutSessionID); err != nil {
			log.Printf("cancel: expire session for %s failed: %v", b.Reference, err)
		}
	}
	return nil
}

// resolveDays maps an option's date selection onto ClubDay rows.  For
// full_week options every available day counts; for the others each
// selected date must resolve to a bookable day.
func (s *ReservationService) resolveDays(ctx context.Context, clubID uint64, optionType string, dates []string) ([]model.ClubDay, error) {
	if optionType == model.OptionFullWeek {
		days, err := s.catalog.AvailableDays(ctx, clubID)
		if err != nil {
			return nil, err
		}
		if len(days) == 0 {
			return nil, invalidField("club", "no bookable days for this club")
		}
		return days, nil
	}
	days, err := s.catalog.DaysByDates(ctx, clubID, dates)
	if err != nil {
		return nil, err
	}
	if len(days) != len(dates) {
		missing := missingDates(dates, days)
		return nil, invalidField("selected_dates", "not bookable: "+strings.Join(missing, ", "))
	}
	return days, nil
}

func (s *ReservationService) resolveDaysForBooking(ctx context.Context, b *model.Booking, option *model.BookingOption) ([]model.ClubDay, error) {
	optionType := model.OptionFullWeek
	if option != nil {
		optionType = option.OptionType
	}
	if optionType == model.OptionFullWeek || len(b.SelectedDates) == 0 {
		return s.catalog.AvailableDays(ctx, b.ClubID)
	}
	return s.catalog.DaysByDates(ctx, b.ClubID, b.SelectedDates)
}

// normalizeDates validates and sorts the selected dates for the option
// type.  full_week ignores any supplied dates; single_day needs exactly
// one and multi_day at least two distinct dates.
func normalizeDates(optionType string, raw []string) ([]string, error) {
	if optionType == model.OptionFullWeek {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(raw))
	dates := make([]string, 0, len(raw))
	for _, d := range raw {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, invalidField("selected_dates", "invalid date "+strconv.Quote(d))
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Strings(dates)
	switch optionType {
	case model.OptionSingleDay:
		if len(dates) != 1 {
			return nil, invalidField("selected_dates", "single_day requires exactly one date")
		}
	case model.OptionMultiDay:
		if len(dates) < 2 {
			return nil, invalidField("selected_dates", "multi_day requires at least two dates")
		}
	default:
		return nil, invalidField("option_type", "unknown option type "+strconv.Quote(optionType))
	}
	return dates, nil
}

func missingDates(wanted []string, got []model.ClubDay) []string {
	have := make(map[string]struct{}, len(got))
	for _, d := range got {
		have[d.Date.Format("2006-01-02")] = struct{}{}
	}
	missing := make([]string, 0)
	for _, w := range wanted {
		if _, ok := have[w]; !ok {
			missing = append(missing, w)
		}
	}
	return missing
}

// sessionMetadata flattens the booking into checkout session metadata so
// a webhook event alone can rebuild it if the local row is ever lost.
func sessionMetadata(b *model.Booking) map[string]string {
	m := map[string]string{
		"booking_reference": b.Reference,
		"club_id":           strconv.FormatUint(b.ClubID, 10),
		"booking_option_id": strconv.FormatUint(b.BookingOptionID, 10),
		"selected_dates":    strings.Join(b.SelectedDates, ","),
		"parent_name":       b.ParentName,
		"parent_email":      b.ParentEmail,
		"parent_phone":      b.ParentPhone,
		"num_children":      strconv.Itoa(int(b.NumChildren)),
		"subtotal_pence":    strconv.FormatUint(uint64(b.SubtotalPence), 10),
		"discount_pence":    strconv.FormatUint(uint64(b.DiscountPence), 10),
		"total_pence":       strconv.FormatUint(uint64(b.TotalPence), 10),
	}
	if b.PromoCodeID != nil {
		m["promo_code_id"] = strconv.FormatUint(*b.PromoCodeID, 10)
	}
	return m
}
