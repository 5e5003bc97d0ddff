package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brightdays/holiday-club-booking/internal/booking"
	"github.com/brightdays/holiday-club-booking/internal/model"
	"github.com/brightdays/holiday-club-booking/internal/payment"
)

// Slim in-memory fakes for the booking ports, enough to drive the HTTP
// layer end to end without a database or a payment provider.

type fakeCatalog struct {
	clubs   map[uint64]*model.Club
	options map[uint64]*model.BookingOption
	days    map[uint64][]model.ClubDay
}

func (f *fakeCatalog) ClubByID(_ context.Context, id uint64) (*model.Club, error) {
	if c, ok := f.clubs[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCatalog) OptionByID(_ context.Context, id uint64) (*model.BookingOption, error) {
	if o, ok := f.options[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCatalog) AvailableDays(_ context.Context, clubID uint64) ([]model.ClubDay, error) {
	return f.days[clubID], nil
}

func (f *fakeCatalog) DaysByDates(_ context.Context, clubID uint64, dates []string) ([]model.ClubDay, error) {
	want := map[string]struct{}{}
	for _, d := range dates {
		want[d] = struct{}{}
	}
	var out []model.ClubDay
	for _, d := range f.days[clubID] {
		if _, ok := want[d.Date.Format("2006-01-02")]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakePromos struct {
	byCode map[string]*model.PromoCode
}

func (f *fakePromos) ByCode(_ context.Context, code string) (*model.PromoCode, error) {
	if p, ok := f.byCode[code]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakePromos) ByID(_ context.Context, id uint64) (*model.PromoCode, error) {
	for _, p := range f.byCode {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeStore struct {
	bookings  map[uint64]*model.Booking
	byRef     map[string]uint64
	bySession map[string]uint64
	children  map[uint64][]model.Child
	nextID    uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookings:  map[uint64]*model.Booking{},
		byRef:     map[string]uint64{},
		bySession: map[string]uint64{},
		children:  map[uint64][]model.Child{},
	}
}

func (f *fakeStore) Create(_ context.Context, b *model.Booking, _ []uint64, open booking.SessionOpener) error {
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = time.Now().UTC()
	sessionID, err := open(b)
	if err != nil {
		b.ID = 0
		return err
	}
	b.StripeCheckoutSessionID = &sessionID
	cp := *b
	f.bookings[b.ID] = &cp
	f.byRef[b.Reference] = b.ID
	f.bySession[sessionID] = b.ID
	return nil
}

func (f *fakeStore) Restore(_ context.Context, b *model.Booking) error {
	f.nextID++
	b.ID = f.nextID
	cp := *b
	f.bookings[b.ID] = &cp
	f.byRef[b.Reference] = b.ID
	if b.StripeCheckoutSessionID != nil {
		f.bySession[*b.StripeCheckoutSessionID] = b.ID
	}
	return nil
}

func (f *fakeStore) ByID(_ context.Context, id uint64) (*model.Booking, error) {
	if b, ok := f.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) ByReference(_ context.Context, ref string) (*model.Booking, error) {
	if id, ok := f.byRef[ref]; ok {
		return f.ByID(context.Background(), id)
	}
	return nil, nil
}

func (f *fakeStore) BySessionID(_ context.Context, sessionID string) (*model.Booking, error) {
	if id, ok := f.bySession[sessionID]; ok {
		return f.ByID(context.Background(), id)
	}
	return nil, nil
}

func (f *fakeStore) MarkPaid(_ context.Context, id uint64, intentID string) (bool, error) {
	b, ok := f.bookings[id]
	if !ok || b.Status != model.BookingPending {
		return false, nil
	}
	b.Status = model.BookingPaid
	if intentID != "" {
		b.StripePaymentIntentID = &intentID
	}
	return true, nil
}

func (f *fakeStore) InsertDays(_ context.Context, _ uint64, _ []uint64, _ string) error {
	return nil
}

func (f *fakeStore) CountChildren(_ context.Context, bookingID uint64) (int, error) {
	return len(f.children[bookingID]), nil
}

func (f *fakeStore) InsertChildrenComplete(_ context.Context, bookingID uint64, children []model.Child) (bool, error) {
	b, ok := f.bookings[bookingID]
	if !ok || b.Status != model.BookingPaid {
		return false, nil
	}
	f.children[bookingID] = append(f.children[bookingID], children...)
	b.Status = model.BookingComplete
	return true, nil
}

func (f *fakeStore) Cancel(_ context.Context, b *model.Booking, _ []uint64, _ string) (bool, error) {
	stored, ok := f.bookings[b.ID]
	if !ok || stored.Status != model.BookingPending {
		return false, nil
	}
	stored.Status = model.BookingCancelled
	return true, nil
}

func (f *fakeStore) ExpiredPending(_ context.Context, before time.Time) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range f.bookings {
		if b.Status == model.BookingPending && b.CreatedAt.Before(before) {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeGateway struct {
	sessions map[string]*payment.SessionState
	created  int
}

func (f *fakeGateway) CreateSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	f.created++
	id := fmt.Sprintf("cs_test_%d", f.created)
	url := "https://checkout.test/" + id
	f.sessions[id] = &payment.SessionState{URL: url, Metadata: req.Metadata}
	return &payment.Session{ID: id, URL: url}, nil
}

func (f *fakeGateway) SessionState(_ context.Context, sessionID string) (*payment.SessionState, error) {
	if st, ok := f.sessions[sessionID]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, fmt.Errorf("no such session %s", sessionID)
}

func (f *fakeGateway) ExpireSession(_ context.Context, sessionID string) error {
	if _, ok := f.sessions[sessionID]; !ok {
		return fmt.Errorf("no such session %s", sessionID)
	}
	return nil
}

func (f *fakeGateway) pay(sessionID, intentID string) {
	if st, ok := f.sessions[sessionID]; ok {
		st.Paid = true
		st.PaymentIntentID = intentID
	}
}

// fixture wires real services over the fakes the way cmd/server does
// over the real repositories.
type fixture struct {
	catalog *fakeCatalog
	promos  *fakePromos
	store   *fakeStore
	gateway *fakeGateway
	booking *BookingHandler
	promo   *PromoHandler
	echo    *echo.Echo
}

func newFixture() *fixture {
	start := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	cat := &fakeCatalog{
		clubs: map[uint64]*model.Club{
			1: {ID: 1, Slug: "summer-camp", Name: "Summer Camp", StartDate: start, EndDate: start.AddDate(0, 0, 4), IsActive: true, BookingsOpen: true},
		},
		options: map[uint64]*model.BookingOption{
			12: {ID: 12, ClubID: 1, Name: "Multi day", OptionType: model.OptionMultiDay, TimeSlot: model.SlotFullDay, PricePerChildPence: 2000, IsActive: true},
		},
		days: map[uint64][]model.ClubDay{},
	}
	for i := 0; i < 5; i++ {
		cat.days[1] = append(cat.days[1], model.ClubDay{
			ID: uint64(100 + i), ClubID: 1, Date: start.AddDate(0, 0, i),
			MorningCapacity: 20, AfternoonCapacity: 20, IsAvailable: true,
		})
	}

	f := &fixture{
		catalog: cat,
		promos:  &fakePromos{byCode: map[string]*model.PromoCode{}},
		store:   newFakeStore(),
		gateway: &fakeGateway{sessions: map[string]*payment.SessionState{}},
	}

	reservations := booking.NewReservationService(f.catalog, f.promos, f.store, f.gateway, booking.CheckoutConfig{
		Currency:   "gbp",
		SuccessURL: "https://clubs.test/booked",
		CancelURL:  "https://clubs.test/cancelled",
	})
	reconciler := booking.NewReconcilerService(f.store, f.catalog, f.gateway, nil)
	completion := booking.NewCompletionService(f.store, f.catalog, nil)

	f.booking = NewBookingHandler(reservations, reconciler, completion)
	f.promo = NewPromoHandler(f.promos)

	e := echo.New()
	e.Validator = NewValidator()
	e.POST("/v1/bookings", f.booking.CreateBooking)
	e.GET("/v1/bookings/:reference", f.booking.GetBooking)
	e.POST("/v1/bookings/:reference/verify-payment", f.booking.VerifyPayment)
	e.POST("/v1/bookings/:reference/children", f.booking.SubmitChildren)
	e.POST("/v1/promo-codes/validate", f.promo.ValidatePromo)
	f.echo = e
	return f
}
