package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brightdays/holiday-club-booking/internal/model"
	"github.com/brightdays/holiday-club-booking/internal/payment"
)

// In-memory fakes for the store, catalog, promo lookup, gateway and
// notifier.  They mimic the conditional-update semantics of the real
// repositories closely enough to exercise the lifecycle invariants.

type fakeCatalog struct {
	clubs   map[uint64]*model.Club
	options map[uint64]*model.BookingOption
	days    map[uint64][]model.ClubDay // by club id, ordered by date
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		clubs:   map[uint64]*model.Club{},
		options: map[uint64]*model.BookingOption{},
		days:    map[uint64][]model.ClubDay{},
	}
}

func (f *fakeCatalog) ClubByID(_ context.Context, id uint64) (*model.Club, error) {
	c, ok := f.clubs[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCatalog) OptionByID(_ context.Context, id uint64) (*model.BookingOption, error) {
	o, ok := f.options[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeCatalog) AvailableDays(_ context.Context, clubID uint64) ([]model.ClubDay, error) {
	var out []model.ClubDay
	for _, d := range f.days[clubID] {
		if d.IsAvailable {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeCatalog) DaysByDates(_ context.Context, clubID uint64, dates []string) ([]model.ClubDay, error) {
	want := map[string]struct{}{}
	for _, d := range dates {
		want[d] = struct{}{}
	}
	var out []model.ClubDay
	for _, d := range f.days[clubID] {
		if !d.IsAvailable {
			continue
		}
		if _, ok := want[d.Date.Format("2006-01-02")]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakePromos struct {
	byCode map[string]*model.PromoCode
}

func newFakePromos() *fakePromos { return &fakePromos{byCode: map[string]*model.PromoCode{}} }

func (f *fakePromos) ByCode(_ context.Context, code string) (*model.PromoCode, error) {
	p, ok := f.byCode[code]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
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
	days      map[uint64]map[uint64]string // booking id -> day id -> slot
	children  map[uint64][]model.Child
	reserved  map[uint64]int // day id -> children currently reserved
	capacity  map[uint64]int // day id -> per-slot capacity
	promoUses map[uint64]int // promo id -> consumed count
	nextID    uint64

	insertDaysErr error // next InsertDays call fails with this, then clears
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookings:  map[uint64]*model.Booking{},
		byRef:     map[string]uint64{},
		bySession: map[string]uint64{},
		days:      map[uint64]map[uint64]string{},
		children:  map[uint64][]model.Child{},
		reserved:  map[uint64]int{},
		capacity:  map[uint64]int{},
		promoUses: map[uint64]int{},
	}
}

func (f *fakeStore) Create(_ context.Context, b *model.Booking, dayIDs []uint64, open SessionOpener) error {
	// capacity check with floor, mirroring the conditional UPDATEs
	for _, id := range dayIDs {
		if cap, ok := f.capacity[id]; ok && f.reserved[id]+int(b.NumChildren) > cap {
			return fmt.Errorf("%w: day %d", ErrCapacityExhausted, id)
		}
	}
	for _, id := range dayIDs {
		f.reserved[id] += int(b.NumChildren)
	}
	if b.PromoCodeID != nil {
		f.promoUses[*b.PromoCodeID]++
	}
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = time.Now().UTC()

	sessionID, err := open(b)
	if err != nil {
		// rollback
		for _, id := range dayIDs {
			f.reserved[id] -= int(b.NumChildren)
		}
		if b.PromoCodeID != nil {
			f.promoUses[*b.PromoCodeID]--
		}
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
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) ByReference(_ context.Context, ref string) (*model.Booking, error) {
	id, ok := f.byRef[ref]
	if !ok {
		return nil, nil
	}
	return f.ByID(context.Background(), id)
}

func (f *fakeStore) BySessionID(_ context.Context, sessionID string) (*model.Booking, error) {
	id, ok := f.bySession[sessionID]
	if !ok {
		return nil, nil
	}
	return f.ByID(context.Background(), id)
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

func (f *fakeStore) InsertDays(_ context.Context, bookingID uint64, dayIDs []uint64, slot string) error {
	if f.insertDaysErr != nil {
		err := f.insertDaysErr
		f.insertDaysErr = nil // fail once, then recover
		return err
	}
	rows, ok := f.days[bookingID]
	if !ok {
		rows = map[uint64]string{}
		f.days[bookingID] = rows
	}
	for _, id := range dayIDs {
		if _, dup := rows[id]; dup {
			continue // unique key absorbs replays
		}
		rows[id] = slot
	}
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

func (f *fakeStore) Cancel(_ context.Context, b *model.Booking, dayIDs []uint64, slot string) (bool, error) {
	stored, ok := f.bookings[b.ID]
	if !ok || stored.Status != model.BookingPending {
		return false, nil
	}
	stored.Status = model.BookingCancelled
	for _, id := range dayIDs {
		f.reserved[id] -= int(stored.NumChildren)
	}
	if stored.PromoCodeID != nil {
		f.promoUses[*stored.PromoCodeID]--
	}
	_ = slot
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
	sessions   map[string]*payment.SessionState
	createErr  error
	stateErr   error
	created    int
	expired    []string  // session ids closed via ExpireSession
	lastExpiry time.Time // ExpiresAt of the most recent CreateSession
}

func newFakeGateway() *fakeGateway { return &fakeGateway{sessions: map[string]*payment.SessionState{}} }

func (f *fakeGateway) CreateSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	f.lastExpiry = req.ExpiresAt
	id := fmt.Sprintf("cs_test_%d", f.created)
	url := "https://checkout.test/" + id
	f.sessions[id] = &payment.SessionState{URL: url, Metadata: req.Metadata}
	return &payment.Session{ID: id, URL: url}, nil
}

func (f *fakeGateway) ExpireSession(_ context.Context, sessionID string) error {
	if _, ok := f.sessions[sessionID]; !ok {
		return errors.New("no such session")
	}
	f.expired = append(f.expired, sessionID)
	return nil
}

func (f *fakeGateway) SessionState(_ context.Context, sessionID string) (*payment.SessionState, error) {
	if f.stateErr != nil {
		return nil, f.stateErr
	}
	st, ok := f.sessions[sessionID]
	if !ok {
		return nil, errors.New("no such session")
	}
	cp := *st
	return &cp, nil
}

// pay marks a session paid, as the hosted checkout would.
func (f *fakeGateway) pay(sessionID, intentID string) {
	if st, ok := f.sessions[sessionID]; ok {
		st.Paid = true
		st.PaymentIntentID = intentID
	}
}

type fakeNotifier struct {
	confirmed []string // booking references
	completed []string
	err       error
}

func (f *fakeNotifier) BookingConfirmed(_ context.Context, b *model.Booking, _ *model.Club, _ *model.BookingOption) error {
	f.confirmed = append(f.confirmed, b.Reference)
	return f.err
}

func (f *fakeNotifier) BookingCompleted(_ context.Context, b *model.Booking, _ *model.Club) error {
	f.completed = append(f.completed, b.Reference)
	return f.err
}

// fixture builds a club with five available days, a per-slot capacity of
// cap children per day, and full-week/single/multi options.
type fixture struct {
	catalog *fakeCatalog
	promos  *fakePromos
	store   *fakeStore
	gateway *fakeGateway
	club    *model.Club
}

func newFixture(cap int) *fixture {
	f := &fixture{
		catalog: newFakeCatalog(),
		promos:  newFakePromos(),
		store:   newFakeStore(),
		gateway: newFakeGateway(),
	}
	f.club = &model.Club{
		ID: 1, Slug: "summer-camp", Name: "Summer Camp",
		StartDate:    time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC),
		IsActive:     true,
		BookingsOpen: true,
	}
	f.catalog.clubs[1] = f.club
	f.catalog.options[10] = &model.BookingOption{
		ID: 10, ClubID: 1, Name: "Full week", OptionType: model.OptionFullWeek,
		TimeSlot: model.SlotFullDay, PricePerChildPence: 9500, IsActive: true,
	}
	f.catalog.options[11] = &model.BookingOption{
		ID: 11, ClubID: 1, Name: "Single day", OptionType: model.OptionSingleDay,
		TimeSlot: model.SlotMorning, PricePerChildPence: 2500, IsActive: true,
	}
	f.catalog.options[12] = &model.BookingOption{
		ID: 12, ClubID: 1, Name: "Multi day", OptionType: model.OptionMultiDay,
		TimeSlot: model.SlotFullDay, PricePerChildPence: 2000, IsActive: true,
	}
	for i := 0; i < 5; i++ {
		day := model.ClubDay{
			ID:     uint64(100 + i),
			ClubID: 1,
			Date:   f.club.StartDate.AddDate(0, 0, i),
			MorningCapacity:   uint32(cap),
			AfternoonCapacity: uint32(cap),
			IsAvailable:       true,
		}
		f.catalog.days[1] = append(f.catalog.days[1], day)
		f.store.capacity[day.ID] = cap
	}
	return f
}

func (f *fixture) reservations() *ReservationService {
	return NewReservationService(f.catalog, f.promos, f.store, f.gateway, CheckoutConfig{
		Currency:   "gbp",
		SuccessURL: "https://clubs.test/booked",
		CancelURL:  "https://clubs.test/cancelled",
		PendingTTL: time.Hour,
	})
}

func (f *fixture) reconciler(n Notifier) *ReconcilerService {
	return NewReconcilerService(f.store, f.catalog, f.gateway, n)
}

func (f *fixture) completion(n Notifier) *CompletionService {
	return NewCompletionService(f.store, f.catalog, n)
}
