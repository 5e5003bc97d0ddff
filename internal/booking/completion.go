package booking

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/brightdays/holiday-club-booking/internal/model"
)

// ChildInput is one child record as submitted by the parent after
// payment.
type ChildInput struct {
	FirstName             string
	LastName              string
	DateOfBirth           time.Time
	Allergies             string
	MedicalNotes          string
	EmergencyContactName  string
	EmergencyContactPhone string
	PickupAuthorization   string
	PhotoConsent          bool
}

// CompletionService accepts the per-child safeguarding records exactly
// once and moves the booking from paid to complete.
type CompletionService struct {
	store    BookingStore
	catalog  CatalogStore
	notifier Notifier
}

// NewCompletionService wires a completion service.  notifier may be nil.
func NewCompletionService(store BookingStore, catalog CatalogStore, notifier Notifier) *CompletionService {
	if store == nil || catalog == nil {
		panic("nil dependency passed to NewCompletionService")
	}
	return &CompletionService{store: store, catalog: catalog, notifier: notifier}
}

// SubmitChildren validates and writes the child batch, then performs the
// paid→complete transition.  The batch insert and the status change are
// one transaction, so a partial set of children is never observable.
// Rejections: ErrInvalidState unless the booking is exactly paid,
// ErrCountMismatch when the batch size differs from num_children and
// ErrAlreadySubmitted when rows already exist.
func (s *CompletionService) SubmitChildren(ctx context.Context, reference string, inputs []ChildInput) (*model.Booking, error) {
	b, err := s.store.ByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if b.Status != model.BookingPaid {
		return nil, ErrInvalidState
	}
	if len(inputs) != int(b.NumChildren) {
		return nil, ErrCountMismatch
	}
	children := make([]model.Child, 0, len(inputs))
	for _, in := range inputs {
		c, err := childFromInput(b.ID, in)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	existing, err := s.store.CountChildren(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAlreadySubmitted
	}
	won, err := s.store.InsertChildrenComplete(ctx, b.ID, children)
	if err != nil {
		return nil, err
	}
	if !won {
		// A concurrent submission moved the booking out of paid first.
		return nil, ErrAlreadySubmitted
	}
	b.Status = model.BookingComplete

	s.notifyCompleted(ctx, b)
	return b, nil
}

func (s *CompletionService) notifyCompleted(ctx context.Context, b *model.Booking) {
	if s.notifier == nil {
		return
	}
	club, err := s.catalog.ClubByID(ctx, b.ClubID)
	if err != nil {
		log.Printf("completion: load club for notification failed: %v", err)
	}
	if err := s.notifier.BookingCompleted(ctx, b, club); err != nil {
		log.Printf("completion: notification failed for %s: %v", b.Reference, err)
	}
}

func childFromInput(bookingID uint64, in ChildInput) (model.Child, error) {
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return model.Child{}, invalidField("children", "child name is required")
	}
	if in.DateOfBirth.IsZero() {
		return model.Child{}, invalidField("children", "child date of birth is required")
	}
	if strings.TrimSpace(in.EmergencyContactName) == "" || strings.TrimSpace(in.EmergencyContactPhone) == "" {
		return model.Child{}, invalidField("children", "emergency contact is required")
	}
	c := model.Child{
		BookingID:             bookingID,
		FirstName:             first,
		LastName:              last,
		DateOfBirth:           in.DateOfBirth,
		EmergencyContactName:  strings.TrimSpace(in.EmergencyContactName),
		EmergencyContactPhone: strings.TrimSpace(in.EmergencyContactPhone),
		PhotoConsent:          in.PhotoConsent,
	}
	if v := strings.TrimSpace(in.Allergies); v != "" {
		c.Allergies = &v
	}
	if v := strings.TrimSpace(in.MedicalNotes); v != "" {
		c.MedicalNotes = &v
	}
	if v := strings.TrimSpace(in.PickupAuthorization); v != "" {
		c.PickupAuthorization = &v
	}
	return c, nil
}
