package service

import (
	"context"
	"fmt"
	"time"

	"townsquare/internal/middleware"
	"townsquare/internal/models"
	"townsquare/internal/payments"
	"townsquare/internal/repository"
)

// EventService implements event CRUD, the activity lifecycle and RSVPs.
type EventService struct {
	eventRepo repository.EventRepository
	registry  repository.ContentRegistry
	payments  payments.Provider
	isAdmin   AdminChecker
	// now is swapped in tests.
	now func() time.Time
}

type CreateEventInput struct {
	UserID           uint
	Title            string
	Description      string
	Date             time.Time
	Location         string
	ImageHash        string
	TicketPriceCents int64
}

type UpdateEventInput struct {
	UserID           uint
	EventID          uint
	Title            *string
	Description      *string
	Date             *time.Time
	Location         *string
	ImageHash        *string
	TicketPriceCents *int64
}

type RSVPInput struct {
	UserID     uint
	EventID    uint
	Status     models.RSVPStatus
	TicketType string
}

// RSVPResult carries the stored RSVP plus payment details when the
// event is ticketed.
type RSVPResult struct {
	Attendee *models.EventAttendee `json:"attendee"`
	Payment  *payments.Intent      `json:"payment,omitempty"`
}

func NewEventService(
	eventRepo repository.EventRepository,
	registry repository.ContentRegistry,
	paymentProvider payments.Provider,
	isAdmin AdminChecker,
) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		registry:  registry,
		payments:  paymentProvider,
		isAdmin:   isAdmin,
		now:       time.Now,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.Date.IsZero() {
		return nil, models.NewValidationError("Date is required")
	}
	if in.TicketPriceCents < 0 {
		return nil, models.NewValidationError("Ticket price cannot be negative")
	}

	descriptionHTML, err := renderMarkdown(in.Description)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	event := &models.Event{
		Title:            in.Title,
		Description:      in.Description,
		DescriptionHTML:  descriptionHTML,
		Date:             in.Date,
		Location:         in.Location,
		ImageHash:        in.ImageHash,
		UserID:           in.UserID,
		TicketPriceCents: in.TicketPriceCents,
	}
	// Activity derives from the date: an event stays active through the
	// end of its calendar day.
	event.IsActive = !event.EndOfDay().Before(s.now())

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// View counting is best-effort.
	_ = s.registry.IncrementViews(ctx, models.ContentTypeEvent, id)
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context, filter repository.EventFilter) ([]models.Event, error) {
	return s.eventRepo.List(ctx, filter)
}

func (s *EventService) UpdateEvent(ctx context.Context, in UpdateEventInput) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}

	err = requireOwnerOrAdmin(ctx, event.UserID, in.UserID, s.isAdmin,
		"You can only edit your own events")
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		event.Title = *in.Title
	}
	if in.Description != nil {
		event.Description = *in.Description
		html, err := renderMarkdown(*in.Description)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		event.DescriptionHTML = html
	}
	if in.Location != nil {
		event.Location = *in.Location
	}
	if in.ImageHash != nil {
		event.ImageHash = *in.ImageHash
	}
	if in.TicketPriceCents != nil {
		if *in.TicketPriceCents < 0 {
			return nil, models.NewValidationError("Ticket price cannot be negative")
		}
		event.TicketPriceCents = *in.TicketPriceCents
	}
	if in.Date != nil {
		event.Date = *in.Date
		// A date change recomputes activity, overriding any manual flag.
		event.IsActive = !event.EndOfDay().Before(s.now())
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, userID, eventID uint) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}

	err = requireOwnerOrAdmin(ctx, event.UserID, userID, s.isAdmin,
		"You can only delete your own events")
	if err != nil {
		return err
	}
	return s.eventRepo.Delete(ctx, eventID)
}

// SetActive is the admin override for the activity flag. The next sweep
// or date edit recomputes it from the date again.
func (s *EventService) SetActive(ctx context.Context, userID, eventID uint, active bool) (*models.Event, error) {
	if err := requireAdmin(ctx, userID, s.isAdmin); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	event.IsActive = active
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// RSVP records or replaces the caller's reply. Ticketed events with a
// "going" reply open a payment intent; the RSVP stays pending until the
// charge completes.
func (s *EventService) RSVP(ctx context.Context, in RSVPInput) (*RSVPResult, error) {
	if !in.Status.Valid() {
		return nil, models.NewValidationError("Status must be going, maybe or not_going")
	}

	event, err := s.eventRepo.GetByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	if !event.RSVPOpen(s.now()) {
		return nil, models.NewConflictError("This event is no longer accepting RSVPs")
	}

	attendee := &models.EventAttendee{
		EventID:       in.EventID,
		UserID:        in.UserID,
		Status:        in.Status,
		PaymentStatus: models.PaymentFree,
		TicketType:    in.TicketType,
	}

	var intent *payments.Intent
	if event.TicketPriceCents > 0 && in.Status == models.RSVPGoing {
		intent, err = s.payments.CreateIntent(ctx, payments.CreateIntentInput{
			AmountCents: event.TicketPriceCents,
			Description: fmt.Sprintf("Ticket for %s", event.Title),
			UserRef:     fmt.Sprintf("user:%d", in.UserID),
		})
		if err != nil {
			// The RSVP is kept with a failed payment so the user can retry.
			attendee.PaymentStatus = models.PaymentFailed
			if upsertErr := s.eventRepo.UpsertRSVP(ctx, attendee); upsertErr != nil {
				return nil, upsertErr
			}
			return nil, err
		}
		attendee.PaymentStatus = models.PaymentPending
		attendee.PaymentRef = intent.Reference
	}

	if err := s.eventRepo.UpsertRSVP(ctx, attendee); err != nil {
		return nil, err
	}

	stored, err := s.eventRepo.GetRSVP(ctx, in.EventID, in.UserID)
	if err != nil {
		return nil, err
	}
	return &RSVPResult{Attendee: stored, Payment: intent}, nil
}

func (s *EventService) ListAttendees(ctx context.Context, eventID uint) ([]models.EventAttendee, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.eventRepo.ListAttendees(ctx, eventID)
}

// ConfirmPayment flips a pending RSVP to paid, matched by reference.
func (s *EventService) ConfirmPayment(ctx context.Context, eventID, userID uint, reference string) (*models.EventAttendee, error) {
	attendee, err := s.eventRepo.GetRSVP(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if attendee == nil {
		return nil, models.NewNotFoundError("RSVP", eventID)
	}
	if attendee.PaymentRef != reference {
		return nil, models.NewValidationError("Payment reference does not match")
	}

	attendee.PaymentStatus = models.PaymentPaid
	if err := s.eventRepo.UpdateRSVP(ctx, attendee); err != nil {
		return nil, err
	}
	return attendee, nil
}

// SweepStatuses reconciles the activity flag for every event: past
// events go inactive, future or same-day events come back active.
// Manual overrides do not survive the sweep.
func (s *EventService) SweepStatuses(ctx context.Context) (*repository.SweepResult, error) {
	now := s.now()
	y, m, d := now.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	result, err := s.eventRepo.SweepStatuses(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if result.Deactivated > 0 {
		middleware.EventSweepUpdates.WithLabelValues("deactivated").Add(float64(result.Deactivated))
	}
	if result.Reactivated > 0 {
		middleware.EventSweepUpdates.WithLabelValues("reactivated").Add(float64(result.Reactivated))
	}
	return result, nil
}
