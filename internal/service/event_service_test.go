package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"townsquare/internal/models"
	"townsquare/internal/payments"
	"townsquare/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// paymentStub is a stub for payments.Provider.
type paymentStub struct {
	createFn func(context.Context, payments.CreateIntentInput) (*payments.Intent, error)
}

func (s *paymentStub) Enabled() bool { return true }
func (s *paymentStub) CreateIntent(ctx context.Context, in payments.CreateIntentInput) (*payments.Intent, error) {
	return s.createFn(ctx, in)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newEventService(repo *eventRepoStub, provider payments.Provider, isAdmin AdminChecker) *EventService {
	if provider == nil {
		provider = payments.Disabled{}
	}
	return NewEventService(repo, allExistsRegistry(), provider, isAdmin)
}

func TestEventService_CreateEvent_DerivesActivity(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	t.Run("future event is active", func(t *testing.T) {
		t.Parallel()
		svc := newEventService(noopEventRepo(), nil, nil)
		svc.now = fixedClock(now)
		event, err := svc.CreateEvent(context.Background(), CreateEventInput{
			UserID: 1, Title: "Harvest Fair", Date: now.AddDate(0, 0, 3),
		})
		require.NoError(t, err)
		assert.True(t, event.IsActive)
	})

	t.Run("same-day event stays active until midnight", func(t *testing.T) {
		t.Parallel()
		svc := newEventService(noopEventRepo(), nil, nil)
		svc.now = fixedClock(now)
		morning := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
		event, err := svc.CreateEvent(context.Background(), CreateEventInput{
			UserID: 1, Title: "Morning Market", Date: morning,
		})
		require.NoError(t, err)
		assert.True(t, event.IsActive)
	})

	t.Run("past-dated event is created inactive", func(t *testing.T) {
		t.Parallel()
		svc := newEventService(noopEventRepo(), nil, nil)
		svc.now = fixedClock(now)
		event, err := svc.CreateEvent(context.Background(), CreateEventInput{
			UserID: 1, Title: "Archive Entry", Date: now.AddDate(0, 0, -2),
		})
		require.NoError(t, err)
		assert.False(t, event.IsActive)
	})

	t.Run("title and date are required", func(t *testing.T) {
		t.Parallel()
		svc := newEventService(noopEventRepo(), nil, nil)
		_, err := svc.CreateEvent(context.Background(), CreateEventInput{UserID: 1, Date: now})
		assertValidationError(t, err)
		_, err = svc.CreateEvent(context.Background(), CreateEventInput{UserID: 1, Title: "No date"})
		assertValidationError(t, err)
	})
}

func TestEventService_UpdateEvent_DateChangeRecomputesActivity(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	repo := noopEventRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Event, error) {
		// Manually deactivated by an admin, but being rescheduled.
		return &models.Event{ID: id, UserID: 1, Date: now.AddDate(0, 0, -5), IsActive: false}, nil
	}

	svc := newEventService(repo, nil, nil)
	svc.now = fixedClock(now)

	newDate := now.AddDate(0, 0, 10)
	event, err := svc.UpdateEvent(context.Background(), UpdateEventInput{
		UserID: 1, EventID: 1, Date: &newDate,
	})
	require.NoError(t, err)
	assert.True(t, event.IsActive)
}

func TestEventService_UpdateEvent_OwnershipGate(t *testing.T) {
	t.Parallel()

	repo := noopEventRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Event, error) {
		return &models.Event{ID: id, UserID: 10, IsActive: true, Date: time.Now().AddDate(0, 0, 7)}, nil
	}

	title := "Renamed"

	t.Run("non-owner is forbidden", func(t *testing.T) {
		t.Parallel()
		svc := newEventService(repo, nil, nil)
		_, err := svc.UpdateEvent(context.Background(), UpdateEventInput{UserID: 1, EventID: 1, Title: &title})
		assertForbiddenError(t, err)
	})

	t.Run("admin may edit", func(t *testing.T) {
		t.Parallel()
		isAdmin := func(_ context.Context, _ uint) (bool, error) { return true, nil }
		svc := newEventService(repo, nil, isAdmin)
		event, err := svc.UpdateEvent(context.Background(), UpdateEventInput{UserID: 1, EventID: 1, Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", event.Title)
	})
}

func TestEventService_RSVP(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	t.Run("invalid status", func(t *testing.T) {
		t.Parallel()
		svc := newEventService(noopEventRepo(), nil, nil)
		_, err := svc.RSVP(context.Background(), RSVPInput{UserID: 1, EventID: 1, Status: "attending"})
		assertValidationError(t, err)
	})

	t.Run("past event rejects RSVP", func(t *testing.T) {
		t.Parallel()
		repo := noopEventRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Event, error) {
			return &models.Event{ID: id, UserID: 1, Date: now.AddDate(0, 0, -1), IsActive: true}, nil
		}
		svc := newEventService(repo, nil, nil)
		svc.now = fixedClock(now)
		_, err := svc.RSVP(context.Background(), RSVPInput{UserID: 1, EventID: 1, Status: models.RSVPGoing})
		assertConflictError(t, err)
	})

	t.Run("deactivated event rejects RSVP", func(t *testing.T) {
		t.Parallel()
		repo := noopEventRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Event, error) {
			return &models.Event{ID: id, UserID: 1, Date: now.AddDate(0, 0, 5), IsActive: false}, nil
		}
		svc := newEventService(repo, nil, nil)
		svc.now = fixedClock(now)
		_, err := svc.RSVP(context.Background(), RSVPInput{UserID: 1, EventID: 1, Status: models.RSVPGoing})
		assertConflictError(t, err)
	})

	t.Run("free event records free RSVP", func(t *testing.T) {
		t.Parallel()
		var stored *models.EventAttendee
		repo := noopEventRepo()
		repo.upsertRSVPFn = func(_ context.Context, a *models.EventAttendee) error {
			stored = a
			return nil
		}
		repo.getRSVPFn = func(_ context.Context, _, _ uint) (*models.EventAttendee, error) {
			return stored, nil
		}
		svc := newEventService(repo, nil, nil)
		svc.now = fixedClock(now)
		result, err := svc.RSVP(context.Background(), RSVPInput{UserID: 2, EventID: 1, Status: models.RSVPGoing})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentFree, result.Attendee.PaymentStatus)
		assert.Nil(t, result.Payment)
	})

	t.Run("ticketed event opens a pending payment", func(t *testing.T) {
		t.Parallel()
		var stored *models.EventAttendee
		repo := noopEventRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Event, error) {
			return &models.Event{
				ID: id, UserID: 1, Date: now.AddDate(0, 0, 5),
				IsActive: true, TicketPriceCents: 2500, Title: "Gala",
			}, nil
		}
		repo.upsertRSVPFn = func(_ context.Context, a *models.EventAttendee) error {
			stored = a
			return nil
		}
		repo.getRSVPFn = func(_ context.Context, _, _ uint) (*models.EventAttendee, error) {
			return stored, nil
		}
		provider := &paymentStub{
			createFn: func(_ context.Context, in payments.CreateIntentInput) (*payments.Intent, error) {
				assert.Equal(t, int64(2500), in.AmountCents)
				return &payments.Intent{Reference: "pi_123", Status: "requires_payment"}, nil
			},
		}
		svc := newEventService(repo, provider, nil)
		svc.now = fixedClock(now)
		result, err := svc.RSVP(context.Background(), RSVPInput{UserID: 2, EventID: 1, Status: models.RSVPGoing})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPending, result.Attendee.PaymentStatus)
		assert.Equal(t, "pi_123", result.Attendee.PaymentRef)
		require.NotNil(t, result.Payment)
		assert.Equal(t, "pi_123", result.Payment.Reference)
	})

	t.Run("payment failure keeps the RSVP as failed", func(t *testing.T) {
		t.Parallel()
		var stored *models.EventAttendee
		repo := noopEventRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Event, error) {
			return &models.Event{
				ID: id, UserID: 1, Date: now.AddDate(0, 0, 5),
				IsActive: true, TicketPriceCents: 2500,
			}, nil
		}
		repo.upsertRSVPFn = func(_ context.Context, a *models.EventAttendee) error {
			stored = a
			return nil
		}
		provider := &paymentStub{
			createFn: func(_ context.Context, _ payments.CreateIntentInput) (*payments.Intent, error) {
				return nil, models.NewUpstreamError("payment", errors.New("timeout"))
			},
		}
		svc := newEventService(repo, provider, nil)
		svc.now = fixedClock(now)
		_, err := svc.RSVP(context.Background(), RSVPInput{UserID: 2, EventID: 1, Status: models.RSVPGoing})
		assertAppErrorCode(t, err, models.CodeUpstream)
		require.NotNil(t, stored)
		assert.Equal(t, models.PaymentFailed, stored.PaymentStatus)
	})

	t.Run("maybe on a ticketed event charges nothing", func(t *testing.T) {
		t.Parallel()
		repo := noopEventRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Event, error) {
			return &models.Event{
				ID: id, UserID: 1, Date: now.AddDate(0, 0, 5),
				IsActive: true, TicketPriceCents: 2500,
			}, nil
		}
		svc := newEventService(repo, payments.Disabled{}, nil)
		svc.now = fixedClock(now)
		result, err := svc.RSVP(context.Background(), RSVPInput{UserID: 2, EventID: 1, Status: models.RSVPMaybe})
		require.NoError(t, err)
		assert.Nil(t, result.Payment)
	})
}

func TestEventService_SweepStatuses_CutoffIsStartOfDay(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)

	var gotCutoff time.Time
	repo := noopEventRepo()
	repo.sweepFn = func(_ context.Context, cutoff time.Time) (*repository.SweepResult, error) {
		gotCutoff = cutoff
		return &repository.SweepResult{Deactivated: 2, Reactivated: 1}, nil
	}

	svc := newEventService(repo, nil, nil)
	svc.now = fixedClock(now)

	result, err := svc.SweepStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), gotCutoff)
	assert.Equal(t, int64(2), result.Deactivated)
	assert.Equal(t, int64(1), result.Reactivated)
}

func TestEventService_SetActive_AdminOnly(t *testing.T) {
	t.Parallel()

	t.Run("non-admin is forbidden", func(t *testing.T) {
		t.Parallel()
		svc := newEventService(noopEventRepo(), nil, nil)
		_, err := svc.SetActive(context.Background(), 1, 1, false)
		assertForbiddenError(t, err)
	})

	t.Run("admin can override", func(t *testing.T) {
		t.Parallel()
		var saved *models.Event
		repo := noopEventRepo()
		repo.updateFn = func(_ context.Context, e *models.Event) error {
			saved = e
			return nil
		}
		isAdmin := func(_ context.Context, _ uint) (bool, error) { return true, nil }
		svc := newEventService(repo, nil, isAdmin)
		_, err := svc.SetActive(context.Background(), 1, 1, false)
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.False(t, saved.IsActive)
	})
}
