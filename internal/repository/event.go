package repository

import (
	"context"
	"errors"
	"time"

	"townsquare/internal/cache"
	"townsquare/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventFilter narrows event listings.
type EventFilter struct {
	ActiveOnly bool
	// From keeps events whose date is on or after this instant.
	From *time.Time
	// Until keeps events whose date is before this instant.
	Until  *time.Time
	Limit  int
	Offset int
}

// SweepResult reports how many rows each direction of a status sweep touched.
type SweepResult struct {
	Deactivated int64 `json:"deactivated"`
	Reactivated int64 `json:"reactivated"`
}

// EventRepository defines persistence operations for events and RSVPs.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uint) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter EventFilter) ([]models.Event, error)
	// UpsertRSVP inserts or replaces the user's RSVP on the event.
	UpsertRSVP(ctx context.Context, attendee *models.EventAttendee) error
	GetRSVP(ctx context.Context, eventID, userID uint) (*models.EventAttendee, error)
	ListAttendees(ctx context.Context, eventID uint) ([]models.EventAttendee, error)
	UpdateRSVP(ctx context.Context, attendee *models.EventAttendee) error
	// SweepStatuses reconciles is_active across all events: rows dated
	// before cutoff go inactive, rows on or after come back active.
	SweepStatuses(ctx context.Context, cutoff time.Time) (*SweepResult, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository returns a new EventRepository implementation.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	key := cache.EventKey(id)

	err := cache.Aside(ctx, key, &event, cache.EventTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).First(&event, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Event", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateEvent(ctx, event.ID)
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Event{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateEvent(ctx, id)
	return nil
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	q := readDB(r.db).WithContext(ctx).Model(&models.Event{})
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.From != nil {
		q = q.Where("date >= ?", *filter.From)
	}
	if filter.Until != nil {
		q = q.Where("date < ?", *filter.Until)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var events []models.Event
	if err := q.Order("date asc").Find(&events).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}

func (r *eventRepository) UpsertRSVP(ctx context.Context, attendee *models.EventAttendee) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "payment_status", "payment_ref", "ticket_type", "updated_at",
		}),
	}).Create(attendee).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *eventRepository) GetRSVP(ctx context.Context, eventID, userID uint) (*models.EventAttendee, error) {
	var attendee models.EventAttendee
	err := readDB(r.db).WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&attendee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &attendee, nil
}

func (r *eventRepository) ListAttendees(ctx context.Context, eventID uint) ([]models.EventAttendee, error) {
	var attendees []models.EventAttendee
	err := readDB(r.db).WithContext(ctx).Preload("User").
		Where("event_id = ?", eventID).
		Order("created_at asc").
		Find(&attendees).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return attendees, nil
}

func (r *eventRepository) UpdateRSVP(ctx context.Context, attendee *models.EventAttendee) error {
	if err := r.db.WithContext(ctx).Save(attendee).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *eventRepository) SweepStatuses(ctx context.Context, cutoff time.Time) (*SweepResult, error) {
	result := &SweepResult{}
	var flipped []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deactivate []uint
		err := tx.Model(&models.Event{}).
			Where("date < ? AND is_active = ?", cutoff, true).
			Pluck("id", &deactivate).Error
		if err != nil {
			return err
		}
		if len(deactivate) > 0 {
			err = tx.Model(&models.Event{}).Where("id IN ?", deactivate).
				UpdateColumn("is_active", false).Error
			if err != nil {
				return err
			}
		}
		result.Deactivated = int64(len(deactivate))

		var reactivate []uint
		err = tx.Model(&models.Event{}).
			Where("date >= ? AND is_active = ?", cutoff, false).
			Pluck("id", &reactivate).Error
		if err != nil {
			return err
		}
		if len(reactivate) > 0 {
			err = tx.Model(&models.Event{}).Where("id IN ?", reactivate).
				UpdateColumn("is_active", true).Error
			if err != nil {
				return err
			}
		}
		result.Reactivated = int64(len(reactivate))

		flipped = append(deactivate, reactivate...)
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	// Drop cached copies of every flipped event so reads see the new
	// is_active immediately instead of waiting out the TTL.
	for _, id := range flipped {
		cache.InvalidateEvent(ctx, id)
	}
	return result, nil
}
