package repository

import (
	"context"
	"testing"
	"time"

	"townsquare/internal/cache"
	"townsquare/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startOfToday() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestUpsertRSVPReplacesExisting(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")
	event := createTestEvent(t, db, user.ID, nil)

	require.NoError(t, repo.UpsertRSVP(ctx, &models.EventAttendee{
		EventID:       event.ID,
		UserID:        user.ID,
		Status:        models.RSVPGoing,
		PaymentStatus: models.PaymentFree,
	}))
	require.NoError(t, repo.UpsertRSVP(ctx, &models.EventAttendee{
		EventID:       event.ID,
		UserID:        user.ID,
		Status:        models.RSVPMaybe,
		PaymentStatus: models.PaymentFree,
	}))

	var count int64
	db.Model(&models.EventAttendee{}).Where("event_id = ?", event.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	rsvp, err := repo.GetRSVP(ctx, event.ID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, rsvp)
	assert.Equal(t, models.RSVPMaybe, rsvp.Status)
}

func TestSweepStatusesBothDirections(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")

	past := createTestEvent(t, db, user.ID, &models.Event{
		Title: "Yesterday",
		Date:  time.Now().AddDate(0, 0, -1),
	})
	// An event wrongly marked inactive but dated tomorrow must come back.
	future := createTestEvent(t, db, user.ID, &models.Event{
		Title: "Tomorrow",
		Date:  time.Now().AddDate(0, 0, 1),
	})
	require.NoError(t, db.Model(future).UpdateColumn("is_active", false).Error)

	result, err := repo.SweepStatuses(ctx, startOfToday())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Deactivated)
	assert.Equal(t, int64(1), result.Reactivated)

	var reloadedPast, reloadedFuture models.Event
	require.NoError(t, db.First(&reloadedPast, past.ID).Error)
	require.NoError(t, db.First(&reloadedFuture, future.ID).Error)
	assert.False(t, reloadedPast.IsActive)
	assert.True(t, reloadedFuture.IsActive)
}

func TestSweepStatusesInvalidatesCachedEvents(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	prev := cache.GetClient()
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(prev) })

	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")
	past := createTestEvent(t, db, user.ID, &models.Event{
		Title: "Yesterday",
		Date:  time.Now().AddDate(0, 0, -1),
	})

	// Warm the cache while the event still reads as active.
	cached, err := repo.GetByID(ctx, past.ID)
	require.NoError(t, err)
	require.True(t, cached.IsActive)
	require.True(t, mr.Exists(cache.EventKey(past.ID)))

	result, err := repo.SweepStatuses(ctx, startOfToday())
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Deactivated)

	// The cached copy is dropped, so the next read sees the flip
	// instead of waiting out the TTL.
	assert.False(t, mr.Exists(cache.EventKey(past.ID)))
	fresh, err := repo.GetByID(ctx, past.ID)
	require.NoError(t, err)
	assert.False(t, fresh.IsActive)
}

func TestSweepLeavesTodayActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")
	today := createTestEvent(t, db, user.ID, &models.Event{
		Title: "Today",
		Date:  time.Now(),
	})

	result, err := repo.SweepStatuses(ctx, startOfToday())
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Deactivated)

	var reloaded models.Event
	require.NoError(t, db.First(&reloaded, today.ID).Error)
	assert.True(t, reloaded.IsActive)
}

func TestListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")
	createTestEvent(t, db, user.ID, &models.Event{Title: "Soon", Date: time.Now().AddDate(0, 0, 2)})
	later := createTestEvent(t, db, user.ID, &models.Event{Title: "Later", Date: time.Now().AddDate(0, 0, 9)})
	inactive := createTestEvent(t, db, user.ID, &models.Event{Title: "Inactive", Date: time.Now().AddDate(0, 0, 3)})
	require.NoError(t, db.Model(inactive).UpdateColumn("is_active", false).Error)

	active, err := repo.List(ctx, EventFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 2)
	// Ordered by date ascending.
	assert.Equal(t, "Soon", active[0].Title)
	assert.Equal(t, "Later", active[1].Title)

	from := time.Now().AddDate(0, 0, 5)
	upcoming, err := repo.List(ctx, EventFilter{From: &from})
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, later.ID, upcoming[0].ID)
}
