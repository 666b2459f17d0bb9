package repository

import (
	"testing"
	"time"

	"townsquare/internal/database"
	"townsquare/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens a fresh in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed-password",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestEvent(t *testing.T, db *gorm.DB, userID uint, event *models.Event) *models.Event {
	t.Helper()
	if event == nil {
		event = &models.Event{}
	}
	if event.Title == "" {
		event.Title = "Test Event"
	}
	if event.Date.IsZero() {
		event.Date = time.Now().AddDate(0, 0, 7)
	}
	event.UserID = userID
	event.IsActive = true
	require.NoError(t, db.Create(event).Error)
	return event
}
