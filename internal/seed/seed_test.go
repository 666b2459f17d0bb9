package seed

import (
	"os"
	"path/filepath"
	"testing"

	"townsquare/internal/database"
	"townsquare/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func TestSeed_CreatesRequestedData(t *testing.T) {
	db := openSeedTestDB(t)

	err := Seed(db, Options{
		NumUsers:    5,
		NumEvents:   4,
		NumArticles: 3,
		NumListings: 3,
		NumComments: 10,
		SkipBcrypt:  true,
		MaxDays:     10,
	})
	require.NoError(t, err)

	var userCount, eventCount, articleCount, listingCount, teamCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Event{}).Count(&eventCount).Error)
	require.NoError(t, db.Model(&models.NewsArticle{}).Count(&articleCount).Error)
	require.NoError(t, db.Model(&models.DirectoryListing{}).Count(&listingCount).Error)
	require.NoError(t, db.Model(&models.TeamMember{}).Count(&teamCount).Error)

	require.EqualValues(t, 5, userCount)
	require.EqualValues(t, 4, eventCount)
	require.EqualValues(t, 3, articleCount)
	require.EqualValues(t, 3, listingCount)
	require.EqualValues(t, 5, teamCount)

	// stable demo accounts exist
	var alice models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&alice).Error)
	require.Equal(t, "alice@example.com", alice.Email)
}

func TestSeed_CommentCountersMatch(t *testing.T) {
	db := openSeedTestDB(t)

	require.NoError(t, Seed(db, Options{
		NumUsers:    4,
		NumEvents:   2,
		NumComments: 8,
		SkipBcrypt:  true,
	}))

	var events []models.Event
	require.NoError(t, db.Find(&events).Error)
	for _, e := range events {
		var total int64
		require.NoError(t, db.Model(&models.Comment{}).
			Where("content_type = ? AND content_id = ?",
				models.ContentTypeEvent, e.ID).
			Count(&total).Error)
		require.EqualValues(t, total, e.CommentCount,
			"event %d comment_count should match comments including replies", e.ID)
	}

	var comments []models.Comment
	require.NoError(t, db.Where("parent_id IS NULL").Find(&comments).Error)
	for _, c := range comments {
		var replies int64
		require.NoError(t, db.Model(&models.Comment{}).
			Where("parent_id = ?", c.ID).Count(&replies).Error)
		require.EqualValues(t, replies, c.ReplyCount)
	}
}

func TestFactory_CreateReactionIsUniquePerTarget(t *testing.T) {
	db := openSeedTestDB(t)
	f := NewFactory(db, Options{SkipBcrypt: true})

	user, err := f.CreateUser()
	require.NoError(t, err)
	event, err := f.CreateEvent(user)
	require.NoError(t, err)

	require.NoError(t, f.CreateReaction(user, models.ContentTypeEvent, event.ID))
	require.NoError(t, f.CreateReaction(user, models.ContentTypeEvent, event.ID))

	var count int64
	require.NoError(t, db.Model(&models.Reaction{}).
		Where("user_id = ? AND content_type = ? AND content_id = ?",
			user.ID, models.ContentTypeEvent, event.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestFactory_DryRunWritesNothing(t *testing.T) {
	db := openSeedTestDB(t)
	f := NewFactory(db, Options{DryRun: true, SkipBcrypt: true})

	user, err := f.CreateUser()
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	_, err = f.CreateEvent(user)
	require.NoError(t, err)

	var userCount, eventCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Event{}).Count(&eventCount).Error)
	require.Zero(t, userCount)
	require.Zero(t, eventCount)
}

func TestApplyFixtureFile_Upserts(t *testing.T) {
	db := openSeedTestDB(t)

	fixture := `
users:
  - username: warden
    email: warden@example.com
    password: secret-pw
    admin: true
team:
  - name: Jo Meadows
    role: Director
    bio: Runs the place.
    sort_order: 1
listings:
  - name: Corner Bakery
    slug: corner-bakery
    category: restaurant
    owner: warden
    approved: true
`
	path := filepath.Join(t.TempDir(), "fixtures.yml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))

	require.NoError(t, ApplyFixtureFile(db, path))
	// applying twice must not duplicate
	require.NoError(t, ApplyFixtureFile(db, path))

	var userCount, teamCount, listingCount int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "warden").Count(&userCount).Error)
	require.NoError(t, db.Model(&models.TeamMember{}).Where("name = ?", "Jo Meadows").Count(&teamCount).Error)
	require.NoError(t, db.Model(&models.DirectoryListing{}).Where("slug = ?", "corner-bakery").Count(&listingCount).Error)
	require.EqualValues(t, 1, userCount)
	require.EqualValues(t, 1, teamCount)
	require.EqualValues(t, 1, listingCount)

	var warden models.User
	require.NoError(t, db.Where("username = ?", "warden").First(&warden).Error)
	require.True(t, warden.IsAdmin)

	var listing models.DirectoryListing
	require.NoError(t, db.Where("slug = ?", "corner-bakery").First(&listing).Error)
	require.Equal(t, warden.ID, listing.UserID)
	require.True(t, listing.Approved)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Corner Bakery":       "corner-bakery",
		"  Joe's  Pizza!  ":   "joe-s-pizza",
		"ALL CAPS & Symbols#": "all-caps-symbols",
		"already-slugged":     "already-slugged",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}
