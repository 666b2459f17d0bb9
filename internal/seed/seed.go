package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"townsquare/internal/models"

	"gorm.io/gorm"
)

// Seed populates the database with demo data.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Seeding database: %d users, %d events, %d articles, %d listings...",
		opts.NumUsers, opts.NumEvents, opts.NumArticles, opts.NumListings)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db, opts)

	users, err := createUsers(f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d users created", len(users))

	events, err := createEvents(f, users, opts.NumEvents)
	if err != nil {
		return fmt.Errorf("failed to create events: %w", err)
	}
	log.Printf("✓ %d events created", len(events))

	articles, err := createArticles(f, users, opts.NumArticles)
	if err != nil {
		return fmt.Errorf("failed to create articles: %w", err)
	}
	log.Printf("✓ %d articles created", len(articles))

	listings, err := createListings(f, users, opts.NumListings)
	if err != nil {
		return fmt.Errorf("failed to create listings: %w", err)
	}
	log.Printf("✓ %d listings created", len(listings))

	if err := createTeam(f); err != nil {
		return fmt.Errorf("failed to create team members: %w", err)
	}

	if err := createEngagement(f, users, events, articles, listings, opts.NumComments); err != nil {
		return fmt.Errorf("failed to create comments and reactions: %w", err)
	}

	if opts.FixtureFile != "" {
		if err := ApplyFixtureFile(db, opts.FixtureFile); err != nil {
			return fmt.Errorf("failed to apply fixture file: %w", err)
		}
		log.Printf("✓ fixtures applied from %s", opts.FixtureFile)
	}

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE comment_flags, comments, reactions, event_attendees, events,
		news_articles, directory_listings, team_members, course_enrollments, users
		RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// a few stable accounts so the demo environment always has known logins
	if count >= 3 {
		for _, name := range []string{"alice", "bob", "test"} {
			name := name
			user, err := f.CreateUser(func(u *models.User) {
				u.Username = name
				u.Email = fmt.Sprintf("%s@example.com", name)
				u.Bio = "One of the regulars."
			})
			if err == nil {
				users = append(users, user)
			}
		}
	}

	for i := len(users); i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			log.Printf("failed to create user: %v", err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("created %d users...", i)
		}
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("no users could be created")
	}
	return users, nil
}

func createEvents(f *Factory, users []*models.User, count int) ([]*models.Event, error) {
	//nolint:gosec // weak randomness is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	events := make([]*models.Event, 0, count)
	for i := 0; i < count; i++ {
		organizer := users[r.Intn(len(users))]
		event, err := f.CreateEvent(organizer)
		if err != nil {
			log.Printf("failed to create event: %v", err)
			continue
		}
		events = append(events, event)

		// a handful of RSVPs per event
		for j := 0; j < r.Intn(6); j++ {
			attendee := users[r.Intn(len(users))]
			if attendee.ID == organizer.ID {
				continue
			}
			if _, err := f.CreateRSVP(event, attendee); err != nil {
				// duplicate (event, user) pairs hit the unique index; fine
				continue
			}
		}
	}
	return events, nil
}

func createArticles(f *Factory, users []*models.User, count int) ([]*models.NewsArticle, error) {
	//nolint:gosec // weak randomness is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	articles := make([]*models.NewsArticle, 0, count)
	for i := 0; i < count; i++ {
		article, err := f.CreateArticle(users[r.Intn(len(users))])
		if err != nil {
			log.Printf("failed to create article: %v", err)
			continue
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func createListings(f *Factory, users []*models.User, count int) ([]*models.DirectoryListing, error) {
	//nolint:gosec // weak randomness is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	listings := make([]*models.DirectoryListing, 0, count)
	for i := 0; i < count; i++ {
		listing, err := f.CreateListing(users[r.Intn(len(users))])
		if err != nil {
			log.Printf("failed to create listing: %v", err)
			continue
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func createTeam(f *Factory) error {
	for i := 0; i < 5; i++ {
		if _, err := f.CreateTeamMember(i); err != nil {
			return err
		}
	}
	log.Println("✓ 5 team members created")
	return nil
}

func createEngagement(f *Factory, users []*models.User, events []*models.Event,
	articles []*models.NewsArticle, listings []*models.DirectoryListing, numComments int) error {
	//nolint:gosec // weak randomness is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	type target struct {
		ct models.ContentType
		id uint
	}
	targets := make([]target, 0, len(events)+len(articles)+len(listings))
	for _, e := range events {
		targets = append(targets, target{models.ContentTypeEvent, e.ID})
	}
	for _, a := range articles {
		if a.Published {
			targets = append(targets, target{models.ContentTypeNews, a.ID})
		}
	}
	for _, l := range listings {
		if l.Approved {
			targets = append(targets, target{models.ContentTypeDirectory, l.ID})
		}
	}
	if len(targets) == 0 {
		return nil
	}

	created := 0
	for i := 0; i < numComments; i++ {
		t := targets[r.Intn(len(targets))]
		user := users[r.Intn(len(users))]
		comment, err := f.CreateComment(user, t.ct, t.id, nil)
		if err != nil {
			continue
		}
		created++

		// occasional one-level reply thread
		for j := 0; j < r.Intn(3); j++ {
			replier := users[r.Intn(len(users))]
			if _, err := f.CreateComment(replier, t.ct, t.id, comment); err == nil {
				created++
			}
		}
	}
	log.Printf("✓ %d comments created", created)

	reactions := 0
	for i := 0; i < numComments*2; i++ {
		t := targets[r.Intn(len(targets))]
		if err := f.CreateReaction(users[r.Intn(len(users))], t.ct, t.id); err == nil {
			reactions++
		}
	}
	log.Printf("✓ %d reactions created", reactions)
	return nil
}
