// Package seed provides helpers to create demo and test data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"townsquare/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much data the seeder creates.
type Options struct {
	NumUsers    int
	NumEvents   int
	NumArticles int
	NumListings int
	NumComments int
	ShouldClean bool
	// SkipBcrypt stores a plain-text password for faster bulk seeding.
	SkipBcrypt bool
	// MaxDays bounds the backdating spread for created_at timestamps.
	MaxDays int
	// DryRun builds entities without writing to the database.
	DryRun bool
	// FixtureFile optionally points at a YAML file with curated records
	// that are created in addition to the generated ones.
	FixtureFile string
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts, nextID: 1000}
}

func (f *Factory) backdate() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	//nolint:gosec // weak randomness is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	daysBack := r.Intn(maxDays)
	hoursBack := r.Intn(24)
	minsBack := r.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

func (f *Factory) persist(entity interface{}, kind string) error {
	if f.opts.DryRun {
		log.Printf("[dry-run] create %s (no DB write)", kind)
		return nil
	}
	return f.db.Create(entity).Error
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}
	user.CreatedAt = f.backdate()

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildEvent constructs an event struct without persisting it.
func (f *Factory) BuildEvent(organizer *models.User, overrides ...func(*models.Event)) *models.Event {
	//nolint:gosec // weak randomness is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// roughly half upcoming, half already finished
	daysOut := r.Intn(60) - 30
	event := &models.Event{
		Title:       gofakeit.Sentence(4),
		Description: gofakeit.Paragraph(1, 3, 8, "\n"),
		Date:        time.Now().AddDate(0, 0, daysOut),
		Location:    fmt.Sprintf("%s, %s", gofakeit.Street(), gofakeit.City()),
		UserID:      organizer.ID,
		IsActive:    true,
	}
	if r.Float32() < 0.3 {
		event.TicketPriceCents = int64(gofakeit.Number(5, 50)) * 100
	}
	event.CreatedAt = f.backdate()

	for _, override := range overrides {
		override(event)
	}
	return event
}

// CreateEvent persists a generated event.
func (f *Factory) CreateEvent(organizer *models.User, overrides ...func(*models.Event)) (*models.Event, error) {
	event := f.BuildEvent(organizer, overrides...)
	if f.opts.DryRun {
		f.nextID++
		event.ID = f.nextID
		return event, nil
	}
	if err := f.db.Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// CreateRSVP records an attendee on an event. Paid events get a pending
// payment status so the demo data exercises the ticketing flow.
func (f *Factory) CreateRSVP(event *models.Event, user *models.User) (*models.EventAttendee, error) {
	statuses := []models.RSVPStatus{models.RSVPGoing, models.RSVPGoing, models.RSVPMaybe, models.RSVPNotGoing}
	//nolint:gosec // weak randomness is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	attendee := &models.EventAttendee{
		EventID:       event.ID,
		UserID:        user.ID,
		Status:        statuses[r.Intn(len(statuses))],
		PaymentStatus: models.PaymentFree,
	}
	if event.TicketPriceCents > 0 && attendee.Status == models.RSVPGoing {
		attendee.PaymentStatus = models.PaymentPending
		attendee.TicketType = "general"
	}
	if err := f.persist(attendee, "rsvp"); err != nil {
		return nil, err
	}
	return attendee, nil
}

// CreateArticle persists a generated news article. Roughly one in five
// stays a draft so drafts show up for staff accounts.
func (f *Factory) CreateArticle(author *models.User, overrides ...func(*models.NewsArticle)) (*models.NewsArticle, error) {
	article := &models.NewsArticle{
		Title:     gofakeit.Sentence(6),
		Body:      gofakeit.Paragraph(3, 4, 10, "\n\n"),
		UserID:    author.ID,
		Published: gofakeit.Number(0, 4) != 0,
	}
	article.CreatedAt = f.backdate()

	for _, override := range overrides {
		override(article)
	}
	if f.opts.DryRun {
		f.nextID++
		article.ID = f.nextID
		return article, nil
	}
	if err := f.db.Create(article).Error; err != nil {
		return nil, err
	}
	return article, nil
}

var listingCategories = []string{
	"restaurant", "retail", "services", "health", "trades", "arts",
}

// CreateListing persists a generated business directory listing.
func (f *Factory) CreateListing(owner *models.User, overrides ...func(*models.DirectoryListing)) (*models.DirectoryListing, error) {
	name := gofakeit.Company()
	listing := &models.DirectoryListing{
		Name:        name,
		Slug:        Slugify(name) + fmt.Sprintf("-%d", gofakeit.Number(10, 9999)),
		Description: gofakeit.Paragraph(1, 2, 8, "\n"),
		Category:    listingCategories[gofakeit.Number(0, len(listingCategories)-1)],
		Website:     gofakeit.URL(),
		Phone:       gofakeit.Phone(),
		Address:     fmt.Sprintf("%s, %s", gofakeit.Street(), gofakeit.City()),
		UserID:      owner.ID,
		Approved:    gofakeit.Number(0, 3) != 0,
	}
	listing.CreatedAt = f.backdate()

	for _, override := range overrides {
		override(listing)
	}
	if f.opts.DryRun {
		f.nextID++
		listing.ID = f.nextID
		return listing, nil
	}
	if err := f.db.Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// CreateTeamMember persists a generated team member profile.
func (f *Factory) CreateTeamMember(sortOrder int, overrides ...func(*models.TeamMember)) (*models.TeamMember, error) {
	roles := []string{"Director", "Coordinator", "Outreach", "Treasurer", "Volunteer Lead"}
	member := &models.TeamMember{
		Name:      gofakeit.Name(),
		Role:      roles[gofakeit.Number(0, len(roles)-1)],
		Bio:       gofakeit.Sentence(14),
		Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		SortOrder: sortOrder,
	}
	for _, override := range overrides {
		override(member)
	}
	if err := f.persist(member, "team member"); err != nil {
		return nil, err
	}
	return member, nil
}

// CreateComment persists a comment on the given content item and bumps the
// item's denormalized counter the same way the comment service does.
func (f *Factory) CreateComment(user *models.User, ct models.ContentType, contentID uint, parent *models.Comment) (*models.Comment, error) {
	comment := &models.Comment{
		Content:     gofakeit.Sentence(gofakeit.Number(4, 20)),
		UserID:      user.ID,
		ContentType: ct,
		ContentID:   contentID,
		Status:      models.CommentStatusActive,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}
	comment.CreatedAt = f.backdate()

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if parent != nil {
			err := tx.Model(&models.Comment{}).Where("id = ?", parent.ID).
				UpdateColumn("reply_count", gorm.Expr("reply_count + 1")).Error
			if err != nil {
				return err
			}
		}
		return bumpCommentCount(tx, ct, contentID)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func bumpCommentCount(tx *gorm.DB, ct models.ContentType, contentID uint) error {
	var model interface{}
	switch ct {
	case models.ContentTypeEvent:
		model = &models.Event{}
	case models.ContentTypeNews:
		model = &models.NewsArticle{}
	case models.ContentTypeDirectory:
		model = &models.DirectoryListing{}
	default:
		return nil
	}
	return tx.Model(model).Where("id = ?", contentID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
}

// CreateReaction records a like or dislike from the user on the target.
// Duplicate (user, target) pairs are silently skipped so the seeder can
// pick targets at random without tracking what it already reacted to.
func (f *Factory) CreateReaction(user *models.User, ct models.ContentType, contentID uint) error {
	kind := models.ReactionLike
	if gofakeit.Number(0, 4) == 0 {
		kind = models.ReactionDislike
	}
	reaction := &models.Reaction{
		UserID:      user.ID,
		ContentType: ct,
		ContentID:   contentID,
		Kind:        kind,
	}
	if f.opts.DryRun {
		return nil
	}
	var existing models.Reaction
	err := f.db.Where("user_id = ? AND content_type = ? AND content_id = ?",
		user.ID, ct, contentID).First(&existing).Error
	if err == nil {
		return nil
	}
	return f.db.Create(reaction).Error
}

// Slugify turns a display name into a URL-safe slug.
func Slugify(name string) string {
	var sb strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(sb.String(), "-")
}
