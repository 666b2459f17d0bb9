package seed

import (
	"errors"
	"fmt"
	"os"

	"townsquare/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// FixtureFile holds curated records loaded from YAML. Generated seed data is
// random on purpose; fixtures are for the handful of records a demo
// environment needs to be exactly right (the real team page, featured
// listings, a known admin login).
type FixtureFile struct {
	Users    []UserFixture    `yaml:"users"`
	Team     []TeamFixture    `yaml:"team"`
	Listings []ListingFixture `yaml:"listings"`
}

type UserFixture struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Bio      string `yaml:"bio"`
	Admin    bool   `yaml:"admin"`
}

type TeamFixture struct {
	Name      string `yaml:"name"`
	Role      string `yaml:"role"`
	Bio       string `yaml:"bio"`
	Avatar    string `yaml:"avatar"`
	SortOrder int    `yaml:"sort_order"`
}

type ListingFixture struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Website     string `yaml:"website"`
	Phone       string `yaml:"phone"`
	Address     string `yaml:"address"`
	Owner       string `yaml:"owner"` // username of an existing user
	Approved    bool   `yaml:"approved"`
}

// ApplyFixtureFile loads the YAML file at path and upserts its records.
// Records are matched by their natural key (username, slug, name) so
// reapplying the same file is safe.
func ApplyFixtureFile(db *gorm.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture file: %w", err)
	}
	var fixtures FixtureFile
	if err := yaml.Unmarshal(raw, &fixtures); err != nil {
		return fmt.Errorf("parse fixture file: %w", err)
	}
	return Apply(db, &fixtures)
}

// Apply upserts the fixture records into the database.
func Apply(db *gorm.DB, fixtures *FixtureFile) error {
	for _, uf := range fixtures.Users {
		if err := applyUser(db, uf); err != nil {
			return fmt.Errorf("fixture user %q: %w", uf.Username, err)
		}
	}
	for i, tf := range fixtures.Team {
		if err := applyTeamMember(db, tf, i); err != nil {
			return fmt.Errorf("fixture team member %q: %w", tf.Name, err)
		}
	}
	for _, lf := range fixtures.Listings {
		if err := applyListing(db, lf); err != nil {
			return fmt.Errorf("fixture listing %q: %w", lf.Slug, err)
		}
	}
	return nil
}

func applyUser(db *gorm.DB, uf UserFixture) error {
	password := uf.Password
	if password == "" {
		password = "password123"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var user models.User
	err = db.Where("username = ?", uf.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Username: uf.Username,
			Email:    uf.Email,
			Password: string(hashed),
			Bio:      uf.Bio,
			IsAdmin:  uf.Admin,
		}
		return db.Create(&user).Error
	}
	if err != nil {
		return err
	}
	return db.Model(&user).Updates(map[string]interface{}{
		"email":    uf.Email,
		"bio":      uf.Bio,
		"is_admin": uf.Admin,
	}).Error
}

func applyTeamMember(db *gorm.DB, tf TeamFixture, fallbackOrder int) error {
	order := tf.SortOrder
	if order == 0 {
		order = fallbackOrder
	}

	var member models.TeamMember
	err := db.Where("name = ?", tf.Name).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		member = models.TeamMember{
			Name:      tf.Name,
			Role:      tf.Role,
			Bio:       tf.Bio,
			Avatar:    tf.Avatar,
			SortOrder: order,
		}
		return db.Create(&member).Error
	}
	if err != nil {
		return err
	}
	return db.Model(&member).Updates(map[string]interface{}{
		"role":       tf.Role,
		"bio":        tf.Bio,
		"avatar":     tf.Avatar,
		"sort_order": order,
	}).Error
}

func applyListing(db *gorm.DB, lf ListingFixture) error {
	slug := lf.Slug
	if slug == "" {
		slug = Slugify(lf.Name)
	}

	var owner models.User
	if lf.Owner != "" {
		if err := db.Where("username = ?", lf.Owner).First(&owner).Error; err != nil {
			return fmt.Errorf("owner %q not found", lf.Owner)
		}
	} else {
		// fall back to the first admin so the listing has a real owner
		if err := db.Where("is_admin = ?", true).First(&owner).Error; err != nil {
			return fmt.Errorf("no admin user to own listing")
		}
	}

	var listing models.DirectoryListing
	err := db.Where("slug = ?", slug).First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		listing = models.DirectoryListing{
			Name:        lf.Name,
			Slug:        slug,
			Description: lf.Description,
			Category:    lf.Category,
			Website:     lf.Website,
			Phone:       lf.Phone,
			Address:     lf.Address,
			UserID:      owner.ID,
			Approved:    lf.Approved,
		}
		return db.Create(&listing).Error
	}
	if err != nil {
		return err
	}
	return db.Model(&listing).Updates(map[string]interface{}{
		"name":        lf.Name,
		"description": lf.Description,
		"category":    lf.Category,
		"website":     lf.Website,
		"phone":       lf.Phone,
		"address":     lf.Address,
		"approved":    lf.Approved,
	}).Error
}
