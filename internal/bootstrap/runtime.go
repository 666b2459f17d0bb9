// Package bootstrap wires up runtime dependencies shared by the server
// binary: database, cache, the development root admin, and demo seeding.
package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"townsquare/internal/cache"
	"townsquare/internal/config"
	"townsquare/internal/database"
	"townsquare/internal/middleware"
	"townsquare/internal/models"
	"townsquare/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemoData bool
}

// InitRuntime connects to the database and Redis and optionally seeds demo data.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional; a nil client degrades caching and the live feed.
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevRootAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	if opts.SeedDemoData {
		if err := seed.Seed(db, seed.Options{
			NumUsers:    25,
			NumEvents:   12,
			NumArticles: 10,
			NumListings: 15,
			NumComments: 60,
			FixtureFile: cfg.SeedFixtureFile,
		}); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

// ensureDevRootAdmin guarantees user ID 1 exists and is an admin in
// development. Production environments never run this path.
func ensureDevRootAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	username, email := rootIdentity(cfg)
	if cfg.DevRootPassword == "" {
		return fmt.Errorf("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.DevRootPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := upsertRoot(tx, cfg, username, email, string(hashed)); err != nil {
			return err
		}
		return fixUserSequence(tx)
	})
	if err != nil {
		return err
	}

	middleware.Logger.Info("Development root admin ensured", "user_id", 1, "email", email)
	return nil
}

func rootIdentity(cfg *config.Config) (username, email string) {
	username = strings.TrimSpace(cfg.DevRootUsername)
	if username == "" {
		username = "townsquare_root"
	}
	email = strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@townsquare.local"
	}
	return username, email
}

func upsertRoot(tx *gorm.DB, cfg *config.Config, username, email, hashed string) error {
	var root models.User
	findErr := tx.First(&root, 1).Error

	if errors.Is(findErr, gorm.ErrRecordNotFound) {
		return tx.Create(&models.User{
			ID:       1,
			Username: username,
			Email:    email,
			Password: hashed,
			IsAdmin:  true,
		}).Error
	}
	if findErr != nil {
		return findErr
	}

	// Existing user 1 is promoted; its credentials are left alone
	// unless force is requested.
	updates := map[string]any{"is_admin": true}
	if cfg.DevRootForceCredentials {
		updates["username"] = username
		updates["email"] = email
		updates["password"] = hashed
	}
	return tx.Model(&models.User{}).Where("id = ?", 1).Updates(updates).Error
}

// fixUserSequence keeps the users ID sequence ahead of the explicit
// ID-1 insert. PostgreSQL-specific; sqlite in tests skips it.
func fixUserSequence(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	err := tx.Exec(`
		SELECT setval(
			pg_get_serial_sequence('users', 'id'),
			GREATEST((SELECT COALESCE(MAX(id), 1) FROM users), 1),
			true
		)
	`).Error
	if err != nil {
		return fmt.Errorf("failed to reset users sequence: %w", err)
	}
	return nil
}
