package repository

import (
	"context"
	"errors"

	"townsquare/internal/models"

	"gorm.io/gorm"
)

// ReactionRepository defines interface for reaction storage operations
type ReactionRepository interface {
	// Toggle applies one press of the kind button for the user on the
	// target and returns the resulting summary.
	Toggle(ctx context.Context, userID uint, contentType models.ContentType, contentID uint, kind models.ReactionKind) (*models.ReactionSummary, error)
	// Summary returns current counts and the user's own reaction.
	// userID zero means an anonymous caller.
	Summary(ctx context.Context, contentType models.ContentType, contentID uint, userID uint) (*models.ReactionSummary, error)
	// DeleteForTarget removes all reactions on a target, used when the
	// target itself is deleted.
	DeleteForTarget(tx *gorm.DB, contentType models.ContentType, contentID uint) error
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new ReactionRepository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Toggle(
	ctx context.Context,
	userID uint,
	contentType models.ContentType,
	contentID uint,
	kind models.ReactionKind,
) (*models.ReactionSummary, error) {
	var userReaction string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Reaction
		err := tx.Where(
			"user_id = ? AND content_type = ? AND content_id = ?",
			userID, contentType, contentID,
		).First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			reaction := models.Reaction{
				UserID:      userID,
				ContentType: contentType,
				ContentID:   contentID,
				Kind:        kind,
			}
			if err := tx.Create(&reaction).Error; err != nil {
				return err
			}
			userReaction = string(kind)
		case err != nil:
			return err
		case existing.Kind == kind:
			// Same button pressed again: remove the reaction.
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			userReaction = ""
		default:
			// Opposite button: switch the existing reaction.
			if err := tx.Model(&existing).Update("kind", kind).Error; err != nil {
				return err
			}
			userReaction = string(kind)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary, err := r.counts(ctx, contentType, contentID)
	if err != nil {
		return nil, err
	}
	summary.UserReaction = userReaction
	return summary, nil
}

func (r *reactionRepository) Summary(
	ctx context.Context,
	contentType models.ContentType,
	contentID uint,
	userID uint,
) (*models.ReactionSummary, error) {
	summary, err := r.counts(ctx, contentType, contentID)
	if err != nil {
		return nil, err
	}

	if userID != 0 {
		var own models.Reaction
		err := readDB(r.db).WithContext(ctx).Where(
			"user_id = ? AND content_type = ? AND content_id = ?",
			userID, contentType, contentID,
		).First(&own).Error
		if err == nil {
			summary.UserReaction = string(own.Kind)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return summary, nil
}

func (r *reactionRepository) counts(ctx context.Context, contentType models.ContentType, contentID uint) (*models.ReactionSummary, error) {
	type row struct {
		Kind  models.ReactionKind
		Count int64
	}
	var rows []row
	err := readDB(r.db).WithContext(ctx).Model(&models.Reaction{}).
		Select("kind, count(*) as count").
		Where("content_type = ? AND content_id = ?", contentType, contentID).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &models.ReactionSummary{}
	for _, row := range rows {
		switch row.Kind {
		case models.ReactionLike:
			summary.Likes = row.Count
		case models.ReactionDislike:
			summary.Dislikes = row.Count
		}
	}
	return summary, nil
}

func (r *reactionRepository) DeleteForTarget(tx *gorm.DB, contentType models.ContentType, contentID uint) error {
	return tx.Where(
		"content_type = ? AND content_id = ?", contentType, contentID,
	).Delete(&models.Reaction{}).Error
}
