package repository

import (
	"context"

	"townsquare/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment storage operations.
// Denormalized counters (comment_count on the target, reply_count on the
// parent) are maintained in the same transaction as the row change.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListTopLevel(ctx context.Context, contentType models.ContentType, contentID uint, page, perPage int) (*models.CommentPage, error)
	ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	SoftDelete(ctx context.Context, comment *models.Comment) error
	// Flag records a moderation flag. Returns false when the user had
	// already flagged this comment.
	Flag(ctx context.Context, flag *models.CommentFlag) (bool, error)
	ListFlagged(ctx context.Context) ([]*models.Comment, error)
	SetStatus(ctx context.Context, id uint, status models.CommentStatus) error
}

type commentRepository struct {
	db       *gorm.DB
	registry ContentRegistry
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB, registry ContentRegistry) CommentRepository {
	return &commentRepository{db: db, registry: registry}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if comment.ParentID != nil {
			err := tx.Model(&models.Comment{}).
				Where("id = ?", *comment.ParentID).
				UpdateColumn("reply_count", gorm.Expr("reply_count + 1")).Error
			if err != nil {
				return err
			}
		}
		return r.registry.AdjustCommentCount(tx, comment.ContentType, comment.ContentID, 1)
	})
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := readDB(r.db).WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListTopLevel(
	ctx context.Context,
	contentType models.ContentType,
	contentID uint,
	page, perPage int,
) (*models.CommentPage, error) {
	base := readDB(r.db).WithContext(ctx).Model(&models.Comment{}).
		Where("content_type = ? AND content_id = ? AND parent_id IS NULL AND status = ?",
			contentType, contentID, models.CommentStatusActive)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var comments []*models.Comment
	err := base.Preload("User").
		Order("created_at desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	pageCount := int((total + int64(perPage) - 1) / int64(perPage))
	return &models.CommentPage{
		Comments:  comments,
		Total:     total,
		Page:      page,
		PageCount: pageCount,
	}, nil
}

func (r *commentRepository) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	var replies []*models.Comment
	err := readDB(r.db).WithContext(ctx).Preload("User").
		Where("parent_id = ? AND status = ?", parentID, models.CommentStatusActive).
		Order("created_at asc").
		Find(&replies).Error
	return replies, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// SoftDelete marks the comment deleted and rolls the target's
// comment_count back. Reply counters on the parent are left as-is so
// thread shape stays visible.
func (r *commentRepository) SoftDelete(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Comment{}).
			Where("id = ?", comment.ID).
			Update("status", models.CommentStatusDeleted).Error
		if err != nil {
			return err
		}
		return r.registry.AdjustCommentCount(tx, comment.ContentType, comment.ContentID, -1)
	})
}

func (r *commentRepository) Flag(ctx context.Context, flag *models.CommentFlag) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "comment_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(flag)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *commentRepository) ListFlagged(ctx context.Context) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := readDB(r.db).WithContext(ctx).Preload("User").Preload("Flags").
		Where("status <> ? AND id IN (?)",
			models.CommentStatusDeleted,
			readDB(r.db).Model(&models.CommentFlag{}).Select("comment_id"),
		).
		Order("created_at desc").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) SetStatus(ctx context.Context, id uint, status models.CommentStatus) error {
	return r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("status", status).Error
}
