// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"townsquare/internal/models"

	"gorm.io/gorm"
)

// ContentRegistry resolves polymorphic (content type, id) references for
// the reaction and comment engines. Adding a reactable type means adding
// one binding here; the engines themselves stay untouched.
type ContentRegistry interface {
	Exists(ctx context.Context, contentType models.ContentType, contentID uint) (bool, error)
	// AdjustCommentCount shifts the denormalized comment counter on the
	// target row. Runs inside the caller's transaction.
	AdjustCommentCount(tx *gorm.DB, contentType models.ContentType, contentID uint, delta int) error
	IncrementViews(ctx context.Context, contentType models.ContentType, contentID uint) error
}

type contentBinding struct {
	model func() interface{}
	// scope narrows existence checks, e.g. excluding deleted comments.
	scope func(*gorm.DB) *gorm.DB
	// hasCommentCount marks types carrying a comment_count column.
	hasCommentCount bool
	hasViews        bool
}

type contentRegistry struct {
	db       *gorm.DB
	bindings map[models.ContentType]contentBinding
}

// NewContentRegistry creates a registry wired to every reactable model.
func NewContentRegistry(db *gorm.DB) ContentRegistry {
	return &contentRegistry{
		db: db,
		bindings: map[models.ContentType]contentBinding{
			models.ContentTypeEvent: {
				model:           func() interface{} { return &models.Event{} },
				hasCommentCount: true,
				hasViews:        true,
			},
			models.ContentTypeNews: {
				model:           func() interface{} { return &models.NewsArticle{} },
				hasCommentCount: true,
				hasViews:        true,
			},
			models.ContentTypeDirectory: {
				model:           func() interface{} { return &models.DirectoryListing{} },
				hasCommentCount: true,
				hasViews:        true,
			},
			models.ContentTypeComment: {
				model: func() interface{} { return &models.Comment{} },
				scope: func(q *gorm.DB) *gorm.DB {
					return q.Where("status <> ?", models.CommentStatusDeleted)
				},
			},
		},
	}
}

func (r *contentRegistry) binding(contentType models.ContentType) (contentBinding, bool) {
	b, ok := r.bindings[contentType]
	return b, ok
}

func (r *contentRegistry) Exists(ctx context.Context, contentType models.ContentType, contentID uint) (bool, error) {
	b, ok := r.binding(contentType)
	if !ok {
		return false, nil
	}

	q := readDB(r.db).WithContext(ctx).Model(b.model()).Where("id = ?", contentID)
	if b.scope != nil {
		q = b.scope(q)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *contentRegistry) AdjustCommentCount(tx *gorm.DB, contentType models.ContentType, contentID uint, delta int) error {
	b, ok := r.binding(contentType)
	if !ok || !b.hasCommentCount {
		return nil
	}
	return tx.Model(b.model()).
		Where("id = ?", contentID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + ?", delta)).Error
}

func (r *contentRegistry) IncrementViews(ctx context.Context, contentType models.ContentType, contentID uint) error {
	b, ok := r.binding(contentType)
	if !ok || !b.hasViews {
		return nil
	}
	return r.db.WithContext(ctx).Model(b.model()).
		Where("id = ?", contentID).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}
