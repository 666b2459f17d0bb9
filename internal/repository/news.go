package repository

import (
	"context"
	"errors"

	"townsquare/internal/cache"
	"townsquare/internal/models"

	"gorm.io/gorm"
)

// NewsRepository defines persistence operations for news articles.
type NewsRepository interface {
	Create(ctx context.Context, article *models.NewsArticle) error
	GetByID(ctx context.Context, id uint) (*models.NewsArticle, error)
	Update(ctx context.Context, article *models.NewsArticle) error
	Delete(ctx context.Context, id uint) error
	// List returns articles newest-first. publishedOnly hides drafts.
	List(ctx context.Context, publishedOnly bool, limit, offset int) ([]models.NewsArticle, error)
}

type newsRepository struct {
	db *gorm.DB
}

// NewNewsRepository returns a new NewsRepository implementation.
func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) Create(ctx context.Context, article *models.NewsArticle) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *newsRepository) GetByID(ctx context.Context, id uint) (*models.NewsArticle, error) {
	var article models.NewsArticle
	key := cache.NewsKey(id)

	err := cache.Aside(ctx, key, &article, cache.NewsTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).First(&article, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("News article", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *newsRepository) Update(ctx context.Context, article *models.NewsArticle) error {
	if err := r.db.WithContext(ctx).Save(article).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateNews(ctx, article.ID)
	return nil
}

func (r *newsRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.NewsArticle{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateNews(ctx, id)
	return nil
}

func (r *newsRepository) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]models.NewsArticle, error) {
	q := readDB(r.db).WithContext(ctx).Model(&models.NewsArticle{})
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var articles []models.NewsArticle
	if err := q.Order("created_at desc").Find(&articles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return articles, nil
}
