package repository

import (
	"context"
	"errors"

	"townsquare/internal/models"

	"gorm.io/gorm"
)

// ImageRepository defines persistence operations for uploaded images.
type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	GetByHash(ctx context.Context, hash string) (*models.Image, error)
	AddVariant(ctx context.Context, variant *models.ImageVariant) error
	Delete(ctx context.Context, hash string) error
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository returns a new ImageRepository implementation.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *models.Image) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		if isUniqueConstraintError(err) {
			// Same bytes uploaded twice; the existing record wins.
			return nil
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *imageRepository) GetByHash(ctx context.Context, hash string) (*models.Image, error) {
	var image models.Image
	err := readDB(r.db).WithContext(ctx).Preload("Variants").
		Where("hash = ?", hash).
		First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Image", hash)
		}
		return nil, models.NewInternalError(err)
	}
	return &image, nil
}

func (r *imageRepository) AddVariant(ctx context.Context, variant *models.ImageVariant) error {
	if err := r.db.WithContext(ctx).Create(variant).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *imageRepository) Delete(ctx context.Context, hash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var image models.Image
		if err := tx.Where("hash = ?", hash).First(&image).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Image", hash)
			}
			return models.NewInternalError(err)
		}
		if err := tx.Where("image_id = ?", image.ID).Delete(&models.ImageVariant{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Delete(&image).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}
