package repository

import (
	"context"
	"errors"

	"townsquare/internal/cache"
	"townsquare/internal/models"

	"gorm.io/gorm"
)

// DirectoryFilter narrows listing queries.
type DirectoryFilter struct {
	Category     string
	ApprovedOnly bool
	// OwnerID limits to listings owned by that user.
	OwnerID uint
	Limit   int
	Offset  int
}

// DirectoryRepository defines persistence operations for business listings.
type DirectoryRepository interface {
	Create(ctx context.Context, listing *models.DirectoryListing) error
	GetByID(ctx context.Context, id uint) (*models.DirectoryListing, error)
	GetBySlug(ctx context.Context, slug string) (*models.DirectoryListing, error)
	Update(ctx context.Context, listing *models.DirectoryListing) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter DirectoryFilter) ([]models.DirectoryListing, error)
	Categories(ctx context.Context) ([]string, error)
}

type directoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository returns a new DirectoryRepository implementation.
func NewDirectoryRepository(db *gorm.DB) DirectoryRepository {
	return &directoryRepository{db: db}
}

func (r *directoryRepository) Create(ctx context.Context, listing *models.DirectoryListing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A listing with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *directoryRepository) GetByID(ctx context.Context, id uint) (*models.DirectoryListing, error) {
	var listing models.DirectoryListing
	if err := readDB(r.db).WithContext(ctx).First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Listing", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &listing, nil
}

func (r *directoryRepository) GetBySlug(ctx context.Context, slug string) (*models.DirectoryListing, error) {
	var listing models.DirectoryListing
	key := cache.ListingKey(slug)

	err := cache.Aside(ctx, key, &listing, cache.ListingTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).Where("slug = ?", slug).First(&listing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Listing", slug)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *directoryRepository) Update(ctx context.Context, listing *models.DirectoryListing) error {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A listing with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateListing(ctx, listing.Slug)
	return nil
}

func (r *directoryRepository) Delete(ctx context.Context, id uint) error {
	listing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.DirectoryListing{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateListing(ctx, listing.Slug)
	return nil
}

func (r *directoryRepository) List(ctx context.Context, filter DirectoryFilter) ([]models.DirectoryListing, error) {
	q := readDB(r.db).WithContext(ctx).Model(&models.DirectoryListing{})
	if filter.ApprovedOnly {
		q = q.Where("approved = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.OwnerID != 0 {
		q = q.Where("user_id = ?", filter.OwnerID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var listings []models.DirectoryListing
	if err := q.Order("name asc").Find(&listings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

func (r *directoryRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := readDB(r.db).WithContext(ctx).Model(&models.DirectoryListing{}).
		Where("approved = ? AND category <> ''", true).
		Distinct("category").
		Order("category asc").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}
