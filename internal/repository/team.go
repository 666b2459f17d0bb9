package repository

import (
	"context"
	"errors"

	"townsquare/internal/cache"
	"townsquare/internal/models"

	"gorm.io/gorm"
)

// TeamRepository defines persistence operations for team members.
type TeamRepository interface {
	Create(ctx context.Context, member *models.TeamMember) error
	GetByID(ctx context.Context, id uint) (*models.TeamMember, error)
	Update(ctx context.Context, member *models.TeamMember) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]models.TeamMember, error)
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository returns a new TeamRepository implementation.
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(ctx context.Context, member *models.TeamMember) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTeamList(ctx)
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id uint) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := readDB(r.db).WithContext(ctx).First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Team member", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &member, nil
}

func (r *teamRepository) Update(ctx context.Context, member *models.TeamMember) error {
	if err := r.db.WithContext(ctx).Save(member).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTeamList(ctx)
	return nil
}

func (r *teamRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.TeamMember{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTeamList(ctx)
	return nil
}

func (r *teamRepository) List(ctx context.Context) ([]models.TeamMember, error) {
	var members []models.TeamMember

	err := cache.Aside(ctx, cache.TeamListKey, &members, cache.TeamListTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).
			Order("sort_order asc, name asc").
			Find(&members).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}
