package repository

import (
	"context"
	"errors"

	"townsquare/internal/models"

	"gorm.io/gorm"
)

// EnrollmentRepository defines persistence operations for course enrollments.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.CourseEnrollment) error
	GetByID(ctx context.Context, id uint) (*models.CourseEnrollment, error)
	Update(ctx context.Context, enrollment *models.CourseEnrollment) error
	ListByUser(ctx context.Context, userID uint) ([]models.CourseEnrollment, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.CourseEnrollment, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository returns a new EnrollmentRepository implementation.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.CourseEnrollment) error {
	if err := r.db.WithContext(ctx).Create(enrollment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id uint) (*models.CourseEnrollment, error) {
	var enrollment models.CourseEnrollment
	if err := readDB(r.db).WithContext(ctx).First(&enrollment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Enrollment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) Update(ctx context.Context, enrollment *models.CourseEnrollment) error {
	if err := r.db.WithContext(ctx).Save(enrollment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *enrollmentRepository) ListByUser(ctx context.Context, userID uint) ([]models.CourseEnrollment, error) {
	var enrollments []models.CourseEnrollment
	err := readDB(r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&enrollments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return enrollments, nil
}

func (r *enrollmentRepository) ListAll(ctx context.Context, limit, offset int) ([]models.CourseEnrollment, error) {
	q := readDB(r.db).WithContext(ctx).Preload("User").Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var enrollments []models.CourseEnrollment
	if err := q.Find(&enrollments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return enrollments, nil
}
