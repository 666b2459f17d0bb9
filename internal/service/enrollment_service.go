package service

import (
	"context"
	"fmt"
	"log/slog"

	"townsquare/internal/mail"
	"townsquare/internal/middleware"
	"townsquare/internal/models"
	"townsquare/internal/repository"
	"townsquare/internal/validation"
)

// EnrollmentService handles course signups and their confirmation mail.
type EnrollmentService struct {
	enrollmentRepo repository.EnrollmentRepository
	mailer         *mail.Mailer
	isAdmin        AdminChecker
}

type EnrollInput struct {
	UserID  uint
	Course  string
	Email   string
	Message string
}

func NewEnrollmentService(
	enrollmentRepo repository.EnrollmentRepository,
	mailer *mail.Mailer,
	isAdmin AdminChecker,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		mailer:         mailer,
		isAdmin:        isAdmin,
	}
}

// Enroll records a signup and sends a confirmation mail. Mail failure
// does not fail the enrollment.
func (s *EnrollmentService) Enroll(ctx context.Context, in EnrollInput) (*models.CourseEnrollment, error) {
	if in.Course == "" {
		return nil, models.NewValidationError("Course is required")
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	enrollment := &models.CourseEnrollment{
		Course:  in.Course,
		UserID:  in.UserID,
		Email:   in.Email,
		Message: in.Message,
		Status:  models.EnrollmentPending,
	}
	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, err
	}

	if s.mailer != nil {
		s.mailer.SendAsync(ctx, mail.Message{
			To:      []string{in.Email},
			Subject: fmt.Sprintf("Enrollment received: %s", in.Course),
			Body: fmt.Sprintf(
				"We received your enrollment request for %s.\n\nWe will confirm your spot shortly.\n",
				in.Course,
			),
		})
	}

	middleware.Logger.Info("Course enrollment recorded",
		slog.Uint64("user_id", uint64(in.UserID)),
		slog.String("course", in.Course))
	return enrollment, nil
}

func (s *EnrollmentService) ListOwn(ctx context.Context, userID uint) ([]models.CourseEnrollment, error) {
	return s.enrollmentRepo.ListByUser(ctx, userID)
}

func (s *EnrollmentService) ListAll(ctx context.Context, userID uint, limit, offset int) ([]models.CourseEnrollment, error) {
	if err := requireAdmin(ctx, userID, s.isAdmin); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.ListAll(ctx, limit, offset)
}

// SetStatus moves an enrollment through its lifecycle. Admins can set
// any status; owners may only cancel their own pending request.
func (s *EnrollmentService) SetStatus(ctx context.Context, userID, enrollmentID uint, status models.EnrollmentStatus) (*models.CourseEnrollment, error) {
	if !status.Valid() {
		return nil, models.NewValidationError("Status must be pending, confirmed or cancelled")
	}

	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	admin := false
	if s.isAdmin != nil {
		admin, err = s.isAdmin(ctx, userID)
		if err != nil {
			return nil, err
		}
	}
	if !admin {
		if enrollment.UserID != userID {
			return nil, models.NewForbiddenError("You can only manage your own enrollments")
		}
		if status != models.EnrollmentCancelled {
			return nil, models.NewForbiddenError("Only an admin can confirm enrollments")
		}
	}

	enrollment.Status = status
	if err := s.enrollmentRepo.Update(ctx, enrollment); err != nil {
		return nil, err
	}

	if s.mailer != nil && status == models.EnrollmentConfirmed {
		s.mailer.SendAsync(ctx, mail.Message{
			To:      []string{enrollment.Email},
			Subject: fmt.Sprintf("Enrollment confirmed: %s", enrollment.Course),
			Body:    fmt.Sprintf("Your spot in %s is confirmed. See you there!\n", enrollment.Course),
		})
	}
	return enrollment, nil
}
