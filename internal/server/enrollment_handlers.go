// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"townsquare/internal/models"
	"townsquare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitEnrollment applies for a course. A confirmation mail goes out
// asynchronously; the enrollment succeeds even when mail is down.
// @Summary Submit course enrollment
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{course=string,email=string,message=string} true "Enrollment"
// @Success 201 {object} models.CourseEnrollment
// @Failure 400 {object} models.ErrorResponse
// @Router /enrollments [post]
func (s *Server) SubmitEnrollment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Course  string `json:"course"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	enrollment, err := s.enrollmentService.Enroll(c.UserContext(), service.EnrollInput{
		UserID:  userID,
		Course:  req.Course,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(enrollment)
}

// GetMyEnrollments lists the caller's enrollments
// @Summary List own enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.CourseEnrollment
// @Router /enrollments/me [get]
func (s *Server) GetMyEnrollments(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	enrollments, err := s.enrollmentService.ListOwn(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(enrollments)
}

// GetAllEnrollments lists every enrollment (admin only)
// @Summary List all enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.CourseEnrollment
// @Failure 403 {object} models.ErrorResponse
// @Router /enrollments [get]
func (s *Server) GetAllEnrollments(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, 50)

	enrollments, err := s.enrollmentService.ListAll(c.UserContext(), userID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(enrollments)
}

// UpdateEnrollmentStatus changes an enrollment status. Admins set any
// status; applicants may only cancel their own.
// @Summary Update enrollment status
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param request body object{status=string} true "New status"
// @Success 200 {object} models.CourseEnrollment
// @Failure 403 {object} models.ErrorResponse
// @Router /enrollments/{id}/status [put]
func (s *Server) UpdateEnrollmentStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status models.EnrollmentStatus `json:"status"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	enrollment, err := s.enrollmentService.SetStatus(c.UserContext(), userID, id, req.Status)
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishUserEvent(enrollment.UserID, EventEnrollmentState, map[string]interface{}{
		"enrollment_id": enrollment.ID,
		"course":        enrollment.Course,
		"status":        enrollment.Status,
	})

	return c.JSON(enrollment)
}
