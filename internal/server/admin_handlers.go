package server

import (
	"townsquare/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFlaggedComments lists comments carrying moderation flags (admin only)
// @Summary List flagged comments
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Comment
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/comments/flagged [get]
func (s *Server) GetFlaggedComments(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	comments, err := s.commentService.ListFlagged(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// SetCommentStatus switches a comment between active and hidden (admin only)
// @Summary Moderate comment
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body object{status=string} true "active or hidden"
// @Success 200
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/comments/{id}/status [put]
func (s *Server) SetCommentStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status models.CommentStatus `json:"status"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.commentService.SetStatus(c.UserContext(), userID, id, req.Status); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
