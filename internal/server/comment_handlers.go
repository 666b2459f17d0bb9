// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"townsquare/internal/models"
	"townsquare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment returns the handler posting a comment (or a reply, via
// parent_id) on a content item of the given type.
// @Summary Create comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Content ID"
// @Param request body object{content=string,parent_id=int} true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id}/comments [post]
func (s *Server) CreateComment(contentType models.ContentType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		contentID, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}

		var req struct {
			Content  string `json:"content"`
			ParentID *uint  `json:"parent_id"`
		}
		if parseErr := c.BodyParser(&req); parseErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}

		created, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
			UserID:      userID,
			ContentType: contentType,
			ContentID:   contentID,
			ParentID:    req.ParentID,
			Content:     req.Content,
		})
		if err != nil {
			return respondServiceError(c, err)
		}

		s.publishBroadcastEvent(EventCommentCreated, map[string]interface{}{
			"content_type": contentType,
			"content_id":   contentID,
			"comment":      created,
		})

		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// GetComments returns the handler listing top-level comments on a
// content item, newest first, paginated with ?page and ?per_page.
// @Summary List comments
// @Tags comments
// @Produce json
// @Param id path int true "Content ID"
// @Success 200 {object} models.CommentPage
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id}/comments [get]
func (s *Server) GetComments(contentType models.ContentType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		contentID, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}

		page := c.QueryInt("page", 1)
		perPage := c.QueryInt("per_page", 20)

		result, err := s.commentService.ListComments(c.UserContext(), contentType, contentID, page, perPage)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(result)
	}
}

// GetReplies lists the replies under a comment, oldest first
// @Summary List comment replies
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {array} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id}/replies [get]
func (s *Server) GetReplies(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	replies, err := s.commentService.ListReplies(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(replies)
}

// UpdateComment edits a comment (author only)
// @Summary Update comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body object{content=string} true "New content"
// @Success 200 {object} models.Comment
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	updated, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    userID,
		CommentID: id,
		Content:   req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishBroadcastEvent(EventCommentUpdated, map[string]interface{}{
		"content_type": updated.ContentType,
		"content_id":   updated.ContentID,
		"comment":      updated,
	})

	return c.JSON(updated)
}

// DeleteComment soft-deletes a comment (author or admin)
// @Summary Delete comment
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    userID,
		CommentID: id,
	}); err != nil {
		return respondServiceError(c, err)
	}

	s.publishBroadcastEvent(EventCommentDeleted, map[string]interface{}{
		"comment_id": id,
	})

	return c.SendStatus(fiber.StatusOK)
}

// FlagComment reports a comment for moderation. Idempotent per user.
// @Summary Flag comment
// @Tags comments
// @Accept json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body object{reason=string} true "Reason"
// @Success 200
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id}/flag [post]
func (s *Server) FlagComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.commentService.FlagComment(c.UserContext(), service.FlagCommentInput{
		UserID:    userID,
		CommentID: id,
		Reason:    req.Reason,
	}); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
