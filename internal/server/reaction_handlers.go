// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"townsquare/internal/models"
	"townsquare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ToggleReaction returns the handler applying one press of the given
// reaction button on a content item. Pressing the same button again
// removes the reaction; pressing the opposite one switches it.
// @Summary Toggle reaction
// @Tags reactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Content ID"
// @Success 200 {object} models.ReactionSummary
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id}/like [post]
func (s *Server) ToggleReaction(contentType models.ContentType, kind models.ReactionKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		contentID, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}

		summary, err := s.reactionService.Toggle(c.UserContext(), service.ToggleReactionInput{
			UserID:      userID,
			ContentType: contentType,
			ContentID:   contentID,
			Kind:        kind,
		})
		if err != nil {
			return respondServiceError(c, err)
		}

		s.publishBroadcastEvent(EventReactionUpdated, map[string]interface{}{
			"content_type": contentType,
			"content_id":   contentID,
			"likes":        summary.Likes,
			"dislikes":     summary.Dislikes,
		})

		return c.JSON(summary)
	}
}

// GetReactions returns the handler reading reaction counts on a content
// item. Signed-in callers also get their own reaction back.
// @Summary Get reaction summary
// @Tags reactions
// @Produce json
// @Param id path int true "Content ID"
// @Success 200 {object} models.ReactionSummary
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id}/reactions [get]
func (s *Server) GetReactions(contentType models.ContentType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		contentID, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}

		summary, err := s.reactionService.Summary(c.UserContext(), contentType, contentID, currentUserID(c))
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(summary)
	}
}
