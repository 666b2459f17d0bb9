// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"townsquare/internal/models"
	"townsquare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateNewsArticle creates a news article (admin only, enforced in the service)
// @Summary Create news article
// @Tags news
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,body=string,image_hash=string,published=bool} true "Article fields"
// @Success 201 {object} models.NewsArticle
// @Failure 403 {object} models.ErrorResponse
// @Router /news [post]
func (s *Server) CreateNewsArticle(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title     string `json:"title"`
		Body      string `json:"body"`
		ImageHash string `json:"image_hash"`
		Published bool   `json:"published"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	article, err := s.newsService.CreateArticle(c.UserContext(), service.CreateNewsInput{
		UserID:    userID,
		Title:     req.Title,
		Body:      req.Body,
		ImageHash: req.ImageHash,
		Published: req.Published,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	if article.Published {
		s.publishBroadcastEvent(EventNewsPublished, map[string]interface{}{
			"article_id": article.ID,
			"title":      article.Title,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(article)
}

// GetNewsArticles lists news (public). Drafts are visible to admins
// asking for them with ?drafts=true.
// @Summary List news articles
// @Tags news
// @Produce json
// @Success 200 {array} models.NewsArticle
// @Router /news [get]
func (s *Server) GetNewsArticles(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	userID := currentUserID(c)

	articles, err := s.newsService.ListArticles(c.UserContext(), userID,
		c.QueryBool("drafts", false), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(articles)
}

// GetNewsArticle returns one article; unpublished drafts 404 for
// everyone but admins.
// @Summary Get news article
// @Tags news
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {object} models.NewsArticle
// @Failure 404 {object} models.ErrorResponse
// @Router /news/{id} [get]
func (s *Server) GetNewsArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	article, err := s.newsService.GetArticle(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(article)
}

// UpdateNewsArticle updates an article (admin only)
// @Summary Update news article
// @Tags news
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Article ID"
// @Success 200 {object} models.NewsArticle
// @Failure 403 {object} models.ErrorResponse
// @Router /news/{id} [put]
func (s *Server) UpdateNewsArticle(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title     *string `json:"title"`
		Body      *string `json:"body"`
		ImageHash *string `json:"image_hash"`
		Published *bool   `json:"published"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	article, err := s.newsService.UpdateArticle(c.UserContext(), service.UpdateNewsInput{
		UserID:    userID,
		ArticleID: id,
		Title:     req.Title,
		Body:      req.Body,
		ImageHash: req.ImageHash,
		Published: req.Published,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(article)
}

// DeleteNewsArticle deletes an article (admin only)
// @Summary Delete news article
// @Tags news
// @Security BearerAuth
// @Param id path int true "Article ID"
// @Success 200
// @Failure 403 {object} models.ErrorResponse
// @Router /news/{id} [delete]
func (s *Server) DeleteNewsArticle(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.newsService.DeleteArticle(c.UserContext(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
