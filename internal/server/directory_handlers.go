// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"townsquare/internal/models"
	"townsquare/internal/repository"
	"townsquare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateListing submits a business directory listing. New listings
// await admin approval before they show up in public browsing.
// @Summary Create directory listing
// @Tags directory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,slug=string,description=string,category=string,website=string,phone=string,address=string,image_hash=string} true "Listing fields"
// @Success 201 {object} models.DirectoryListing
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /directory [post]
func (s *Server) CreateListing(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Name        string `json:"name"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Website     string `json:"website"`
		Phone       string `json:"phone"`
		Address     string `json:"address"`
		ImageHash   string `json:"image_hash"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	listing, err := s.directoryService.CreateListing(c.UserContext(), service.CreateListingInput{
		UserID:      userID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Category:    req.Category,
		Website:     req.Website,
		Phone:       req.Phone,
		Address:     req.Address,
		ImageHash:   req.ImageHash,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(listing)
}

// GetListings lists directory entries (public, approved only).
// ?category filters; ?mine=true keeps the caller's own listings
// including unapproved ones; ?all=true is the admin review queue.
// @Summary List directory listings
// @Tags directory
// @Produce json
// @Success 200 {array} models.DirectoryListing
// @Router /directory [get]
func (s *Server) GetListings(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	userID := currentUserID(c)

	filter := repository.DirectoryFilter{
		Category:     c.Query("category"),
		ApprovedOnly: true,
		Limit:        p.Limit,
		Offset:       p.Offset,
	}
	if c.QueryBool("mine", false) && userID != 0 {
		filter.OwnerID = userID
		filter.ApprovedOnly = false
	}
	// admins may ask for the unapproved queue
	if c.QueryBool("all", false) {
		filter.ApprovedOnly = false
	}

	listings, err := s.directoryService.ListListings(c.UserContext(), filter, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(listings)
}

// GetListingBySlug returns one listing (public)
// @Summary Get directory listing
// @Tags directory
// @Produce json
// @Param slug path string true "Listing slug"
// @Success 200 {object} models.DirectoryListing
// @Failure 404 {object} models.ErrorResponse
// @Router /directory/{slug} [get]
func (s *Server) GetListingBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	listing, err := s.directoryService.GetListing(c.UserContext(), slug, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(listing)
}

// GetDirectoryCategories returns the distinct categories in use
// @Summary List directory categories
// @Tags directory
// @Produce json
// @Success 200 {array} string
// @Router /directory/categories [get]
func (s *Server) GetDirectoryCategories(c *fiber.Ctx) error {
	categories, err := s.directoryService.Categories(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(categories)
}

// UpdateListing updates a listing (owner or admin)
// @Summary Update directory listing
// @Tags directory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Listing ID"
// @Success 200 {object} models.DirectoryListing
// @Failure 403 {object} models.ErrorResponse
// @Router /directory/{id} [put]
func (s *Server) UpdateListing(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Website     *string `json:"website"`
		Phone       *string `json:"phone"`
		Address     *string `json:"address"`
		ImageHash   *string `json:"image_hash"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	listing, err := s.directoryService.UpdateListing(c.UserContext(), service.UpdateListingInput{
		UserID:      userID,
		ListingID:   id,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Website:     req.Website,
		Phone:       req.Phone,
		Address:     req.Address,
		ImageHash:   req.ImageHash,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(listing)
}

// DeleteListing deletes a listing (owner or admin)
// @Summary Delete directory listing
// @Tags directory
// @Security BearerAuth
// @Param id path int true "Listing ID"
// @Success 200
// @Failure 403 {object} models.ErrorResponse
// @Router /directory/{id} [delete]
func (s *Server) DeleteListing(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.directoryService.DeleteListing(c.UserContext(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// SetListingApproval approves or unapproves a listing (admin only)
// @Summary Set listing approval
// @Tags directory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Listing ID"
// @Param request body object{approved=bool} true "Approval"
// @Success 200 {object} models.DirectoryListing
// @Failure 403 {object} models.ErrorResponse
// @Router /directory/{id}/approve [post]
func (s *Server) SetListingApproval(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Approved bool `json:"approved"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	listing, err := s.directoryService.SetApproval(c.UserContext(), userID, id, req.Approved)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(listing)
}
