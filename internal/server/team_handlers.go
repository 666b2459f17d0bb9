// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"townsquare/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetTeamMembers lists team members in display order (public)
// @Summary List team members
// @Tags team
// @Produce json
// @Success 200 {array} models.TeamMember
// @Router /team [get]
func (s *Server) GetTeamMembers(c *fiber.Ctx) error {
	members, err := s.teamRepo.List(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(members)
}

// CreateTeamMember adds a team member (admin only)
// @Summary Create team member
// @Tags team
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,role=string,bio=string,avatar=string,sort_order=int} true "Member fields"
// @Success 201 {object} models.TeamMember
// @Failure 400 {object} models.ErrorResponse
// @Router /team [post]
func (s *Server) CreateTeamMember(c *fiber.Ctx) error {
	var req struct {
		Name      string `json:"name"`
		Role      string `json:"role"`
		Bio       string `json:"bio"`
		Avatar    string `json:"avatar"`
		SortOrder int    `json:"sort_order"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" || req.Role == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name and role are required"))
	}

	member := &models.TeamMember{
		Name:      req.Name,
		Role:      req.Role,
		Bio:       req.Bio,
		Avatar:    req.Avatar,
		SortOrder: req.SortOrder,
	}
	if err := s.teamRepo.Create(c.UserContext(), member); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

// UpdateTeamMember updates a team member (admin only)
// @Summary Update team member
// @Tags team
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} models.TeamMember
// @Failure 404 {object} models.ErrorResponse
// @Router /team/{id} [put]
func (s *Server) UpdateTeamMember(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	member, err := s.teamRepo.GetByID(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	var req struct {
		Name      *string `json:"name"`
		Role      *string `json:"role"`
		Bio       *string `json:"bio"`
		Avatar    *string `json:"avatar"`
		SortOrder *int    `json:"sort_order"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.Bio != nil {
		member.Bio = *req.Bio
	}
	if req.Avatar != nil {
		member.Avatar = *req.Avatar
	}
	if req.SortOrder != nil {
		member.SortOrder = *req.SortOrder
	}

	if err := s.teamRepo.Update(c.UserContext(), member); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(member)
}

// DeleteTeamMember removes a team member (admin only)
// @Summary Delete team member
// @Tags team
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200
// @Failure 404 {object} models.ErrorResponse
// @Router /team/{id} [delete]
func (s *Server) DeleteTeamMember(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.teamRepo.GetByID(c.UserContext(), id); err != nil {
		return respondServiceError(c, err)
	}
	if err := s.teamRepo.Delete(c.UserContext(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
