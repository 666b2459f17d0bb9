// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"time"

	"townsquare/internal/models"
	"townsquare/internal/repository"
	"townsquare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateEvent creates a community event (protected)
// @Summary Create event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,description=string,date=string,location=string,image_hash=string,ticket_price_cents=int} true "Event fields"
// @Success 201 {object} models.Event
// @Failure 400 {object} models.ErrorResponse
// @Router /events [post]
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title            string    `json:"title"`
		Description      string    `json:"description"`
		Date             time.Time `json:"date"`
		Location         string    `json:"location"`
		ImageHash        string    `json:"image_hash"`
		TicketPriceCents int64     `json:"ticket_price_cents"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	event, err := s.eventService.CreateEvent(c.UserContext(), service.CreateEventInput{
		UserID:           userID,
		Title:            req.Title,
		Description:      req.Description,
		Date:             req.Date,
		Location:         req.Location,
		ImageHash:        req.ImageHash,
		TicketPriceCents: req.TicketPriceCents,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(event)
}

// GetEvents lists events (public). ?active=true keeps only active ones;
// ?from / ?until accept RFC 3339 bounds on the event date.
// @Summary List events
// @Tags events
// @Produce json
// @Success 200 {array} models.Event
// @Router /events [get]
func (s *Server) GetEvents(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	filter := repository.EventFilter{
		ActiveOnly: c.QueryBool("active", false),
		Limit:      p.Limit,
		Offset:     p.Offset,
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid from date"))
		}
		filter.From = &t
	}
	if raw := c.Query("until"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid until date"))
		}
		filter.Until = &t
	}

	events, err := s.eventService.ListEvents(c.UserContext(), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(events)
}

// GetEvent returns one event (public)
// @Summary Get event
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.Event
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id} [get]
func (s *Server) GetEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	event, err := s.eventService.GetEvent(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(event)
}

// UpdateEvent updates an event (owner or admin)
// @Summary Update event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} models.Event
// @Failure 403 {object} models.ErrorResponse
// @Router /events/{id} [put]
func (s *Server) UpdateEvent(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title            *string    `json:"title"`
		Description      *string    `json:"description"`
		Date             *time.Time `json:"date"`
		Location         *string    `json:"location"`
		ImageHash        *string    `json:"image_hash"`
		TicketPriceCents *int64     `json:"ticket_price_cents"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	event, err := s.eventService.UpdateEvent(c.UserContext(), service.UpdateEventInput{
		UserID:           userID,
		EventID:          id,
		Title:            req.Title,
		Description:      req.Description,
		Date:             req.Date,
		Location:         req.Location,
		ImageHash:        req.ImageHash,
		TicketPriceCents: req.TicketPriceCents,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(event)
}

// DeleteEvent deletes an event (owner or admin)
// @Summary Delete event
// @Tags events
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200
// @Failure 403 {object} models.ErrorResponse
// @Router /events/{id} [delete]
func (s *Server) DeleteEvent(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.eventService.DeleteEvent(c.UserContext(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// SetEventActive manually overrides an event's active flag (admin only).
// The periodic sweep may later revert it.
// @Summary Override event active flag
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body object{active=bool} true "Override"
// @Success 200 {object} models.Event
// @Router /events/{id}/active [post]
func (s *Server) SetEventActive(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Active bool `json:"active"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	event, err := s.eventService.SetActive(c.UserContext(), userID, id, req.Active)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(event)
}

// RSVPToEvent records the caller's RSVP. Paid events with a "going"
// reply also start a payment intent.
// @Summary RSVP to event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body object{status=string,ticket_type=string} true "RSVP"
// @Success 200 {object} service.RSVPResult
// @Failure 409 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /events/{id}/rsvp [post]
func (s *Server) RSVPToEvent(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status     models.RSVPStatus `json:"status"`
		TicketType string            `json:"ticket_type"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.eventService.RSVP(c.UserContext(), service.RSVPInput{
		UserID:     userID,
		EventID:    id,
		Status:     req.Status,
		TicketType: req.TicketType,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishBroadcastEvent(EventRSVPUpdated, map[string]interface{}{
		"event_id": id,
		"status":   result.Attendee.Status,
	})

	return c.JSON(result)
}

// GetEventAttendees lists RSVPs for an event (public)
// @Summary List event attendees
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {array} models.EventAttendee
// @Router /events/{id}/attendees [get]
func (s *Server) GetEventAttendees(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	attendees, err := s.eventService.ListAttendees(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(attendees)
}

// ConfirmEventPayment marks a pending ticket as paid, matched by the
// payment reference returned at RSVP time.
// @Summary Confirm ticket payment
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body object{reference=string} true "Payment reference"
// @Success 200 {object} models.EventAttendee
// @Failure 400 {object} models.ErrorResponse
// @Router /events/{id}/payment-confirm [post]
func (s *Server) ConfirmEventPayment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reference string `json:"reference"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	attendee, err := s.eventService.ConfirmPayment(c.UserContext(), id, userID, req.Reference)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(attendee)
}

// RunEventSweep reconciles every event's active flag now (admin only).
// The same reconciliation runs on a timer in the background.
// @Summary Run event status sweep
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} repository.SweepResult
// @Router /events/sweep [post]
func (s *Server) RunEventSweep(c *fiber.Ctx) error {
	result, err := s.eventService.SweepStatuses(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}
