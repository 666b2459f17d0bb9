package server

import (
	"fmt"

	"townsquare/internal/mail"
	"townsquare/internal/models"
	"townsquare/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const maxContactMessageLen = 5000

// SubmitContactForm handles POST /api/contact. The message is relayed
// to the configured recipient; mail delivery is asynchronous and its
// failure never fails the request.
// @Summary Submit contact form
// @Tags contact
// @Accept json
// @Produce json
// @Param request body object{name=string,email=string,subject=string,message=string} true "Contact message"
// @Success 202 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /contact [post]
func (s *Server) SubmitContactForm(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Name == "" || req.Message == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name and message are required"))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if len(req.Message) > maxContactMessageLen {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(fmt.Sprintf("Message too long (max %d characters)", maxContactMessageLen)))
	}

	subject := req.Subject
	if subject == "" {
		subject = "Contact form message"
	}

	s.mailer.SendAsync(c.UserContext(), mail.Message{
		To:      []string{s.config.ContactRecipient},
		Subject: fmt.Sprintf("[contact] %s", subject),
		Body: fmt.Sprintf("From: %s <%s>\r\n\r\n%s",
			req.Name, req.Email, req.Message),
	})

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Thanks, we received your message.",
	})
}
