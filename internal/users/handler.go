package users

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes user directory endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a user directory HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create persists the posted record. Body and store failures both map to 400.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req Candidate
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(user)
}

// List returns every stored record.
func (h *Handler) List(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(list)
}
