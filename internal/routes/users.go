package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/userdir/userdir/internal/users"
)

// RegisterUserRoutes wires the user directory endpoints.
func RegisterUserRoutes(r fiber.Router, h *users.Handler) {
	r.Post("/users", h.Create)
	r.Get("/users", h.List)
}
