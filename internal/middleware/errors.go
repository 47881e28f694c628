package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// JSONErrorHandler renders every handler error as {"message": ...}. Errors that
// are not *fiber.Error become 500s.
func JSONErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}
