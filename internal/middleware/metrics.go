package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/userdir/userdir/internal/metrics"
)

// Metrics records request counts and latency labelled by the matched route.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := responseStatus(c, err)
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		metrics.RecordHTTPRequest(c.Method(), route, status, time.Since(start))
		return err
	}
}
