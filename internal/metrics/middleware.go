package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Middleware records request counts and durations per matched route.
func Middleware(provider Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		route := c.Route().Path
		provider.IncRequestsTotal(route, c.Response().StatusCode())
		provider.ObserveRequestDuration(route, time.Since(start))
		return err
	}
}
