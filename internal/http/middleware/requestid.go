package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader propagates request IDs between services.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is where the ID is stored in Fiber's context locals.
	RequestIDLocalKey = "request_id"
)

// RequestID ensures every request carries an ID: the incoming X-Request-ID is
// honored when present, otherwise a fresh UUID is minted. The value is stored
// in context locals for the logger and error responses, and echoed back on
// the response header.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
