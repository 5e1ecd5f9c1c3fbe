package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header carries the request correlation id.
const Header = "X-Ray-ID"

// New returns a middleware that assigns every request a ray id, honoring one
// supplied by the caller. The id lands in Locals("ray_id") for log
// correlation and is echoed back in the response header.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(Header)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("ray_id", rid)
		c.Set(Header, rid)
		return c.Next()
	}
}
