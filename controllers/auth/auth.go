package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zenithex/zenex/models"
)

// GetCurrentUser returns the member resolved by the authentication
// middleware, or nil when the request is unauthenticated.
func GetCurrentUser(c *fiber.Ctx) *models.Member {
	member, ok := c.Locals("CurrentUser").(*models.Member)
	if !ok {
		return nil
	}

	return member
}
