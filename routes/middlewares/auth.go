package middlewares

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/zenithex/zenex/config"
	"github.com/zenithex/zenex/controllers/helpers"
	"github.com/zenithex/zenex/models"
)

var (
	AuthzInvalidSession = "authz.invalid_session"
	ServerInternalError = "server.internal_error"
)

// Authenticate resolves the member from the identity header injected by
// the upstream gateway. Requests without a valid member are rejected.
func Authenticate(c *fiber.Ctx) error {
	uid := c.Get("X-Member-UID")
	if len(uid) == 0 {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{AuthzInvalidSession},
		})
	}

	member := &models.Member{}
	result := config.DataBase.Where("uid = ?", uid).First(member)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{AuthzInvalidSession},
		})
	}
	if result.Error != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{ServerInternalError},
		})
	}

	c.Locals("CurrentUser", member)

	return c.Next()
}
