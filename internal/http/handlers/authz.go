package handlers

import (
	applog "sentryhome/internal/log"
	"sentryhome/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RequireUser rejects requests whose session holds no token.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" || !auth.IsAuthenticated(sid) {
			applog.Security(c, "access.denied", map[string]any{"sid": sid})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
		}
		return c.Next()
	}
}
