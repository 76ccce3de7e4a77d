package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequireAuth rejects requests that did not resolve to a principal.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, ok := c.Locals("username").(string)
		if !ok || username == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}
		return c.Next()
	}
}

// RequireRole verifies the principal carries one of the required role claims.
// The claim is trusted as issued; a role change takes effect once the access
// token expires.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, ok := c.Locals("username").(string)
		if !ok || username == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}

		role, _ := c.Locals("role").(string)
		for _, required := range roles {
			if role == required {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "insufficient permissions",
		})
	}
}
