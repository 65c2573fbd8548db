package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/insbu/portal/app/models"
	icuser "github.com/insbu/portal/internal/pkg/usercontext"
)

// RequireAuth rejects anonymous requests with a JSON 401.
func RequireAuth(c *fiber.Ctx) error {
	if !icuser.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthenticated",
			"message": "Unauthenticated.",
		})
	}
	return c.Next()
}

// RequireRole allows the request through when the user holds one of roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !icuser.IsLoggedIn(c) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthenticated",
				"message": "Unauthenticated.",
			})
		}
		if !icuser.GetUser(c).HasAnyRole(roles...) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "forbidden",
				"message": "You do not have permission to access this resource.",
			})
		}
		return c.Next()
	}
}

// RequireAdmin is RequireRole(admin).
func RequireAdmin(c *fiber.Ctx) error {
	return RequireRole(models.RoleAdmin)(c)
}

// RequireContentManager is RequireRole(admin, editor).
func RequireContentManager(c *fiber.Ctx) error {
	return RequireRole(models.RoleAdmin, models.RoleEditor)(c)
}
