package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/clock"
	"github.com/insbu/portal/internal/pkg/usercontext"
)

// TokenAuthMiddleware resolves a bearer token to its user. Requests without a
// token continue anonymously; RequireAuth decides whether that is acceptable.
func TokenAuthMiddleware(tokens repository.TokenRepository, clk clock.Clock) fiber.Handler {
	clk = clock.Or(clk)

	return func(c *fiber.Ctx) error {
		raw := extractBearerToken(c)
		if raw == "" {
			return c.Next()
		}

		token, user, err := tokens.GetByHash(models.HashAPIKey(raw))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthenticated", "message": "Invalid token"})
			}
			log.Errorf("[TokenAuth] Token lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Token verification failed"})
		}

		if !user.IsActive {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Your account has been suspended"})
		}

		// Refresh last-used timestamp best-effort.
		if err := tokens.Touch(token.ID, clk.Now()); err != nil {
			log.Warnf("[TokenAuth] Failed to update token usage timestamp for user %d: %v", user.ID, err)
		}

		usercontext.Set(c, user, token.ID)
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
