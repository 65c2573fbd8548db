package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/insbu/portal/app/models"
)

// UserContext represents the complete user context for a request
type UserContext struct {
	UserID     uint        `json:"user_id"`
	Username   string      `json:"username"`
	Role       models.Role `json:"role"`
	TokenID    uint        `json:"-"`
	IsLoggedIn bool        `json:"is_logged_in"`
	IsAdmin    bool        `json:"is_admin"`
}

// Set stores the authenticated user and its derived context on the request.
func Set(c *fiber.Ctx, user *models.User, tokenID uint) {
	c.Locals(KeyUserContext, UserContext{
		UserID:     user.ID,
		Username:   user.Name,
		Role:       user.Role,
		TokenID:    tokenID,
		IsLoggedIn: true,
		IsAdmin:    user.IsAdmin(),
	})
	c.Locals(KeyUser, user)
	c.Locals(KeyUserID, user.ID)
	c.Locals(KeyIsAdmin, user.IsAdmin())
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return ctx
	}
	return UserContext{IsLoggedIn: false, IsAdmin: false}
}

// GetUser returns the authenticated user, or nil for anonymous requests.
func GetUser(c *fiber.Ctx) *models.User {
	if u, ok := c.Locals(KeyUser).(*models.User); ok {
		return u
	}
	return nil
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetUserID returns the current user's ID, or 0 if not logged in
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}
