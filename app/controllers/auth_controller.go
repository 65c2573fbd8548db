package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/insbu/portal/internal/pkg/accounts"
	"github.com/insbu/portal/internal/pkg/usercontext"
)

// AuthController serves registration, login and the signed-in user's account.
type AuthController struct {
	accounts *accounts.Service
}

func NewAuthController(svc *accounts.Service) *AuthController {
	return &AuthController{accounts: svc}
}

func (ac *AuthController) HandleRegister(c *fiber.Ctx) error {
	var in accounts.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	session, err := ac.accounts.Register(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "User registered successfully",
		"user":       session.User,
		"token":      session.Token,
		"token_type": session.TokenType,
	})
}

func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	var in accounts.LoginInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	session, err := ac.accounts.Login(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":    "Login successful",
		"user":       session.User,
		"token":      session.Token,
		"token_type": session.TokenType,
	})
}

func (ac *AuthController) HandleUser(c *fiber.Ctx) error {
	user := currentUser(c)
	return c.JSON(fiber.Map{
		"user":          user,
		"status":        user.Status(),
		"last_login_at": formatTimePtr(user.LastLoginAt),
	})
}

func (ac *AuthController) HandleUpdateProfile(c *fiber.Ctx) error {
	var in accounts.ProfileInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	user, err := ac.accounts.UpdateProfile(currentUser(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile updated successfully", "user": user})
}

func (ac *AuthController) HandleChangePassword(c *fiber.Ctx) error {
	var in accounts.PasswordInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	if err := ac.accounts.ChangePassword(currentUser(c), in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

func (ac *AuthController) HandleRefresh(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	session, err := ac.accounts.Refresh(currentUser(c), userCtx.TokenID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":    "Token refreshed successfully",
		"token":      session.Token,
		"token_type": session.TokenType,
	})
}

func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	if err := ac.accounts.Logout(usercontext.GetUserContext(c).TokenID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (ac *AuthController) HandleLogoutAll(c *fiber.Ctx) error {
	if err := ac.accounts.LogoutAll(usercontext.GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out from all devices successfully"})
}
