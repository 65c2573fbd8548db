package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/insbu/portal/internal/pkg/env"
)

// HandleHealth reports that the API is up.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   env.GetEnv("APP_VERSION", "1.0.0"),
	})
}
