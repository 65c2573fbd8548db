package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/apperr"
	"github.com/insbu/portal/internal/pkg/usercontext"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:         fiber.StatusUnprocessableEntity,
	apperr.KindUnauthenticated:    fiber.StatusUnauthorized,
	apperr.KindPermissionDenied:   fiber.StatusForbidden,
	apperr.KindNotFound:           fiber.StatusNotFound,
	apperr.KindInvariantViolation: fiber.StatusBadRequest,
	apperr.KindConflict:           fiber.StatusConflict,
	apperr.KindStorage:            fiber.StatusInternalServerError,
	apperr.KindInternal:           fiber.StatusInternalServerError,
}

// respondError renders a service error as the JSON error body.
func respondError(c *fiber.Ctx, err error) error {
	var e *apperr.Error
	if !errors.As(err, &e) {
		e = apperr.Internal("Internal server error", err)
	}

	status, ok := statusByKind[e.Kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	if status >= fiber.StatusInternalServerError {
		log.Errorf("[API] %s %s failed: %v", c.Method(), c.Path(), err)
	}

	body := fiber.Map{"error": string(e.Kind), "message": e.Message}
	if len(e.Fields) > 0 {
		body["errors"] = e.Fields
	}
	return c.Status(status).JSON(body)
}

// currentUser is the authenticated user, nil for anonymous requests.
func currentUser(c *fiber.Ctx) *models.User {
	return usercontext.GetUser(c)
}

// parseID reads a positive numeric route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound("Resource not found")
	}
	return uint(id), nil
}

// parseBody decodes a JSON or form body into v.
func parseBody(c *fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(v); err != nil {
		return apperr.Validation("The request body could not be decoded.", map[string]string{"body": err.Error()})
	}
	return nil
}

// pageRequest reads page and per_page, accepting limit as an alias for per_page.
func pageRequest(c *fiber.Ctx, defaultPerPage int) repository.PageRequest {
	perPage := c.QueryInt("per_page", 0)
	if perPage <= 0 {
		perPage = c.QueryInt("limit", defaultPerPage)
	}
	return repository.PageRequest{Page: c.QueryInt("page", 1), PerPage: perPage}
}

// queryBool parses an optional boolean query or form value.
func queryBool(raw string) *bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
