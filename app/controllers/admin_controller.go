package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/accounts"
	"github.com/insbu/portal/internal/pkg/audit"
	"github.com/insbu/portal/internal/pkg/news"
	"github.com/insbu/portal/internal/pkg/statistics"
	"github.com/insbu/portal/internal/pkg/validation"
)

const logsPerPage = 20

// AdminController handles the /api/admin endpoints. The router only lets
// administrators through.
type AdminController struct {
	accounts *accounts.Service
	news     *news.Service
	stats    *statistics.Service
	audit    *audit.Recorder
}

// NewAdminController creates a new admin controller with its service dependencies
func NewAdminController(acc *accounts.Service, ns *news.Service, stats *statistics.Service, rec *audit.Recorder) *AdminController {
	return &AdminController{
		accounts: acc,
		news:     ns,
		stats:    stats,
		audit:    rec,
	}
}

// HandleUsers lists users filtered by search, role and status.
func (ac *AdminController) HandleUsers(c *fiber.Ctx) error {
	filter := repository.UserFilter{Search: c.Query("search")}
	if raw := c.Query("role"); raw != "" {
		role, err := models.ParseRole(raw)
		if err != nil {
			return respondError(c, validation.Field("role", "The selected role is invalid."))
		}
		filter.Role = role
	}
	switch c.Query("status") {
	case "":
	case models.STATUS_ACTIVE:
		active := true
		filter.Active = &active
	case models.STATUS_SUSPENDED:
		active := false
		filter.Active = &active
	default:
		return respondError(c, validation.Field("status", "The selected status is invalid."))
	}

	page, err := ac.accounts.ListUsers(filter, pageRequest(c, repository.DefaultPerPage))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (ac *AdminController) HandleUserShow(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	user, err := ac.accounts.GetUser(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": user})
}

func (ac *AdminController) HandleUserCreate(c *fiber.Ctx) error {
	var in accounts.CreateUserInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	user, err := ac.accounts.CreateUser(currentUser(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User created successfully", "data": user})
}

func (ac *AdminController) HandleUserUpdate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in accounts.UpdateUserInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	user, err := ac.accounts.UpdateUser(currentUser(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User updated successfully", "data": user})
}

func (ac *AdminController) HandleUserRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in struct {
		Role string `json:"role" form:"role"`
	}
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	user, err := ac.accounts.ChangeRole(currentUser(c), id, in.Role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User role updated successfully", "data": user})
}

func (ac *AdminController) HandleUserStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in struct {
		IsActive *bool `json:"is_active" form:"is_active"`
	}
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	if in.IsActive == nil {
		return respondError(c, validation.Field("is_active", "The is active field is required."))
	}
	user, err := ac.accounts.SetStatus(currentUser(c), id, *in.IsActive)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User status updated successfully", "data": user})
}

func (ac *AdminController) HandleUserDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := ac.accounts.DeleteUser(c.UserContext(), currentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

func (ac *AdminController) HandleRoles(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": models.Roles})
}

func (ac *AdminController) HandleStatistics(c *fiber.Ctx) error {
	report, err := ac.stats.Admin()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": report})
}

// HandleLogs pages through the activity log, newest first.
func (ac *AdminController) HandleLogs(c *fiber.Ctx) error {
	page, err := ac.audit.List(pageRequest(c, logsPerPage))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (ac *AdminController) HandleUserActivity(c *fiber.Ctx) error {
	activity, err := ac.stats.UserActivity(c.QueryInt("days", statistics.DefaultActivityDays))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": activity})
}

// HandleArticles is the review listing over all articles.
func (ac *AdminController) HandleArticles(c *fiber.Ctx) error {
	q := news.ArticleQuery{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		Category:  c.Query("category"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("author_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return respondError(c, validation.Field("author_id", "The author id must be an integer."))
		}
		q.AuthorID = uint(id)
	}

	page, err := ac.news.Articles(currentUser(c), q, pageRequest(c, repository.DefaultPerPage))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toNewsPage(page))
}

func (ac *AdminController) HandleApprove(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	article, err := ac.news.Approve(currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	ac.stats.InvalidateDashboard()
	return c.JSON(fiber.Map{"message": "Article approved successfully", "data": toNewsResponse(article)})
}

func (ac *AdminController) HandleReject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in news.RejectInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	article, err := ac.news.Reject(currentUser(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Article rejected successfully", "data": toNewsResponse(article)})
}
