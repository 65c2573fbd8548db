package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/insbu/portal/internal/pkg/statistics"
)

// StatsController serves the /api/stats reports to signed-in users.
type StatsController struct {
	stats *statistics.Service
}

func NewStatsController(svc *statistics.Service) *StatsController {
	return &StatsController{stats: svc}
}

func (sc *StatsController) HandleDashboard(c *fiber.Ctx) error {
	d, err := sc.stats.Dashboard()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": d})
}

func (sc *StatsController) HandleUsers(c *fiber.Ctx) error {
	r, err := sc.stats.Users()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": r})
}

func (sc *StatsController) HandleNews(c *fiber.Ctx) error {
	r, err := sc.stats.News()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": r})
}

func (sc *StatsController) HandleDocuments(c *fiber.Ctx) error {
	r, err := sc.stats.Documents()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": r})
}

func (sc *StatsController) HandleMonthlyActivity(c *fiber.Ctx) error {
	r, err := sc.stats.MonthlyActivity(c.QueryInt("months", statistics.DefaultMonths))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": r})
}

func (sc *StatsController) HandleRoleDistribution(c *fiber.Ctx) error {
	r, err := sc.stats.RoleDistribution()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": r})
}
