package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/news"
)

// newsResponse adds the display excerpt, which is derived from the body
// when the article has none of its own.
type newsResponse struct {
	models.News
	Excerpt string `json:"excerpt"`
}

func toNewsResponse(n *models.News) newsResponse {
	return newsResponse{News: *n, Excerpt: n.DisplayExcerpt()}
}

func toNewsResponses(items []models.News) []newsResponse {
	out := make([]newsResponse, 0, len(items))
	for i := range items {
		out = append(out, toNewsResponse(&items[i]))
	}
	return out
}

func toNewsPage(p repository.Page[models.News]) repository.Page[newsResponse] {
	return repository.Page[newsResponse]{
		Data:        toNewsResponses(p.Data),
		CurrentPage: p.CurrentPage,
		LastPage:    p.LastPage,
		PerPage:     p.PerPage,
		Total:       p.Total,
		From:        p.From,
		To:          p.To,
	}
}

type NewsController struct {
	news *news.Service
}

func NewNewsController(svc *news.Service) *NewsController {
	return &NewsController{news: svc}
}

// HandleList serves GET /api/news.
func (nc *NewsController) HandleList(c *fiber.Ctx) error {
	q := news.ListQuery{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	page, err := nc.news.List(currentUser(c), q, pageRequest(c, repository.DefaultPerPage))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toNewsPage(page))
}

func (nc *NewsController) HandleShow(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	article, err := nc.news.Get(currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": toNewsResponse(article)})
}

func (nc *NewsController) HandleCreate(c *fiber.Ctx) error {
	var in news.CreateInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	article, err := nc.news.Create(currentUser(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "News article created successfully",
		"data":    toNewsResponse(article),
	})
}

func (nc *NewsController) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in news.UpdateInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	article, err := nc.news.Update(currentUser(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "News article updated successfully",
		"data":    toNewsResponse(article),
	})
}

func (nc *NewsController) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := nc.news.Delete(currentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "News article deleted successfully"})
}

func (nc *NewsController) HandleLatest(c *fiber.Ctx) error {
	items, err := nc.news.Latest(currentUser(c), c.QueryInt("limit", news.LatestLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": toNewsResponses(items)})
}

func (nc *NewsController) HandleCategories(c *fiber.Ctx) error {
	cats, err := nc.news.Categories(currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": cats})
}

func (nc *NewsController) HandleStatistics(c *fiber.Ctx) error {
	stats, err := nc.news.Statistics(currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": stats})
}
