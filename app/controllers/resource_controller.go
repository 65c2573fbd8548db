package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/resources"
)

type ResourceController struct {
	resources *resources.Service
}

func NewResourceController(svc *resources.Service) *ResourceController {
	return &ResourceController{resources: svc}
}

func (rc *ResourceController) HandleList(c *fiber.Ctx) error {
	filter := repository.ResourceFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	page, err := rc.resources.List(currentUser(c), filter, pageRequest(c, repository.DefaultPerPage))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (rc *ResourceController) HandleShow(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	res, err := rc.resources.Get(currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": res})
}

func (rc *ResourceController) HandleCreate(c *fiber.Ctx) error {
	var in resources.CreateInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	res, err := rc.resources.Create(currentUser(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Resource created successfully", "data": res})
}

func (rc *ResourceController) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in resources.UpdateInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	res, err := rc.resources.Update(currentUser(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Resource updated successfully", "data": res})
}

func (rc *ResourceController) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := rc.resources.Delete(currentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Resource deleted successfully"})
}

func (rc *ResourceController) HandleCategories(c *fiber.Ctx) error {
	cats, err := rc.resources.Categories(currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": cats})
}
