// Package resources manages the catalog of external links shown on the portal.
package resources

import (
	"strings"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/apperr"
	"github.com/insbu/portal/internal/pkg/validation"
)

const what = "Resource"

var errAdminOnly = apperr.PermissionDenied("Only administrators can manage resources")

type CreateInput struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	URL         string  `json:"url" validate:"required,url,max=500"`
	Category    string  `json:"category" validate:"required,max=100"`
	IsActive    *bool   `json:"is_active"`
	SortOrder   int     `json:"sort_order" validate:"gte=0"`
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	URL         *string `json:"url" validate:"omitempty,url,max=500"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	IsActive    *bool   `json:"is_active"`
	SortOrder   *int    `json:"sort_order" validate:"omitempty,gte=0"`
}

type Service struct {
	repo repository.ResourceRepository
}

func NewService(repos *repository.Repositories) *Service {
	return &Service{repo: repos.Resource}
}

// List returns the catalog. Only admins see inactive entries.
func (s *Service) List(actor *models.User, filter repository.ResourceFilter, page repository.PageRequest) (repository.Page[models.Resource], error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)
	filter.ActiveOnly = !actor.IsAdmin()

	p, err := s.repo.List(filter, page)
	if err != nil {
		return p, apperr.Internal("failed to list resources", err)
	}
	return p, nil
}

func (s *Service) Get(actor *models.User, id uint) (*models.Resource, error) {
	res, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperr.Lookup(err, what)
	}
	if !res.IsActive && !actor.IsAdmin() {
		return nil, apperr.NotFound(what + " not found")
	}
	return res, nil
}

func (s *Service) Create(actor *models.User, in CreateInput) (*models.Resource, error) {
	if !actor.IsAdmin() {
		return nil, errAdminOnly
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	category := strings.TrimSpace(in.Category)
	res := &models.Resource{
		Title:       strings.TrimSpace(in.Title),
		Description: optional(in.Description),
		URL:         strings.TrimSpace(in.URL),
		Category:    &category,
		IsActive:    in.IsActive == nil || *in.IsActive,
		SortOrder:   in.SortOrder,
	}
	if err := s.repo.Create(res); err != nil {
		return nil, apperr.Internal("failed to create resource", err)
	}
	return res, nil
}

func (s *Service) Update(actor *models.User, id uint, in UpdateInput) (*models.Resource, error) {
	if !actor.IsAdmin() {
		return nil, errAdminOnly
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	res, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperr.Lookup(err, what)
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, validation.Field("title", "The title field is required.")
		}
		res.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		res.Description = optional(in.Description)
	}
	if in.URL != nil {
		res.URL = strings.TrimSpace(*in.URL)
	}
	if in.Category != nil {
		if strings.TrimSpace(*in.Category) == "" {
			return nil, validation.Field("category", "The category field is required.")
		}
		res.Category = optional(in.Category)
	}
	if in.IsActive != nil {
		res.IsActive = *in.IsActive
	}
	if in.SortOrder != nil {
		res.SortOrder = *in.SortOrder
	}

	if err := s.repo.Update(res); err != nil {
		return nil, apperr.Internal("failed to update resource", err)
	}
	return res, nil
}

func (s *Service) Delete(actor *models.User, id uint) error {
	if !actor.IsAdmin() {
		return errAdminOnly
	}
	if err := s.repo.Delete(id); err != nil {
		return apperr.Lookup(err, what)
	}
	return nil
}

// Categories lists the distinct categories of the entries the actor can see.
func (s *Service) Categories(actor *models.User) ([]string, error) {
	cats, err := s.repo.Categories(!actor.IsAdmin())
	if err != nil {
		return nil, apperr.Internal("failed to load resource categories", err)
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

func optional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
