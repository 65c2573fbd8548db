package news

import (
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/apperr"
	"github.com/insbu/portal/internal/pkg/validation"
	"github.com/insbu/portal/internal/pkg/workflow"
)

// SortColumns lists the columns the admin article listing can be ordered by.
var SortColumns = []string{"created_at", "updated_at", "published_at", "title", "status"}

type ArticleQuery struct {
	Search    string
	Status    string
	Category  string
	AuthorID  uint
	SortBy    string
	SortOrder string
}

type RejectInput struct {
	Reason string `json:"reason" validate:"max=500"`
}

// Articles is the admin review listing over every article regardless of status.
func (s *Service) Articles(actor *models.User, q ArticleQuery, page repository.PageRequest) (repository.Page[models.News], error) {
	if !actor.IsAdmin() {
		return repository.Page[models.News]{}, apperr.PermissionDenied("Only administrators can review articles")
	}

	filter := repository.NewsFilter{
		Search:    strings.TrimSpace(q.Search),
		Category:  strings.TrimSpace(q.Category),
		AuthorID:  q.AuthorID,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
	if q.Status != "" {
		status := models.NewsStatus(q.Status)
		if !status.Valid() {
			return repository.Page[models.News]{}, validation.Field("status", "The selected status is invalid.")
		}
		filter.Status = status
	}
	if q.SortBy != "" {
		if !slices.Contains(SortColumns, q.SortBy) {
			return repository.Page[models.News]{}, validation.Field("sort_by", "The selected sort by is invalid.")
		}
		filter.SortBy = q.SortBy
	}
	if q.SortOrder != "" {
		order := strings.ToLower(q.SortOrder)
		if order != "asc" && order != "desc" {
			return repository.Page[models.News]{}, validation.Field("sort_order", "The selected sort order is invalid.")
		}
		filter.SortOrder = order
	}

	p, err := s.repo.List(filter, page)
	if err != nil {
		return p, apperr.Internal("failed to list articles", err)
	}
	return p, nil
}

// Approve publishes a pending article.
func (s *Service) Approve(actor *models.User, id uint) (*models.News, error) {
	return s.review(actor, id, workflow.Approve(), "")
}

// Reject sends a pending article back to draft with an optional reason.
func (s *Service) Reject(actor *models.User, id uint, in RejectInput) (*models.News, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.review(actor, id, workflow.Reject(), strings.TrimSpace(in.Reason))
}

func (s *Service) review(actor *models.User, id uint, ev workflow.Event, reason string) (*models.News, error) {
	if !actor.IsAdmin() {
		return nil, apperr.PermissionDenied("Only administrators can review articles")
	}
	article, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperr.Lookup(err, what)
	}

	if err := workflow.Apply(actor.Role, article, ev, reason, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(article); err != nil {
		return nil, apperr.Internal("failed to update news article", err)
	}

	verb := "approved"
	if ev.Kind == workflow.EventReject {
		verb = "rejected"
	}
	log.Infof("[News] Article %d %s by %s", article.ID, verb, actor.Email)
	s.audit.Info(actor, "Article %s: %s", verb, article.Title)
	return article, nil
}
