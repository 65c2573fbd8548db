// Package news implements the article operations: listing with visibility
// rules, authoring through the editorial workflow and admin review.
package news

import (
	"strings"
	"time"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/access"
	"github.com/insbu/portal/internal/pkg/apperr"
	"github.com/insbu/portal/internal/pkg/audit"
	"github.com/insbu/portal/internal/pkg/clock"
	"github.com/insbu/portal/internal/pkg/validation"
	"github.com/insbu/portal/internal/pkg/workflow"
)

const (
	what         = "News article"
	LatestLimit  = 5
	maxLatestCap = 50
)

type CreateInput struct {
	Title    string  `json:"title" validate:"required,max=255"`
	Body     string  `json:"body" validate:"required"`
	Excerpt  *string `json:"excerpt" validate:"omitempty,max=500"`
	Status   string  `json:"status" validate:"omitempty,oneof=draft pending published archived"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
	Category *string `json:"category" validate:"omitempty,max=100"`
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Title    *string `json:"title" validate:"omitempty,max=255"`
	Body     *string `json:"body"`
	Excerpt  *string `json:"excerpt" validate:"omitempty,max=500"`
	Status   *string `json:"status" validate:"omitempty,oneof=draft pending published archived"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
	Category *string `json:"category" validate:"omitempty,max=100"`
}

type ListQuery struct {
	Status   string
	Category string
	Search   string
}

// Statistics are the per-status counters shown to content managers.
type Statistics struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Draft     int64 `json:"draft"`
	Pending   int64 `json:"pending"`
	Archived  int64 `json:"archived"`
	ThisMonth int64 `json:"this_month"`
}

type Service struct {
	repo  repository.NewsRepository
	stats repository.StatsRepository
	audit *audit.Recorder
	clock clock.Clock
}

func NewService(repos *repository.Repositories, rec *audit.Recorder, clk clock.Clock) *Service {
	return &Service{
		repo:  repos.News,
		stats: repos.Stats,
		audit: rec,
		clock: clock.Or(clk),
	}
}

// List returns a page of articles. Content managers may filter by status;
// everyone else only sees articles that are published now.
func (s *Service) List(actor *models.User, q ListQuery, page repository.PageRequest) (repository.Page[models.News], error) {
	filter := repository.NewsFilter{
		Category: strings.TrimSpace(q.Category),
		Search:   strings.TrimSpace(q.Search),
	}
	if actor.CanManageContent() {
		if q.Status != "" {
			status := models.NewsStatus(q.Status)
			if !status.Valid() {
				return repository.Page[models.News]{}, validation.Field("status", "The selected status is invalid.")
			}
			filter.Status = status
		}
	} else {
		now := s.clock.Now()
		filter.VisibleAt = &now
	}

	p, err := s.repo.List(filter, page)
	if err != nil {
		return p, apperr.Internal("failed to list news", err)
	}
	return p, nil
}

// Get loads one article. Unpublished articles are reported as missing to
// readers who cannot manage content.
func (s *Service) Get(actor *models.User, id uint) (*models.News, error) {
	article, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperr.Lookup(err, what)
	}
	if err := access.Err(access.News.Decide(actor, access.ActionView, article, s.clock.Now()), what); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *Service) Create(actor *models.User, in CreateInput) (*models.News, error) {
	now := s.clock.Now()
	if err := access.Err(access.News.Decide(actor, access.ActionCreate, nil, now), what); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	target := models.NewsStatusDraft
	if in.Status != "" {
		target = models.NewsStatus(in.Status)
	}

	article := &models.News{
		Title:    strings.TrimSpace(in.Title),
		Excerpt:  optional(in.Excerpt),
		ImageURL: optional(in.ImageURL),
		Category: optional(in.Category),
		Status:   models.NewsStatusDraft,
		AuthorID: actor.ID,
	}
	article.SetBody(in.Body)
	if err := workflow.Apply(actor.Role, article, workflow.Write(target), "", now); err != nil {
		return nil, err
	}

	if err := s.repo.Create(article); err != nil {
		return nil, apperr.Internal("failed to create news article", err)
	}
	article.Author = actor
	return article, nil
}

func (s *Service) Update(actor *models.User, id uint, in UpdateInput) (*models.News, error) {
	article, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperr.Lookup(err, what)
	}
	now := s.clock.Now()
	if err := access.Err(access.News.Decide(actor, access.ActionUpdate, article, now), what); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, validation.Field("title", "The title field is required.")
		}
		article.Title = strings.TrimSpace(*in.Title)
	}
	if in.Body != nil {
		if strings.TrimSpace(*in.Body) == "" {
			return nil, validation.Field("body", "The body field is required.")
		}
		article.SetBody(*in.Body)
	}
	if in.Excerpt != nil {
		article.Excerpt = optional(in.Excerpt)
	}
	if in.ImageURL != nil {
		article.ImageURL = optional(in.ImageURL)
	}
	if in.Category != nil {
		article.Category = optional(in.Category)
	}
	if in.Status != nil {
		if err := workflow.Apply(actor.Role, article, workflow.Write(models.NewsStatus(*in.Status)), "", now); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(article); err != nil {
		return nil, apperr.Internal("failed to update news article", err)
	}
	return article, nil
}

// Delete soft-deletes the article.
func (s *Service) Delete(actor *models.User, id uint) error {
	article, err := s.repo.GetByID(id)
	if err != nil {
		return apperr.Lookup(err, what)
	}
	if err := access.Err(access.News.Decide(actor, access.ActionDelete, article, s.clock.Now()), what); err != nil {
		return err
	}
	if err := s.repo.Delete(article.ID); err != nil {
		return apperr.Internal("failed to delete news article", err)
	}
	return nil
}

// Latest returns the newest articles the actor may see. limit <= 0 means LatestLimit.
func (s *Service) Latest(actor *models.User, limit int) ([]models.News, error) {
	if limit <= 0 {
		limit = LatestLimit
	}
	limit = min(limit, maxLatestCap)

	items, err := s.repo.Latest(s.visibleAt(actor), limit)
	if err != nil {
		return nil, apperr.Internal("failed to load latest news", err)
	}
	return items, nil
}

func (s *Service) Categories(actor *models.User) ([]string, error) {
	cats, err := s.repo.Categories(s.visibleAt(actor))
	if err != nil {
		return nil, apperr.Internal("failed to load news categories", err)
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

func (s *Service) Statistics(actor *models.User) (*Statistics, error) {
	if !actor.CanManageContent() {
		return nil, apperr.PermissionDenied("You do not have permission to view statistics")
	}
	monthStart := clock.MonthStart(s.clock.Now())
	totals, err := s.stats.NewsTotals(monthStart, monthStart.AddDate(0, -1, 0))
	if err != nil {
		return nil, apperr.Internal("failed to load news statistics", err)
	}
	return &Statistics{
		Total:     totals.Total,
		Published: totals.Published,
		Draft:     totals.Draft,
		Pending:   totals.Pending,
		Archived:  totals.Archived,
		ThisMonth: totals.ThisMonth,
	}, nil
}

func (s *Service) visibleAt(actor *models.User) *time.Time {
	if actor.CanManageContent() {
		return nil
	}
	now := s.clock.Now()
	return &now
}

// optional trims v and turns an empty value into nil.
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
