package repository

import "gorm.io/gorm"

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// PageRequest selects one page of a listing. Page is 1-based.
type PageRequest struct {
	Page    int
	PerPage int
}

// Normalize clamps the request to sane bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page is a slice of results plus the paging envelope the API returns.
type Page[T any] struct {
	Data        []T   `json:"data"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	From        *int  `json:"from"`
	To          *int  `json:"to"`
}

// NewPage builds the envelope for items fetched with req out of total rows.
func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	req = req.Normalize()
	if items == nil {
		items = []T{}
	}

	lastPage := int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}

	page := Page[T]{
		Data:        items,
		CurrentPage: req.Page,
		LastPage:    lastPage,
		PerPage:     req.PerPage,
		Total:       total,
	}
	if len(items) > 0 {
		from := req.Offset() + 1
		to := req.Offset() + len(items)
		page.From = &from
		page.To = &to
	}
	return page
}

// paginate counts the query and loads the requested page. Associations are
// preloaded on the page query only.
func paginate[T any](query *gorm.DB, req PageRequest, preloads ...string) (Page[T], error) {
	req = req.Normalize()

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page[T]{}, err
	}

	var items []T
	for _, assoc := range preloads {
		query = query.Preload(assoc)
	}
	if err := query.Offset(req.Offset()).Limit(req.PerPage).Find(&items).Error; err != nil {
		return Page[T]{}, err
	}
	return NewPage(items, req, total), nil
}
