package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/insbu/portal/app/models"
)

var newsSortColumns = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"published_at": true,
	"title":        true,
	"status":       true,
}

// newsRepository implements the NewsRepository interface
type newsRepository struct {
	db *gorm.DB
}

// NewNewsRepository creates a new news repository instance
func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

// Create creates a new news article in the database
func (r *newsRepository) Create(news *models.News) error {
	return r.db.Omit("Author").Create(news).Error
}

// GetByID retrieves a news article by its ID
func (r *newsRepository) GetByID(id uint) (*models.News, error) {
	var news models.News
	err := r.db.Preload("Author").First(&news, id).Error
	if err != nil {
		return nil, err
	}
	return &news, nil
}

// Update updates an existing news article in the database
func (r *newsRepository) Update(news *models.News) error {
	return r.db.Omit("Author").Save(news).Error
}

// Delete soft deletes a news article by its ID
func (r *newsRepository) Delete(id uint) error {
	return r.db.Delete(&models.News{}, id).Error
}

// List retrieves a filtered, paginated list of news articles
func (r *newsRepository) List(filter NewsFilter, page PageRequest) (Page[models.News], error) {
	query := visible(r.db.Model(&models.News{}), filter.VisibleAt)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.AuthorID != 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		searchPattern := "%" + s + "%"
		query = query.Where("title LIKE ? OR body LIKE ? OR excerpt LIKE ?", searchPattern, searchPattern, searchPattern)
	}

	return paginate[models.News](query.Order(newsOrder(filter)), page, "Author")
}

// Latest returns the most recently published articles
func (r *newsRepository) Latest(visibleAt *time.Time, limit int) ([]models.News, error) {
	var news []models.News
	err := visible(r.db.Preload("Author"), visibleAt).
		Order("published_at DESC").
		Limit(limit).
		Find(&news).Error
	return news, err
}

// Categories lists the distinct non-empty categories
func (r *newsRepository) Categories(visibleAt *time.Time) ([]string, error) {
	var categories []string
	err := visible(r.db.Model(&models.News{}), visibleAt).
		Where("category IS NOT NULL AND category <> ''").
		Distinct().
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

// CountByStatus returns the number of articles per status
func (r *newsRepository) CountByStatus() (map[models.NewsStatus]int64, error) {
	var rows []struct {
		Status models.NewsStatus
		Count  int64
	}
	err := r.db.Model(&models.News{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.NewsStatus]int64, len(models.NewsStatuses))
	for status := range models.NewsStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func visible(query *gorm.DB, at *time.Time) *gorm.DB {
	if at == nil {
		return query
	}
	return query.Where("status = ? AND published_at IS NOT NULL AND published_at <= ?", models.NewsStatusPublished, *at)
}

func newsOrder(filter NewsFilter) string {
	column := filter.SortBy
	if !newsSortColumns[column] {
		column = "created_at"
		if filter.VisibleAt != nil {
			column = "published_at"
		}
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}
