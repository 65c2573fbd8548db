package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/insbu/portal/app/models"
)

// resourceRepository implements the ResourceRepository interface
type resourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new resource repository instance
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(resource *models.Resource) error {
	return r.db.Create(resource).Error
}

func (r *resourceRepository) GetByID(id uint) (*models.Resource, error) {
	var resource models.Resource
	err := r.db.First(&resource, id).Error
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *resourceRepository) GetByURL(url string) (*models.Resource, error) {
	var resource models.Resource
	err := r.db.Where("url = ?", url).First(&resource).Error
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *resourceRepository) Update(resource *models.Resource) error {
	return r.db.Save(resource).Error
}

func (r *resourceRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Resource{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns the catalog ordered by sort order, then title
func (r *resourceRepository) List(filter ResourceFilter, page PageRequest) (Page[models.Resource], error) {
	query := r.db.Model(&models.Resource{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		searchPattern := "%" + s + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", searchPattern, searchPattern)
	}

	return paginate[models.Resource](query.Order("sort_order ASC").Order("title ASC"), page)
}

func (r *resourceRepository) Categories(activeOnly bool) ([]string, error) {
	query := r.db.Model(&models.Resource{}).Where("category IS NOT NULL AND category <> ''")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var categories []string
	err := query.Distinct().Order("category").Pluck("category", &categories).Error
	return categories, err
}
