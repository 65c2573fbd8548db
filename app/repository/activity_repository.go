package repository

import (
	"gorm.io/gorm"

	"github.com/insbu/portal/app/models"
)

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity log repository instance
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(entry *models.ActivityLog) error {
	return r.db.Omit("User").Create(entry).Error
}

// List returns the newest entries first
func (r *activityRepository) List(page PageRequest) (Page[models.ActivityLog], error) {
	query := r.db.Model(&models.ActivityLog{}).Order("created_at DESC").Order("id DESC")
	return paginate[models.ActivityLog](query, page, "User")
}
