package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Resource is an entry in the external link catalog.
type Resource struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255)" json:"title" validate:"required,max=255"`
	Description *string   `gorm:"type:text" json:"description"`
	URL         string    `gorm:"type:varchar(500)" json:"url" validate:"required,url,max=500"`
	Category    *string   `gorm:"type:varchar(100);index" json:"category" validate:"omitempty,max=100"`
	IsActive    bool      `gorm:"not null;index:idx_resources_active_sort,priority:1" json:"is_active"`
	SortOrder   int       `gorm:"default:0;index:idx_resources_active_sort,priority:2" json:"sort_order" validate:"gte=0"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Resource) Validate() error {
	return validator.New().Struct(r)
}
