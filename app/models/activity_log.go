package models

import "time"

const (
	LOG_LEVEL_INFO    = "info"
	LOG_LEVEL_WARNING = "warning"
	LOG_LEVEL_ERROR   = "error"
)

// ActivityLog is one line of the admin-visible audit trail.
type ActivityLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Level     string    `gorm:"type:varchar(20);default:'info';index" json:"level"`
	Message   string    `gorm:"type:varchar(500)" json:"message"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}
