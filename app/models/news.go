package models

import (
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/insbu/portal/internal/pkg/utils"
)

// NewsStatus is the publication state of an article.
type NewsStatus string

const (
	NewsStatusDraft     NewsStatus = "draft"
	NewsStatusPending   NewsStatus = "pending"
	NewsStatusPublished NewsStatus = "published"
	NewsStatusArchived  NewsStatus = "archived"
)

const (
	wordsPerMinute = 200
	excerptLength  = 200
)

// NewsStatuses maps every status to its display label.
var NewsStatuses = map[NewsStatus]string{
	NewsStatusDraft:     "Draft",
	NewsStatusPending:   "Pending Review",
	NewsStatusPublished: "Published",
	NewsStatusArchived:  "Archived",
}

// Valid reports whether s is one of the four known statuses.
func (s NewsStatus) Valid() bool {
	_, ok := NewsStatuses[s]
	return ok
}

// News represents a news article in the system
type News struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"type:varchar(255)" json:"title" validate:"required,max=255"`
	Body            string         `gorm:"type:longtext" json:"body" validate:"required"`
	Excerpt         *string        `gorm:"type:text" json:"-" validate:"omitempty,max=500"`
	Status          NewsStatus     `gorm:"type:varchar(20);default:'draft';index:idx_news_status_published,priority:1" json:"status" validate:"oneof=draft pending published archived"`
	RejectionReason *string        `gorm:"type:varchar(500)" json:"rejection_reason"`
	ImageURL        *string        `gorm:"type:varchar(255)" json:"image_url" validate:"omitempty,url"`
	Category        *string        `gorm:"type:varchar(100);index" json:"category" validate:"omitempty,max=100"`
	ReadingTime     int            `gorm:"default:1" json:"reading_time"`
	AuthorID        uint           `gorm:"index;not null" json:"author_id"`
	Author          *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	PublishedAt     *time.Time     `gorm:"type:timestamp;default:null;index:idx_news_status_published,priority:2" json:"published_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the News model
func (News) TableName() string {
	return "news"
}

// IsPublishedAt reports whether the article is publicly readable at the given instant.
func (n *News) IsPublishedAt(now time.Time) bool {
	return n.Status == NewsStatusPublished && n.PublishedAt != nil && !n.PublishedAt.After(now)
}

// DisplayExcerpt returns the explicit excerpt, or one derived from the body.
func (n *News) DisplayExcerpt() string {
	if n.Excerpt != nil && *n.Excerpt != "" {
		return *n.Excerpt
	}
	return DeriveExcerpt(n.Body)
}

// SetBody replaces the body and recomputes the reading time.
func (n *News) SetBody(body string) {
	n.Body = body
	n.ReadingTime = ReadingTimeFor(body)
}

// ReadingTimeFor estimates minutes to read body at 200 words per minute, minimum 1.
func ReadingTimeFor(body string) int {
	words := utils.CountWords(utils.StripMarkup(body))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// DeriveExcerpt takes the first 200 characters of the plain-text body.
func DeriveExcerpt(body string) string {
	return utils.Truncate(utils.StripMarkup(body), excerptLength) + "..."
}
