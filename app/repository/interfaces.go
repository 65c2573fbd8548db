package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/insbu/portal/app/models"
)

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Search string
	Role   models.Role
	Active *bool
}

// NewsFilter narrows news listings. VisibleAt restricts the result to articles
// published at or before that instant.
type NewsFilter struct {
	Status    models.NewsStatus
	Category  string
	Search    string
	AuthorID  uint
	VisibleAt *time.Time
	SortBy    string
	SortOrder string
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	Category   string
	Search     string
	PublicOnly bool
}

// ResourceFilter narrows the resource catalog.
type ResourceFilter struct {
	Category   string
	Search     string
	ActiveOnly bool
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	EmailTaken(email string, exceptID uint) (bool, error)
	Update(user *models.User) error
	// Delete removes the user together with their news, documents and tokens.
	Delete(id uint) error
	List(filter UserFilter, page PageRequest) (Page[models.User], error)
	Count() (int64, error)
	CountActiveAdmins() (int64, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
	GetDailyLogins(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// NewsRepository defines the interface for news-related operations
type NewsRepository interface {
	Create(news *models.News) error
	GetByID(id uint) (*models.News, error)
	Update(news *models.News) error
	Delete(id uint) error
	List(filter NewsFilter, page PageRequest) (Page[models.News], error)
	Latest(visibleAt *time.Time, limit int) ([]models.News, error)
	Categories(visibleAt *time.Time) ([]string, error)
	CountByStatus() (map[models.NewsStatus]int64, error)
}

// DocumentRepository defines the interface for document metadata
type DocumentRepository interface {
	Create(doc *models.Document) error
	GetByID(id uint) (*models.Document, error)
	Update(doc *models.Document) error
	Delete(id uint) error
	List(filter DocumentFilter, page PageRequest) (Page[models.Document], error)
	Recent(publicOnly bool, limit int) ([]models.Document, error)
	Popular(publicOnly bool, limit int) ([]models.Document, error)
	Categories(publicOnly bool) ([]string, error)
	IncrementDownloadCount(id uint) error
	PathsByUploader(userID uint) ([]string, error)
}

// ResourceRepository defines the interface for the external resource catalog
type ResourceRepository interface {
	Create(resource *models.Resource) error
	GetByID(id uint) (*models.Resource, error)
	GetByURL(url string) (*models.Resource, error)
	Update(resource *models.Resource) error
	Delete(id uint) error
	List(filter ResourceFilter, page PageRequest) (Page[models.Resource], error)
	Categories(activeOnly bool) ([]string, error)
}

// TokenRepository stores hashed bearer tokens.
type TokenRepository interface {
	Create(token *models.APIToken) error
	GetByHash(hash string) (*models.APIToken, *models.User, error)
	Touch(id uint, at time.Time) error
	Delete(id uint) error
	DeleteByUserID(userID uint) error
}

// ActivityRepository persists the audit trail.
type ActivityRepository interface {
	Create(entry *models.ActivityLog) error
	List(page PageRequest) (Page[models.ActivityLog], error)
}

// StatsRepository runs the aggregate queries behind the statistics endpoints.
type StatsRepository interface {
	UserTotals(monthStart, lastMonthStart time.Time) (UserTotals, error)
	NewsTotals(monthStart, lastMonthStart time.Time) (NewsTotals, error)
	DocumentTotals(monthStart, lastMonthStart time.Time) (DocumentTotals, error)
	RoleDistribution() ([]models.LabelCount, error)
	RegistrationsSince(since time.Time) (int64, error)
	AverageLoginCount() (float64, error)
	AverageReadingTime() (float64, error)
	TopAuthors(limit int) ([]models.AuthorCount, error)
	NewsCategories() ([]models.LabelCount, error)
	DocumentCategories() ([]models.LabelCount, error)
	FileTypeDistribution() ([]models.LabelCount, error)
	MostDownloaded(limit int) ([]models.Document, error)
	CreatedBetween(table Table, start, end time.Time) (int64, error)
	// DownloadsBetween sums download_count over documents created in [start, end).
	DownloadsBetween(start, end time.Time) (int64, error)
}

// UserTotals aggregates user counts. The month fields count rows created in
// the current and the previous calendar month.
type UserTotals struct {
	Total     int64
	Active    int64
	ThisMonth int64
	LastMonth int64
}

type NewsTotals struct {
	Total     int64
	Published int64
	Draft     int64
	Pending   int64
	Archived  int64
	ThisMonth int64
	LastMonth int64
}

type DocumentTotals struct {
	Total          int64
	Public         int64
	TotalDownloads int64
	TotalSize      int64
	ThisMonth      int64
	LastMonth      int64
}

// Repositories struct holds all repository instances
type Repositories struct {
	User     UserRepository
	News     NewsRepository
	Document DocumentRepository
	Resource ResourceRepository
	Token    TokenRepository
	Activity ActivityRepository
	Stats    StatsRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		News:     NewNewsRepository(db),
		Document: NewDocumentRepository(db),
		Resource: NewResourceRepository(db),
		Token:    NewTokenRepository(db),
		Activity: NewActivityRepository(db),
		Stats:    NewStatsRepository(db),
	}
}
