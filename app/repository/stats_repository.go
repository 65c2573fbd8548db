package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/insbu/portal/app/models"
)

// Table names the content tables that monthly activity is counted over.
type Table string

const (
	TableUsers     Table = "users"
	TableNews      Table = "news"
	TableDocuments Table = "documents"
)

const fileTypeCase = `CASE
	WHEN mime_type LIKE '%pdf%' THEN 'PDF'
	WHEN mime_type LIKE '%word%' OR mime_type = 'application/msword' THEN 'Word'
	WHEN mime_type LIKE '%excel%' OR mime_type LIKE '%spreadsheet%' OR mime_type = 'text/csv' THEN 'Excel/CSV'
	WHEN mime_type LIKE 'image/%' THEN 'Image'
	ELSE 'Other'
END`

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new statistics repository instance
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) UserTotals(monthStart, lastMonthStart time.Time) (UserTotals, error) {
	var t UserTotals
	users := func() *gorm.DB { return r.db.Model(&models.User{}) }

	if err := users().Count(&t.Total).Error; err != nil {
		return t, fmt.Errorf("failed to count users: %w", err)
	}
	if err := users().Where("is_active = ?", true).Count(&t.Active).Error; err != nil {
		return t, fmt.Errorf("failed to count active users: %w", err)
	}
	if err := users().Where("created_at >= ?", monthStart).Count(&t.ThisMonth).Error; err != nil {
		return t, err
	}
	if err := users().Where("created_at >= ? AND created_at < ?", lastMonthStart, monthStart).Count(&t.LastMonth).Error; err != nil {
		return t, err
	}
	return t, nil
}

func (r *statsRepository) NewsTotals(monthStart, lastMonthStart time.Time) (NewsTotals, error) {
	var t NewsTotals
	news := func() *gorm.DB { return r.db.Model(&models.News{}) }

	var rows []struct {
		Status models.NewsStatus
		Count  int64
	}
	if err := news().Select("status, COUNT(*) as count").Group("status").Find(&rows).Error; err != nil {
		return t, fmt.Errorf("failed to count news: %w", err)
	}
	for _, row := range rows {
		t.Total += row.Count
		switch row.Status {
		case models.NewsStatusPublished:
			t.Published = row.Count
		case models.NewsStatusDraft:
			t.Draft = row.Count
		case models.NewsStatusPending:
			t.Pending = row.Count
		case models.NewsStatusArchived:
			t.Archived = row.Count
		}
	}

	if err := news().Where("created_at >= ?", monthStart).Count(&t.ThisMonth).Error; err != nil {
		return t, err
	}
	if err := news().Where("created_at >= ? AND created_at < ?", lastMonthStart, monthStart).Count(&t.LastMonth).Error; err != nil {
		return t, err
	}
	return t, nil
}

func (r *statsRepository) DocumentTotals(monthStart, lastMonthStart time.Time) (DocumentTotals, error) {
	var t DocumentTotals
	docs := func() *gorm.DB { return r.db.Model(&models.Document{}) }

	var sums struct {
		Total     int64
		Public    int64
		Downloads int64
		Size      int64
	}
	err := docs().
		Select("COUNT(*) as total, " +
			"COALESCE(SUM(CASE WHEN is_public THEN 1 ELSE 0 END), 0) as public, " +
			"COALESCE(SUM(download_count), 0) as downloads, " +
			"COALESCE(SUM(file_size), 0) as size").
		Scan(&sums).Error
	if err != nil {
		return t, fmt.Errorf("failed to aggregate documents: %w", err)
	}
	t.Total, t.Public, t.TotalDownloads, t.TotalSize = sums.Total, sums.Public, sums.Downloads, sums.Size

	if err := docs().Where("created_at >= ?", monthStart).Count(&t.ThisMonth).Error; err != nil {
		return t, err
	}
	if err := docs().Where("created_at >= ? AND created_at < ?", lastMonthStart, monthStart).Count(&t.LastMonth).Error; err != nil {
		return t, err
	}
	return t, nil
}

func (r *statsRepository) RoleDistribution() ([]models.LabelCount, error) {
	return r.labelCounts(r.db.Model(&models.User{}), "role")
}

func (r *statsRepository) RegistrationsSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// AverageLoginCount averages login_count over users that logged in at least once
func (r *statsRepository) AverageLoginCount() (float64, error) {
	var avg float64
	err := r.db.Model(&models.User{}).
		Where("login_count > 0").
		Select("COALESCE(AVG(login_count), 0)").
		Row().Scan(&avg)
	return avg, err
}

func (r *statsRepository) AverageReadingTime() (float64, error) {
	var avg float64
	err := r.db.Model(&models.News{}).
		Select("COALESCE(AVG(reading_time), 0)").
		Row().Scan(&avg)
	return avg, err
}

func (r *statsRepository) TopAuthors(limit int) ([]models.AuthorCount, error) {
	var authors []models.AuthorCount
	err := r.db.Model(&models.User{}).
		Select("users.id as author_id, users.name as name, COUNT(news.id) as news_count").
		Joins("JOIN news ON news.author_id = users.id AND news.deleted_at IS NULL").
		Group("users.id, users.name").
		Order("news_count DESC").
		Limit(limit).
		Scan(&authors).Error
	return authors, err
}

func (r *statsRepository) NewsCategories() ([]models.LabelCount, error) {
	return r.labelCounts(r.db.Model(&models.News{}).Where("category IS NOT NULL AND category <> ''"), "category")
}

func (r *statsRepository) DocumentCategories() ([]models.LabelCount, error) {
	return r.labelCounts(r.db.Model(&models.Document{}).Where("category IS NOT NULL AND category <> ''"), "category")
}

// FileTypeDistribution buckets documents into PDF, Word, Excel/CSV, Image and Other
func (r *statsRepository) FileTypeDistribution() ([]models.LabelCount, error) {
	return r.labelCounts(r.db.Model(&models.Document{}), fileTypeCase)
}

func (r *statsRepository) MostDownloaded(limit int) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.Order("download_count DESC").Limit(limit).Find(&docs).Error
	return docs, err
}

func (r *statsRepository) CreatedBetween(table Table, start, end time.Time) (int64, error) {
	var query *gorm.DB
	switch table {
	case TableUsers:
		query = r.db.Model(&models.User{})
	case TableNews:
		query = r.db.Model(&models.News{})
	case TableDocuments:
		query = r.db.Model(&models.Document{})
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}

	var count int64
	err := query.Where("created_at >= ? AND created_at < ?", start, end).Count(&count).Error
	return count, err
}

func (r *statsRepository) DownloadsBetween(start, end time.Time) (int64, error) {
	var sum int64
	err := r.db.Model(&models.Document{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Select("COALESCE(SUM(download_count), 0)").
		Row().Scan(&sum)
	return sum, err
}

func (r *statsRepository) labelCounts(query *gorm.DB, expr string) ([]models.LabelCount, error) {
	var rows []models.LabelCount
	err := query.
		Select(expr + " as label, COUNT(*) as count").
		Group("label").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}
