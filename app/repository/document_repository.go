package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/insbu/portal/app/models"
)

// documentRepository implements the DocumentRepository interface
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository instance
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(doc *models.Document) error {
	return r.db.Omit("Uploader").Create(doc).Error
}

func (r *documentRepository) GetByID(id uint) (*models.Document, error) {
	var doc models.Document
	err := r.db.Preload("Uploader").First(&doc, id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) Update(doc *models.Document) error {
	return r.db.Omit("Uploader").Save(doc).Error
}

// Delete removes the metadata row. The stored file is handled by the caller.
func (r *documentRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Document{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *documentRepository) List(filter DocumentFilter, page PageRequest) (Page[models.Document], error) {
	query := publicOnly(r.db.Model(&models.Document{}), filter.PublicOnly)

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		searchPattern := "%" + s + "%"
		query = query.Where("title LIKE ? OR description LIKE ? OR original_name LIKE ?", searchPattern, searchPattern, searchPattern)
	}

	return paginate[models.Document](query.Order("created_at DESC"), page, "Uploader")
}

// Recent returns the newest documents
func (r *documentRepository) Recent(public bool, limit int) ([]models.Document, error) {
	var docs []models.Document
	err := publicOnly(r.db.Preload("Uploader"), public).
		Order("created_at DESC").
		Limit(limit).
		Find(&docs).Error
	return docs, err
}

// Popular returns the most downloaded documents
func (r *documentRepository) Popular(public bool, limit int) ([]models.Document, error) {
	var docs []models.Document
	err := publicOnly(r.db.Preload("Uploader"), public).
		Order("download_count DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&docs).Error
	return docs, err
}

func (r *documentRepository) Categories(public bool) ([]string, error) {
	var categories []string
	err := publicOnly(r.db.Model(&models.Document{}), public).
		Where("category IS NOT NULL AND category <> ''").
		Distinct().
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

// IncrementDownloadCount bumps the counter in a single UPDATE so concurrent downloads are not lost
func (r *documentRepository) IncrementDownloadCount(id uint) error {
	return r.db.Model(&models.Document{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1)).Error
}

// PathsByUploader lists the storage paths of every document a user uploaded
func (r *documentRepository) PathsByUploader(userID uint) ([]string, error) {
	var paths []string
	err := r.db.Model(&models.Document{}).
		Where("uploaded_by = ?", userID).
		Pluck("file_path", &paths).Error
	return paths, err
}

func publicOnly(query *gorm.DB, public bool) *gorm.DB {
	if !public {
		return query
	}
	return query.Where("is_public = ?", true)
}
