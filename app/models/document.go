package models

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	KIND_IMAGE       = "image"
	KIND_PDF         = "pdf"
	KIND_DOCUMENT    = "document"
	KIND_SPREADSHEET = "spreadsheet"
	KIND_OTHER       = "other"
)

// Document is an uploaded file plus its metadata.
type Document struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"type:varchar(255)" json:"title" validate:"required,max=255"`
	Description   *string   `gorm:"type:text" json:"description"`
	FileName      string    `gorm:"type:varchar(255)" json:"file_name"`
	OriginalName  string    `gorm:"type:varchar(255)" json:"original_name"`
	FilePath      string    `gorm:"type:varchar(500)" json:"-"`
	FileSize      int64     `gorm:"default:0" json:"file_size" validate:"gte=0"`
	MimeType      string    `gorm:"type:varchar(150)" json:"mime_type"`
	Category      *string   `gorm:"type:varchar(100);index" json:"category" validate:"omitempty,max=100"`
	IsPublic      bool      `gorm:"not null;index:idx_documents_public_created,priority:1" json:"is_public"`
	DownloadCount int64     `gorm:"default:0" json:"download_count"`
	UploadedBy    uint      `gorm:"index;not null" json:"uploaded_by"`
	Uploader      *User     `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index:idx_documents_public_created,priority:2" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (d *Document) Validate() error {
	return validator.New().Struct(d)
}

// FileExtension returns the lower-case extension of the original file name, without the dot.
func (d *Document) FileExtension() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(d.OriginalName)), ".")
}

var (
	imageExtensions       = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true, "bmp": true, "svg": true, "webp": true}
	documentExtensions    = map[string]bool{"doc": true, "docx": true, "txt": true, "rtf": true, "odt": true}
	spreadsheetExtensions = map[string]bool{"xls": true, "xlsx": true, "csv": true, "ods": true}
)

func (d *Document) IsImage() bool {
	return imageExtensions[d.FileExtension()]
}

func (d *Document) IsPDF() bool {
	return d.FileExtension() == "pdf"
}

func (d *Document) IsDocument() bool {
	return documentExtensions[d.FileExtension()]
}

func (d *Document) IsSpreadsheet() bool {
	return spreadsheetExtensions[d.FileExtension()]
}

// Kind buckets the document by the extension of its original name.
func (d *Document) Kind() string {
	switch {
	case d.IsImage():
		return KIND_IMAGE
	case d.IsPDF():
		return KIND_PDF
	case d.IsDocument():
		return KIND_DOCUMENT
	case d.IsSpreadsheet():
		return KIND_SPREADSHEET
	}
	return KIND_OTHER
}

// FormattedFileSize renders the size with binary units.
func (d *Document) FormattedFileSize() string {
	return FormatBytes(d.FileSize)
}

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatBytes renders n bytes with binary scaling and at most two decimals,
// trailing zeros trimmed: 2458752 -> "2.34 MB".
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}

	value := float64(n)
	i := 0
	for value >= 1024 && i < len(byteUnits)-1 {
		value /= 1024
		i++
	}
	value = math.Round(value*100) / 100

	return fmt.Sprintf("%s %s", strconv.FormatFloat(value, 'f', -1, 64), byteUnits[i])
}
