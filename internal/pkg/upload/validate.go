package upload

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/insbu/portal/internal/pkg/apperr"
)

// MaxFileSize is the per-file upload limit (10 MiB).
const MaxFileSize int64 = 10 * 1024 * 1024

// SniffLen is how many leading bytes callers should pass to ValidateDocumentBySniff.
const SniffLen = 3072

// Rejections are validation errors on the files field, rendered to the
// client as they are.
var (
	ErrTooLarge        = fileError(fmt.Sprintf("The file may not be greater than %d kilobytes.", MaxFileSize/1024))
	ErrEmpty           = fileError("The file is empty.")
	ErrExtension       = fileError("The file must be a file of type: pdf, doc, docx, xls, xlsx, csv, jpg, jpeg, png, gif.")
	ErrContentMismatch = fileError("The file content does not match its extension.")
)

func fileError(message string) *apperr.Error {
	return apperr.Validation(message, map[string]string{"files": message})
}

type fileType struct {
	mime     string   // stored MIME type
	accepted []string // what sniffing may legitimately report for it
}

var allowed = map[string]fileType{
	".pdf":  {"application/pdf", []string{"application/pdf"}},
	".doc":  {"application/msword", []string{"application/msword", "application/x-ole-storage"}},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"}},
	".xls":  {"application/vnd.ms-excel", []string{"application/vnd.ms-excel", "application/x-ole-storage"}},
	".xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", []string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/zip"}},
	".csv":  {"text/csv", []string{"text/csv", "text/plain"}},
	".jpg":  {"image/jpeg", []string{"image/jpeg"}},
	".jpeg": {"image/jpeg", []string{"image/jpeg"}},
	".png":  {"image/png", []string{"image/png"}},
	".gif":  {"image/gif", []string{"image/gif"}},
}

// ValidateDocumentBySniff checks the size, the extension of filename and the
// leading bytes (head) against the whitelist. It returns the MIME type to store.
func ValidateDocumentBySniff(filename string, size int64, head []byte) (string, error) {
	if size > MaxFileSize {
		return "", ErrTooLarge
	}
	if size == 0 || len(head) == 0 {
		return "", ErrEmpty
	}

	ext := strings.ToLower(filepath.Ext(filename))
	ft, ok := allowed[ext]
	if !ok {
		return "", ErrExtension
	}

	detected := mimetype.Detect(head)
	for _, m := range ft.accepted {
		if detected.Is(m) {
			return ft.mime, nil
		}
	}
	return "", ErrContentMismatch
}
