package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 Bytes"},
		{512, "512 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{2458752, "2.34 MB"},
		{1073741824, "1 GB"},
		{5 * 1024 * 1024 * 1024 * 1024, "5 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.in))
		})
	}
}

func TestDocumentKind(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"chart.png", KIND_IMAGE},
		{"photo.JPEG", KIND_IMAGE},
		{"logo.svg", KIND_IMAGE},
		{"banner.webp", KIND_IMAGE},
		{"report.pdf", KIND_PDF},
		{"minutes.docx", KIND_DOCUMENT},
		{"notes.txt", KIND_DOCUMENT},
		{"letter.odt", KIND_DOCUMENT},
		{"census.csv", KIND_SPREADSHEET},
		{"budget.ods", KIND_SPREADSHEET},
		{"budget.xls", KIND_SPREADSHEET},
		{"archive.zip", KIND_OTHER},
		{"noext", KIND_OTHER},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// the stored MIME type plays no part
			d := &Document{OriginalName: tt.name, MimeType: "application/octet-stream"}
			assert.Equal(t, tt.want, d.Kind())
		})
	}
}

func TestDocumentFileExtension(t *testing.T) {
	d := &Document{OriginalName: "Annual Report 2023.PDF"}
	assert.Equal(t, "pdf", d.FileExtension())

	d.OriginalName = "noext"
	assert.Equal(t, "", d.FileExtension())
}

func TestDocumentFormattedFileSize(t *testing.T) {
	d := &Document{FileSize: 2458752}
	assert.Equal(t, "2.34 MB", d.FormattedFileSize())
}
