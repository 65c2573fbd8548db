// Package documents handles uploaded files: storing them under generated
// names, enforcing visibility, counting downloads and cleaning up on delete.
package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/access"
	"github.com/insbu/portal/internal/pkg/apperr"
	"github.com/insbu/portal/internal/pkg/audit"
	"github.com/insbu/portal/internal/pkg/clock"
	"github.com/insbu/portal/internal/pkg/storage"
	"github.com/insbu/portal/internal/pkg/upload"
	"github.com/insbu/portal/internal/pkg/validation"
)

const (
	what         = "Document"
	RecentLimit  = 5
	PopularLimit = 10
	maxListCap   = 50
)

// File is one uploaded file as received from the client.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FromMultipart adapts a multipart file header.
func FromMultipart(fh *multipart.FileHeader) File {
	return File{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

type UploadInput struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	IsPublic    *bool   `json:"is_public"`
}

// UpdateInput carries a partial metadata update; nil fields are left unchanged.
type UpdateInput struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	IsPublic    *bool   `json:"is_public"`
}

// UploadResult is the outcome for one file of a batch.
type UploadResult struct {
	OriginalName string           `json:"original_name"`
	Document     *models.Document `json:"document,omitempty"`
	Error        string           `json:"error,omitempty"`
}

type Statistics struct {
	Total          int64 `json:"total"`
	Public         int64 `json:"public"`
	Private        int64 `json:"private"`
	TotalSize      int64 `json:"total_size"`
	TotalDownloads int64 `json:"total_downloads"`
	ThisMonth      int64 `json:"this_month"`
}

// Download is an open stored file ready to be streamed.
type Download struct {
	Document *models.Document
	Content  io.ReadCloser
}

type Service struct {
	repo  repository.DocumentRepository
	stats repository.StatsRepository
	store storage.Store
	audit *audit.Recorder
	clock clock.Clock
}

func NewService(repos *repository.Repositories, store storage.Store, rec *audit.Recorder, clk clock.Clock) *Service {
	return &Service{
		repo:  repos.Document,
		stats: repos.Stats,
		store: store,
		audit: rec,
		clock: clock.Or(clk),
	}
}

// Upload stores every file and creates one metadata row per stored file.
// Files are handled independently: a rejected file does not stop the batch,
// its error is reported in its result instead.
func (s *Service) Upload(ctx context.Context, actor *models.User, in UploadInput, files []File) ([]UploadResult, error) {
	if err := access.Err(access.Documents.Decide(actor, access.ActionCreate, nil, s.clock.Now()), what); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, validation.Field("files", "The files field is required.")
	}

	results := make([]UploadResult, 0, len(files))
	stored := 0
	for _, f := range files {
		doc, err := s.storeFile(ctx, actor, in, f)
		res := UploadResult{OriginalName: f.Name, Document: doc}
		if err != nil {
			res.Error = err.Error()
			log.Warnf("[Documents] Upload of %q by user %d failed: %v", f.Name, actor.ID, err)
		} else {
			stored++
		}
		results = append(results, res)
	}

	if stored > 0 {
		s.audit.Info(actor, "%d document(s) uploaded: %s", stored, in.Title)
	}
	return results, nil
}

func (s *Service) storeFile(ctx context.Context, actor *models.User, in UploadInput, f File) (*models.Document, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("could not read upload: %w", err)
	}
	defer rc.Close()

	head := make([]byte, upload.SniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not read upload: %w", err)
	}
	head = head[:n]

	mimeType, err := upload.ValidateDocumentBySniff(f.Name, f.Size, head)
	if err != nil {
		return nil, err
	}

	key := storage.NewDocumentKey(f.Name)
	body := io.MultiReader(bytes.NewReader(head), rc)
	if err := s.store.Put(ctx, key, body, f.Size, mimeType); err != nil {
		return nil, apperr.Storage("could not store file", err)
	}

	doc := &models.Document{
		Title:        strings.TrimSpace(in.Title),
		Description:  optional(in.Description),
		FileName:     path.Base(key),
		OriginalName: path.Base(f.Name),
		FilePath:     key,
		FileSize:     f.Size,
		MimeType:     mimeType,
		Category:     optional(in.Category),
		IsPublic:     in.IsPublic == nil || *in.IsPublic,
		UploadedBy:   actor.ID,
	}
	if err := s.repo.Create(doc); err != nil {
		storage.RemoveAll(ctx, s.store, []string{key})
		return nil, apperr.Internal("could not save document", err)
	}
	doc.Uploader = actor
	return doc, nil
}

// Get loads one document. Private documents are reported as missing to
// readers who cannot manage content.
func (s *Service) Get(actor *models.User, id uint) (*models.Document, error) {
	return s.load(actor, id, access.ActionView)
}

func (s *Service) load(actor *models.User, id uint, action access.Action) (*models.Document, error) {
	doc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperr.Lookup(err, what)
	}
	if err := access.Err(access.Documents.Decide(actor, action, doc, s.clock.Now()), what); err != nil {
		return nil, err
	}
	return doc, nil
}

// Download opens the stored file and counts the download. A missing file is
// reported as not found and is not counted.
func (s *Service) Download(ctx context.Context, actor *models.User, id uint) (*Download, error) {
	doc, err := s.load(actor, id, access.ActionDownload)
	if err != nil {
		return nil, err
	}

	content, err := s.store.Open(ctx, doc.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			log.Warnf("[Documents] Stored file %s of document %d is missing", doc.FilePath, doc.ID)
			return nil, apperr.NotFound("File not found on server.")
		}
		return nil, apperr.Storage("could not open file", err)
	}

	if err := s.repo.IncrementDownloadCount(doc.ID); err != nil {
		content.Close()
		return nil, apperr.Internal("failed to count download", err)
	}
	doc.DownloadCount++
	return &Download{Document: doc, Content: content}, nil
}

func (s *Service) Update(actor *models.User, id uint, in UpdateInput) (*models.Document, error) {
	doc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperr.Lookup(err, what)
	}
	if err := access.Err(access.Documents.Decide(actor, access.ActionUpdate, doc, s.clock.Now()), what); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, validation.Field("title", "The title field is required.")
		}
		doc.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		doc.Description = optional(in.Description)
	}
	if in.Category != nil {
		doc.Category = optional(in.Category)
	}
	if in.IsPublic != nil {
		doc.IsPublic = *in.IsPublic
	}

	if err := s.repo.Update(doc); err != nil {
		return nil, apperr.Internal("failed to update document", err)
	}
	return doc, nil
}

// Delete removes the metadata row, then the stored file. The file removal
// is best-effort and only logged on failure.
func (s *Service) Delete(ctx context.Context, actor *models.User, id uint) error {
	doc, err := s.repo.GetByID(id)
	if err != nil {
		return apperr.Lookup(err, what)
	}
	if err := access.Err(access.Documents.Decide(actor, access.ActionDelete, doc, s.clock.Now()), what); err != nil {
		return err
	}

	if err := s.repo.Delete(doc.ID); err != nil {
		return apperr.Lookup(err, what)
	}
	if err := s.store.Delete(ctx, doc.FilePath); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			log.Warnf("[Documents] Stored file %s of document %d was already gone", doc.FilePath, doc.ID)
		} else {
			log.Errorf("[Documents] Failed to delete stored file %s of document %d: %v", doc.FilePath, doc.ID, err)
		}
	}

	s.audit.Info(actor, "Document deleted: %s", doc.OriginalName)
	return nil
}

func (s *Service) List(actor *models.User, filter repository.DocumentFilter, page repository.PageRequest) (repository.Page[models.Document], error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)
	filter.PublicOnly = !actor.CanManageContent()

	p, err := s.repo.List(filter, page)
	if err != nil {
		return p, apperr.Internal("failed to list documents", err)
	}
	return p, nil
}

// Recent returns the newest documents the actor may see. limit <= 0 means RecentLimit.
func (s *Service) Recent(actor *models.User, limit int) ([]models.Document, error) {
	docs, err := s.repo.Recent(!actor.CanManageContent(), clamp(limit, RecentLimit))
	if err != nil {
		return nil, apperr.Internal("failed to load recent documents", err)
	}
	return docs, nil
}

// Popular returns the most downloaded documents. limit <= 0 means PopularLimit.
func (s *Service) Popular(actor *models.User, limit int) ([]models.Document, error) {
	docs, err := s.repo.Popular(!actor.CanManageContent(), clamp(limit, PopularLimit))
	if err != nil {
		return nil, apperr.Internal("failed to load popular documents", err)
	}
	return docs, nil
}

func (s *Service) Categories(actor *models.User) ([]string, error) {
	cats, err := s.repo.Categories(!actor.CanManageContent())
	if err != nil {
		return nil, apperr.Internal("failed to load document categories", err)
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

func (s *Service) Statistics(actor *models.User) (*Statistics, error) {
	if !actor.CanManageContent() {
		return nil, apperr.PermissionDenied("You do not have permission to view statistics")
	}
	monthStart := clock.MonthStart(s.clock.Now())
	totals, err := s.stats.DocumentTotals(monthStart, monthStart.AddDate(0, -1, 0))
	if err != nil {
		return nil, apperr.Internal("failed to load document statistics", err)
	}
	return &Statistics{
		Total:          totals.Total,
		Public:         totals.Public,
		Private:        totals.Total - totals.Public,
		TotalSize:      totals.TotalSize,
		TotalDownloads: totals.TotalDownloads,
		ThisMonth:      totals.ThisMonth,
	}, nil
}

func clamp(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return min(limit, maxListCap)
}

func optional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
