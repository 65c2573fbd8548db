// Package audit writes the admin-visible activity log.
package audit

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
)

// Recorder appends activity log entries. A nil Recorder discards everything.
// Write failures are logged and never returned.
type Recorder struct {
	repo repository.ActivityRepository
}

func NewRecorder(repo repository.ActivityRepository) *Recorder {
	return &Recorder{repo: repo}
}

func (r *Recorder) Info(actor *models.User, format string, args ...any) {
	r.record(models.LOG_LEVEL_INFO, actor, format, args...)
}

func (r *Recorder) Warning(actor *models.User, format string, args ...any) {
	r.record(models.LOG_LEVEL_WARNING, actor, format, args...)
}

func (r *Recorder) Error(actor *models.User, format string, args ...any) {
	r.record(models.LOG_LEVEL_ERROR, actor, format, args...)
}

// List returns the newest entries first.
func (r *Recorder) List(page repository.PageRequest) (repository.Page[models.ActivityLog], error) {
	if r == nil || r.repo == nil {
		return repository.NewPage[models.ActivityLog](nil, page, 0), nil
	}
	return r.repo.List(page)
}

func (r *Recorder) record(level string, actor *models.User, format string, args ...any) {
	if r == nil || r.repo == nil {
		return
	}

	entry := &models.ActivityLog{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	}
	if actor != nil && actor.ID != 0 {
		id := actor.ID
		entry.UserID = &id
	}
	if len(entry.Message) > 500 {
		entry.Message = entry.Message[:500]
	}

	if err := r.repo.Create(entry); err != nil {
		log.Warnf("[Audit] Failed to record %q: %v", entry.Message, err)
	}
}
