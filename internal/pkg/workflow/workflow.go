// Package workflow implements the editorial state machine for news articles.
package workflow

import (
	"time"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/internal/pkg/apperr"
)

const MaxRejectionReasonLength = 500

var ErrNotPending = apperr.InvariantViolation("Only pending articles can be approved or rejected")

type EventKind int

const (
	EventWrite EventKind = iota
	EventApprove
	EventReject
)

// Event is a request to move an article. Target is only used by writes.
type Event struct {
	Kind   EventKind
	Target models.NewsStatus
}

func Write(target models.NewsStatus) Event { return Event{Kind: EventWrite, Target: target} }
func Approve() Event                       { return Event{Kind: EventApprove} }
func Reject() Event                        { return Event{Kind: EventReject} }

// Transition returns the status an article ends up in when actor applies ev
// to an article currently in from. Editors asking for published get pending.
func Transition(actor models.Role, from models.NewsStatus, ev Event) (models.NewsStatus, error) {
	switch ev.Kind {
	case EventWrite:
		if actor != models.RoleAdmin && actor != models.RoleEditor {
			return from, apperr.PermissionDenied("You are not allowed to write articles")
		}
		if !ev.Target.Valid() {
			return from, apperr.Validation("The given data was invalid.", map[string]string{
				"status": "The selected status is invalid.",
			})
		}
		if ev.Target == models.NewsStatusPublished && actor != models.RoleAdmin {
			return models.NewsStatusPending, nil
		}
		return ev.Target, nil

	case EventApprove, EventReject:
		if actor != models.RoleAdmin {
			return from, apperr.PermissionDenied("Only administrators can review articles")
		}
		if from != models.NewsStatusPending {
			return from, ErrNotPending
		}
		if ev.Kind == EventApprove {
			return models.NewsStatusPublished, nil
		}
		return models.NewsStatusDraft, nil
	}

	return from, apperr.Internal("unknown workflow event", nil)
}

// Apply runs Transition and writes the result onto the article, stamping
// published_at and maintaining the rejection reason.
func Apply(actor models.Role, article *models.News, ev Event, reason string, now time.Time) error {
	next, err := Transition(actor, article.Status, ev)
	if err != nil {
		return err
	}

	switch ev.Kind {
	case EventReject:
		if len([]rune(reason)) > MaxRejectionReasonLength {
			return apperr.Validation("The given data was invalid.", map[string]string{
				"reason": "The reason may not be greater than 500 characters.",
			})
		}
		if reason == "" {
			article.RejectionReason = nil
		} else {
			article.RejectionReason = &reason
		}
	case EventApprove:
		article.RejectionReason = nil
	}

	article.Status = next
	Stamp(article, now)
	return nil
}

// Stamp sets published_at the first time an article is published. It is never
// cleared or moved afterwards.
func Stamp(article *models.News, now time.Time) {
	if article.Status == models.NewsStatusPublished && article.PublishedAt == nil {
		t := now
		article.PublishedAt = &t
	}
}
