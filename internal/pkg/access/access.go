// Package access decides what an actor may do with a piece of content.
// The rules are identical for news and documents; only the visibility
// predicate and the ownership accessor differ.
package access

import (
	"time"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/internal/pkg/apperr"
)

type Action string

const (
	ActionView     Action = "view"
	ActionDownload Action = "download"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

// Decision is the outcome of a policy check. Hide means the actor must not
// learn that the resource exists.
type Decision int

const (
	Allow Decision = iota
	Deny
	Hide
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	case Hide:
		return "hide"
	}
	return "unknown"
}

// Policy holds the two resource-specific pieces of the rule set.
type Policy[T any] struct {
	Visible func(resource T, now time.Time) bool
	Owner   func(resource T) uint
}

// Decide applies the shared rules. A nil actor is anonymous. For ActionCreate
// the resource is ignored.
func (p Policy[T]) Decide(actor *models.User, action Action, resource T, now time.Time) Decision {
	switch action {
	case ActionView, ActionDownload:
		if actor.CanManageContent() || p.Visible(resource, now) {
			return Allow
		}
		return Hide
	case ActionCreate:
		if actor.CanManageContent() {
			return Allow
		}
		return Deny
	case ActionUpdate, ActionDelete:
		if !actor.CanManageContent() {
			return Deny
		}
		if actor.IsAdmin() || p.Owner(resource) == actor.ID {
			return Allow
		}
		return Deny
	}
	return Deny
}

var News = Policy[*models.News]{
	Visible: func(n *models.News, now time.Time) bool { return n.IsPublishedAt(now) },
	Owner:   func(n *models.News) uint { return n.AuthorID },
}

var Documents = Policy[*models.Document]{
	Visible: func(d *models.Document, _ time.Time) bool { return d.IsPublic },
	Owner:   func(d *models.Document) uint { return d.UploadedBy },
}

// Err converts a decision into the error the HTTP layer reports. what names
// the resource in the message, e.g. "News article".
func Err(d Decision, what string) error {
	switch d {
	case Allow:
		return nil
	case Hide:
		return apperr.NotFound(what + " not found")
	}
	return apperr.PermissionDenied("You are not allowed to perform this action")
}
