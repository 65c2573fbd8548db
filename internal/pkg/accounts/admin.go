package accounts

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/apperr"
	"github.com/insbu/portal/internal/pkg/storage"
	"github.com/insbu/portal/internal/pkg/validation"
)

var (
	ErrLastAdmin        = apperr.InvariantViolation("Cannot delete the last active admin user.")
	ErrLastAdminDemoted = apperr.InvariantViolation("Cannot demote or suspend the last active admin user.")
)

type CreateUserInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin editor user"`
	IsActive *bool  `json:"is_active"`
}

// UpdateUserInput carries a partial update; nil fields are left unchanged.
// Status accepts "active" or "suspended" as an alternative to IsActive.
type UpdateUserInput struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin editor user"`
	Status   *string `json:"status" validate:"omitempty,oneof=active suspended"`
	IsActive *bool   `json:"is_active"`
}

func (s *Service) ListUsers(filter repository.UserFilter, page repository.PageRequest) (repository.Page[models.User], error) {
	p, err := s.users.List(filter, page)
	if err != nil {
		return p, apperr.Internal("failed to list users", err)
	}
	return p, nil
}

func (s *Service) GetUser(id uint) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, apperr.Lookup(err, "User")
	}
	return user, nil
}

func (s *Service) CreateUser(actor *models.User, in CreateUserInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(in.Email, 0); err != nil {
		return nil, err
	}

	user, err := models.NewUser(strings.TrimSpace(in.Name), in.Email, in.Password, models.Role(in.Role))
	if err != nil {
		return nil, apperr.Internal("failed to build user", err)
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if err := s.users.Create(user); err != nil {
		return nil, apperr.Internal("failed to create user", err)
	}

	s.audit.Info(actor, "User created by admin: %s (%s)", user.Email, user.Role)
	return user, nil
}

func (s *Service) UpdateUser(actor *models.User, id uint, in UpdateUserInput) (*models.User, error) {
	if in.Email != nil {
		e := normalizeEmail(*in.Email)
		in.Email = &e
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	nextRole := user.Role
	if in.Role != nil {
		nextRole = models.Role(*in.Role)
	}
	nextActive := user.IsActive
	if in.Status != nil {
		nextActive = *in.Status == models.STATUS_ACTIVE
	}
	if in.IsActive != nil {
		nextActive = *in.IsActive
	}
	if err := s.guardLastAdmin(user, nextRole == models.RoleAdmin && nextActive, ErrLastAdminDemoted); err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != user.Email {
		if err := s.ensureEmailFree(*in.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *in.Email
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Password != nil {
		if err := user.SetPassword(*in.Password); err != nil {
			return nil, apperr.Internal("failed to hash password", err)
		}
	}
	user.Role = nextRole
	user.IsActive = nextActive

	if err := s.users.Update(user); err != nil {
		return nil, apperr.Internal("failed to update user", err)
	}
	if !user.IsActive {
		s.revokeAll(user.ID)
	}
	return user, nil
}

func (s *Service) ChangeRole(actor *models.User, id uint, role string) (*models.User, error) {
	if _, err := models.ParseRole(role); err != nil {
		return nil, validation.Field("role", "The selected role is invalid.")
	}
	user, err := s.UpdateUser(actor, id, UpdateUserInput{Role: &role})
	if err != nil {
		return nil, err
	}
	s.audit.Info(actor, "Role of %s changed to %s", user.Email, user.Role)
	return user, nil
}

func (s *Service) SetStatus(actor *models.User, id uint, active bool) (*models.User, error) {
	user, err := s.UpdateUser(actor, id, UpdateUserInput{IsActive: &active})
	if err != nil {
		return nil, err
	}
	s.audit.Info(actor, "User %s is now %s", user.Email, user.Status())
	return user, nil
}

// DeleteUser removes the account with its content. The last active admin
// cannot be deleted. Stored files are removed after the rows are gone and
// failures there are only logged.
func (s *Service) DeleteUser(ctx context.Context, actor *models.User, id uint) error {
	user, err := s.GetUser(id)
	if err != nil {
		return err
	}
	if err := s.guardLastAdmin(user, false, ErrLastAdmin); err != nil {
		return err
	}

	paths, err := s.documents.PathsByUploader(user.ID)
	if err != nil {
		return apperr.Internal("failed to collect user documents", err)
	}
	if err := s.users.Delete(user.ID); err != nil {
		return apperr.Lookup(err, "User")
	}

	if s.store != nil && len(paths) > 0 {
		storage.RemoveAll(ctx, s.store, paths)
	}
	log.Infof("[Accounts] Deleted user %d (%s) with %d documents", user.ID, user.Email, len(paths))
	s.audit.Info(actor, "User deleted: %s", user.Email)
	return nil
}

// guardLastAdmin fails when user is currently an active admin, will no longer
// be one, and no other active admin exists.
func (s *Service) guardLastAdmin(user *models.User, staysActiveAdmin bool, violation error) error {
	if !user.IsAdmin() || !user.IsActive || staysActiveAdmin {
		return nil
	}
	count, err := s.users.CountActiveAdmins()
	if err != nil {
		return apperr.Internal("failed to count administrators", err)
	}
	if count <= 1 {
		return violation
	}
	return nil
}

func (s *Service) revokeAll(userID uint) {
	if err := s.tokens.DeleteByUserID(userID); err != nil {
		log.Warnf("[Accounts] Failed to revoke tokens of suspended user %d: %v", userID, err)
	}
}
