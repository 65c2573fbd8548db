// Package accounts handles registration, login, bearer tokens and profile
// changes for the signed-in user.
package accounts

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/apperr"
	"github.com/insbu/portal/internal/pkg/audit"
	"github.com/insbu/portal/internal/pkg/clock"
	"github.com/insbu/portal/internal/pkg/storage"
	"github.com/insbu/portal/internal/pkg/validation"
)

var ErrInvalidCredentials = apperr.Validation("The provided credentials are incorrect.", map[string]string{
	"email": "The provided credentials are incorrect.",
})

type RegisterInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileInput struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

type PasswordInput struct {
	CurrentPassword      string `json:"current_password" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

// Session is what a successful login or registration returns.
type Session struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
}

type Service struct {
	users     repository.UserRepository
	tokens    repository.TokenRepository
	documents repository.DocumentRepository
	store     storage.Store
	audit     *audit.Recorder
	clock     clock.Clock
}

// NewService wires the account service. store is used to remove the files of
// deleted users and may be nil.
func NewService(repos *repository.Repositories, store storage.Store, rec *audit.Recorder, clk clock.Clock) *Service {
	return &Service{
		users:     repos.User,
		tokens:    repos.Token,
		documents: repos.Document,
		store:     store,
		audit:     rec,
		clock:     clock.Or(clk),
	}
}

// Register creates a regular user account and signs it in.
func (s *Service) Register(in RegisterInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(in.Email, 0); err != nil {
		return nil, err
	}

	user, err := models.NewUser(strings.TrimSpace(in.Name), in.Email, in.Password, models.RoleUser)
	if err != nil {
		return nil, apperr.Internal("failed to build user", err)
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validation.Field("email", "The email has already been taken.")
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	s.audit.Info(user, "New user registered: %s", user.Email)
	return s.issue(user)
}

// Login checks credentials, refuses suspended accounts and records the login.
func (s *Service) Login(in LoginInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.audit.Warning(nil, "Failed login attempt for %s", in.Email)
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	if !user.CheckPassword(in.Password) {
		s.audit.Warning(user, "Failed login attempt for %s", in.Email)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.audit.Warning(user, "Login refused for suspended account %s", in.Email)
		return nil, apperr.PermissionDenied("Your account has been suspended. Please contact an administrator.")
	}

	user.RecordLogin(s.clock.Now())
	if err := s.users.Update(user); err != nil {
		return nil, apperr.Internal("failed to record login", err)
	}

	s.audit.Info(user, "User logged in: %s", user.Email)
	return s.issue(user)
}

// Refresh swaps the token used for this request for a new one.
func (s *Service) Refresh(user *models.User, currentTokenID uint) (*Session, error) {
	if user == nil {
		return nil, apperr.Unauthenticated("Unauthenticated.")
	}
	if currentTokenID != 0 {
		if err := s.tokens.Delete(currentTokenID); err != nil {
			return nil, apperr.Internal("failed to revoke token", err)
		}
	}
	return s.issue(user)
}

// Logout revokes the token used for this request.
func (s *Service) Logout(tokenID uint) error {
	if err := s.tokens.Delete(tokenID); err != nil {
		return apperr.Internal("failed to revoke token", err)
	}
	return nil
}

// LogoutAll revokes every token the user holds.
func (s *Service) LogoutAll(userID uint) error {
	if err := s.tokens.DeleteByUserID(userID); err != nil {
		return apperr.Internal("failed to revoke tokens", err)
	}
	return nil
}

func (s *Service) UpdateProfile(user *models.User, in ProfileInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(in.Email, user.ID); err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(in.Name)
	user.Email = in.Email
	if err := s.users.Update(user); err != nil {
		return nil, apperr.Internal("failed to update profile", err)
	}
	return user, nil
}

func (s *Service) ChangePassword(user *models.User, in PasswordInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if !user.CheckPassword(in.CurrentPassword) {
		return validation.Field("current_password", "The current password is incorrect.")
	}
	if err := user.SetPassword(in.Password); err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	if err := s.users.Update(user); err != nil {
		return apperr.Internal("failed to update password", err)
	}
	return nil
}

func (s *Service) issue(user *models.User) (*Session, error) {
	token, raw, err := models.IssueAPIToken(user.ID, "auth_token")
	if err != nil {
		return nil, apperr.Internal("failed to generate token", err)
	}
	if err := s.tokens.Create(token); err != nil {
		return nil, apperr.Internal("failed to store token", err)
	}
	return &Session{User: user, Token: raw, TokenType: "Bearer"}, nil
}

func (s *Service) ensureEmailFree(email string, exceptID uint) error {
	taken, err := s.users.EmailTaken(email, exceptID)
	if err != nil {
		return apperr.Internal("failed to check email", err)
	}
	if taken {
		return validation.Field("email", "The email has already been taken.")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
