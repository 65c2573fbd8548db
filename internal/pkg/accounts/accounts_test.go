package accounts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/apperr"
	"github.com/insbu/portal/internal/pkg/audit"
	"github.com/insbu/portal/internal/pkg/clock"
	"github.com/insbu/portal/internal/pkg/storage"
	"github.com/insbu/portal/internal/pkg/testutil/memrepo"
)

var fixedNow = time.Date(2024, 4, 15, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store *memrepo.Store
	repos *repository.Repositories
	files *storage.LocalStore
	svc   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memrepo.New()
	repos := store.Repositories()
	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return &fixture{
		store: store,
		repos: repos,
		files: files,
		svc:   NewService(repos, files, audit.NewRecorder(repos.Activity), clock.Fixed(fixedNow)),
	}
}

func (f *fixture) user(t *testing.T, email string, role models.Role, active bool) *models.User {
	t.Helper()
	u, err := models.NewUser("Test "+string(role), email, "password123", role)
	require.NoError(t, err)
	u.IsActive = active
	require.NoError(t, f.repos.User.Create(u))
	return u
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	sess, err := f.svc.Register(RegisterInput{
		Name:                 "Aline",
		Email:                " Aline@Example.org ",
		Password:             "password123",
		PasswordConfirmation: "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, "aline@example.org", sess.User.Email)
	assert.Equal(t, models.RoleUser, sess.User.Role)
	assert.True(t, sess.User.IsActive)
	assert.True(t, strings.HasPrefix(sess.Token, "ptl_"))
	assert.Equal(t, "Bearer", sess.TokenType)
	assert.Equal(t, 1, f.store.Tokens(sess.User.ID))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.user(t, "taken@example.org", models.RoleUser, true)

	_, err := f.svc.Register(RegisterInput{
		Name: "Other", Email: "taken@example.org", Password: "password123", PasswordConfirmation: "password123",
	})

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "email")
}

func TestRegisterRequiresMatchingConfirmation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(RegisterInput{
		Name: "X", Email: "x@example.org", Password: "password123", PasswordConfirmation: "password124",
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestLoginRecordsLogin(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "editor@example.org", models.RoleEditor, true)

	sess, err := f.svc.Login(LoginInput{Email: "editor@example.org", Password: "password123"})
	require.NoError(t, err)

	stored, err := f.repos.User.GetByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.LoginCount)
	require.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, fixedNow, *stored.LastLoginAt)
	assert.NotEmpty(t, sess.Token)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	f.user(t, "suspended@example.org", models.RoleUser, false)
	f.user(t, "active@example.org", models.RoleUser, true)

	_, err := f.svc.Login(LoginInput{Email: "active@example.org", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(LoginInput{Email: "nobody@example.org", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(LoginInput{Email: "suspended@example.org", Password: "password123"})
	assert.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))

	logs := f.store.Logs()
	require.Len(t, logs, 3)
	for _, l := range logs {
		assert.Equal(t, models.LOG_LEVEL_WARNING, l.Level)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.org", models.RoleUser, true)

	first, err := f.svc.Login(LoginInput{Email: "u@example.org", Password: "password123"})
	require.NoError(t, err)
	token, _, err := f.repos.Token.GetByHash(models.HashAPIKey(first.Token))
	require.NoError(t, err)

	second, err := f.svc.Refresh(u, token.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
	assert.Equal(t, 1, f.store.Tokens(u.ID))

	_, err = f.svc.Login(LoginInput{Email: "u@example.org", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, 2, f.store.Tokens(u.ID))

	require.NoError(t, f.svc.LogoutAll(u.ID))
	assert.Equal(t, 0, f.store.Tokens(u.ID))
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "u@example.org", models.RoleUser, true)

	err := f.svc.ChangePassword(u, PasswordInput{CurrentPassword: "nope", Password: "newpassword", PasswordConfirmation: "newpassword"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, f.svc.ChangePassword(u, PasswordInput{CurrentPassword: "password123", Password: "newpassword", PasswordConfirmation: "newpassword"}))
	stored, err := f.repos.User.GetByID(u.ID)
	require.NoError(t, err)
	assert.True(t, stored.CheckPassword("newpassword"))
}

func TestUpdateProfileEmailUnique(t *testing.T) {
	f := newFixture(t)
	f.user(t, "first@example.org", models.RoleUser, true)
	u := f.user(t, "second@example.org", models.RoleUser, true)

	_, err := f.svc.UpdateProfile(u, ProfileInput{Name: "Second", Email: "first@example.org"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	updated, err := f.svc.UpdateProfile(u, ProfileInput{Name: "Renamed", Email: "second@example.org"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestDeleteOnlyActiveAdminFails(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin@example.org", models.RoleAdmin, true)
	f.user(t, "suspended-admin@example.org", models.RoleAdmin, false)

	err := f.svc.DeleteUser(context.Background(), admin, admin.ID)
	assert.ErrorIs(t, err, ErrLastAdmin)

	_, err = f.repos.User.GetByID(admin.ID)
	assert.NoError(t, err)
}

func TestDemoteOrSuspendLastAdminFails(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin@example.org", models.RoleAdmin, true)

	_, err := f.svc.ChangeRole(admin, admin.ID, "editor")
	assert.ErrorIs(t, err, ErrLastAdminDemoted)

	_, err = f.svc.SetStatus(admin, admin.ID, false)
	assert.ErrorIs(t, err, ErrLastAdminDemoted)

	second := f.user(t, "admin2@example.org", models.RoleAdmin, true)
	demoted, err := f.svc.ChangeRole(admin, second.ID, "editor")
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, demoted.Role)
}

func TestDeleteUserRemovesContentAndFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin@example.org", models.RoleAdmin, true)
	editor := f.user(t, "editor@example.org", models.RoleEditor, true)

	key := "documents/owned.pdf"
	require.NoError(t, f.files.Put(ctx, key, strings.NewReader("%PDF"), 4, "application/pdf"))
	require.NoError(t, f.repos.Document.Create(&models.Document{Title: "Owned", FilePath: key, UploadedBy: editor.ID}))
	require.NoError(t, f.repos.News.Create(&models.News{Title: "Mine", Body: "b", AuthorID: editor.ID}))

	require.NoError(t, f.svc.DeleteUser(ctx, admin, editor.ID))

	_, err := f.repos.User.GetByID(editor.ID)
	assert.Error(t, err)
	exists, err := f.files.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
	page, err := f.repos.News.List(repository.NewsFilter{}, repository.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}

func TestDeleteMissingUser(t *testing.T) {
	f := newFixture(t)
	err := f.svc.DeleteUser(context.Background(), nil, 999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSuspendRevokesTokens(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin@example.org", models.RoleAdmin, true)
	f.user(t, "u@example.org", models.RoleUser, true)

	sess, err := f.svc.Login(LoginInput{Email: "u@example.org", Password: "password123"})
	require.NoError(t, err)

	_, err = f.svc.SetStatus(admin, sess.User.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 0, f.store.Tokens(sess.User.ID))
}

func TestUpdateUserStatusField(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin@example.org", models.RoleAdmin, true)
	u := f.user(t, "u@example.org", models.RoleUser, true)

	status := "suspended"
	updated, err := f.svc.UpdateUser(admin, u.ID, UpdateUserInput{Status: &status})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	bad := "banned"
	_, err = f.svc.UpdateUser(admin, u.ID, UpdateUserInput{Status: &bad})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
