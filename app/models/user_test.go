package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role          Role
		admin, editor bool
		manage        bool
	}{
		{RoleAdmin, true, false, true},
		{RoleEditor, false, true, true},
		{RoleUser, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			u := &User{Role: tt.role}
			assert.Equal(t, tt.admin, u.IsAdmin())
			assert.Equal(t, tt.editor, u.IsEditor())
			assert.Equal(t, tt.manage, u.CanManageContent())
		})
	}
}

func TestNilUserHasNoRole(t *testing.T) {
	var u *User
	assert.False(t, u.IsAdmin())
	assert.False(t, u.CanManageContent())
	assert.False(t, u.HasAnyRole(RoleUser))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("editor")
	require.NoError(t, err)
	assert.Equal(t, RoleEditor, r)

	_, err = ParseRole("superuser")
	assert.Error(t, err)
}

func TestNewUserHashesPassword(t *testing.T) {
	u, err := NewUser("Jane", "jane@example.org", "secret123", RoleUser)
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, u.CheckPassword("secret123"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.True(t, u.IsActive)
	assert.Equal(t, STATUS_ACTIVE, u.Status())
}

func TestNewUserRejectsInvalidEmail(t *testing.T) {
	_, err := NewUser("Jane", "not-an-email", "secret123", RoleUser)
	assert.Error(t, err)
}

func TestUserRecordLogin(t *testing.T) {
	u := &User{LoginCount: 2}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	u.RecordLogin(at)

	assert.Equal(t, 3, u.LoginCount)
	require.NotNil(t, u.LastLoginAt)
	assert.Equal(t, at, *u.LastLoginAt)
}

func TestUserStatus(t *testing.T) {
	assert.Equal(t, STATUS_SUSPENDED, (&User{IsActive: false}).Status())
}
