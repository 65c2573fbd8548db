package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insbu/portal/internal/pkg/apperr"
)

type signup struct {
	Name                 string `json:"name" validate:"required,max=10"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

func TestStructValid(t *testing.T) {
	err := Struct(signup{Name: "Ana", Email: "ana@example.org", Password: "12345678", PasswordConfirmation: "12345678"})
	assert.NoError(t, err)
}

func TestStructFieldMessages(t *testing.T) {
	err := Struct(signup{Name: "A very long name", Email: "nope", Password: "short", PasswordConfirmation: "other"})
	require.Error(t, err)

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, "The name may not be greater than 10 characters.", appErr.Fields["name"])
	assert.Equal(t, "The email must be a valid email address.", appErr.Fields["email"])
	assert.Equal(t, "The password must be at least 8 characters.", appErr.Fields["password"])
	assert.Contains(t, appErr.Fields, "password_confirmation")
}

func TestField(t *testing.T) {
	err := Field("email", "taken")

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, map[string]string{"email": "taken"}, appErr.Fields)
}
