package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("Document not found"))

	assert.True(t, errors.Is(err, NotFound("")))
	assert.True(t, errors.Is(err, NotFound("Document not found")))
	assert.False(t, errors.Is(err, NotFound("News article not found")))
	assert.False(t, errors.Is(err, Conflict("")))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad", nil)))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindInternal))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Storage("could not store file", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "could not store file: disk full", err.Error())
}

func TestLookup(t *testing.T) {
	assert.NoError(t, Lookup(nil, "User"))

	err := Lookup(gorm.ErrRecordNotFound, "User")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "User not found", err.Error())

	err = Lookup(errors.New("connection reset"), "User")
	assert.Equal(t, KindInternal, KindOf(err))
}
