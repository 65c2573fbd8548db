package audit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/testutil/memrepo"
)

func TestRecorderWritesEntries(t *testing.T) {
	store := memrepo.New()
	rec := NewRecorder(store.Repositories().Activity)
	actor := &models.User{ID: 5}

	rec.Info(actor, "User %s logged in", "ana@example.org")
	rec.Warning(nil, "Failed login attempt for %s", "bob@example.org")

	logs := store.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, models.LOG_LEVEL_INFO, logs[0].Level)
	assert.Equal(t, "User ana@example.org logged in", logs[0].Message)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, uint(5), *logs[0].UserID)
	assert.Nil(t, logs[1].UserID)

	page, err := rec.List(repository.PageRequest{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, models.LOG_LEVEL_WARNING, page.Data[0].Level)
}

func TestRecorderSwallowsErrors(t *testing.T) {
	store := memrepo.New()
	store.FailWith = errors.New("db down")
	rec := NewRecorder(store.Repositories().Activity)

	assert.NotPanics(t, func() { rec.Error(nil, "boom") })
	assert.Empty(t, store.Logs())
}

func TestNilRecorder(t *testing.T) {
	var rec *Recorder
	assert.NotPanics(t, func() { rec.Info(nil, "ignored") })

	page, err := rec.List(repository.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}
