package seed

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/testutil/memrepo"
)

func options() Options {
	return Options{
		Admin: Account{Name: "Administrator", Email: " Admin@INSBU.bi ", Password: "change-me-please", Role: models.RoleAdmin},
		Samples: []Account{
			{Name: "Editor", Email: "editor@insbu.bi", Password: "editor-password", Role: models.RoleEditor},
			{Name: "Reader", Email: "user@insbu.bi", Password: "reader-password", Role: models.RoleUser},
		},
	}
}

func TestRunCreatesAdminAndResources(t *testing.T) {
	repos := memrepo.New().Repositories()

	res, err := Run(repos, options())
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 1, Resources: len(DefaultResources)}, res)

	admin, err := repos.User.GetByEmail("admin@insbu.bi")
	require.NoError(t, err)
	assert.Equal(t, "admin@insbu.bi", admin.Email)
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.IsActive)
	assert.True(t, admin.CheckPassword("change-me-please"))

	page, err := repos.Resource.List(repository.ResourceFilter{}, repository.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Data, 6)
	assert.Equal(t, "INSBU Official Website", page.Data[0].Title)
	assert.Equal(t, "Epidemiological Surveillance Guidelines", page.Data[5].Title)
}

func TestRunIsIdempotent(t *testing.T) {
	repos := memrepo.New().Repositories()
	opts := options()
	opts.WithSamples = true

	first, err := Run(repos, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Users)

	second, err := Run(repos, opts)
	require.NoError(t, err)
	assert.Equal(t, Result{}, second)

	n, err := repos.User.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestRunRequiresAdminCredentials(t *testing.T) {
	repos := memrepo.New().Repositories()
	opts := options()
	opts.Admin.Password = ""

	_, err := Run(repos, opts)
	assert.Error(t, err)
}

func TestRunReportsWriteFailures(t *testing.T) {
	store := memrepo.New()
	store.FailWith = errors.New("disk full")

	_, err := Run(store.Repositories(), options())
	assert.ErrorContains(t, err, "disk full")
}
