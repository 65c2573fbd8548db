package statistics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/internal/pkg/cache"
	"github.com/insbu/portal/internal/pkg/clock"
	"github.com/insbu/portal/internal/pkg/testutil/memrepo"
)

var now = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

// fakeCache swaps the package cache hooks for an in-memory map.
type fakeCache struct {
	entries map[string]string
	sets    int
}

func useFakeCache(t *testing.T) *fakeCache {
	t.Helper()
	fc := &fakeCache{entries: map[string]string{}}
	origGet, origSet, origDelete := cacheGet, cacheSet, cacheDelete
	cacheGet = func(key string) (string, error) {
		v, ok := fc.entries[key]
		if !ok {
			return "", cache.ErrUnavailable
		}
		return v, nil
	}
	cacheSet = func(key string, value interface{}, _ time.Duration) error {
		fc.sets++
		fc.entries[key] = value.(string)
		return nil
	}
	cacheDelete = func(key string) error {
		delete(fc.entries, key)
		return nil
	}
	t.Cleanup(func() {
		cacheGet, cacheSet, cacheDelete = origGet, origSet, origDelete
	})
	return fc
}

func seeded(t *testing.T) (*Service, *memrepo.Store) {
	t.Helper()
	store := memrepo.New()
	repos := store.Repositories()

	lastMonth := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)
	january := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	login := now.Add(-24 * time.Hour)

	users := []*models.User{
		{Name: "Admin", Email: "admin@insbu.bi", Role: models.RoleAdmin, IsActive: true, LoginCount: 4, LastLoginAt: &login, CreatedAt: january},
		{Name: "Editor", Email: "editor@insbu.bi", Role: models.RoleEditor, IsActive: true, LoginCount: 1, CreatedAt: lastMonth},
		{Name: "Reader", Email: "reader@insbu.bi", Role: models.RoleUser, IsActive: true, CreatedAt: now.Add(-48 * time.Hour)},
		{Name: "Gone", Email: "gone@insbu.bi", Role: models.RoleUser, IsActive: false, CreatedAt: now.Add(-72 * time.Hour)},
	}
	for _, u := range users {
		require.NoError(t, repos.User.Create(u))
	}

	news := []*models.News{
		{Title: "Census", Body: "b", Status: models.NewsStatusPublished, AuthorID: users[1].ID, ReadingTime: 3, Category: strPtr("Census"), CreatedAt: lastMonth},
		{Title: "Prices", Body: "b", Status: models.NewsStatusDraft, AuthorID: users[1].ID, ReadingTime: 2, Category: strPtr("Economy"), CreatedAt: now},
		{Title: "Trade", Body: "b", Status: models.NewsStatusPending, AuthorID: users[0].ID, ReadingTime: 2, Category: strPtr("Economy"), CreatedAt: now},
	}
	for _, n := range news {
		require.NoError(t, repos.News.Create(n))
	}

	docs := []*models.Document{
		{Title: "Yearbook", OriginalName: "yearbook.pdf", MimeType: "application/pdf", FileSize: 3 * 1024 * 1024, IsPublic: true, DownloadCount: 7, UploadedBy: users[0].ID, Category: strPtr("Reports"), CreatedAt: now},
		{Title: "Survey", OriginalName: "survey.xlsx", MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FileSize: 1024 * 1024, IsPublic: false, DownloadCount: 2, UploadedBy: users[0].ID, CreatedAt: lastMonth},
	}
	for _, d := range docs {
		require.NoError(t, repos.Document.Create(d))
	}

	return NewService(repos, clock.Fixed(now)), store
}

func TestGrowth(t *testing.T) {
	tests := []struct {
		name     string
		this     int64
		last     int64
		expected float64
	}{
		{"no history no activity", 0, 0, 0},
		{"no history some activity", 3, 0, 100},
		{"doubled", 4, 2, 100},
		{"halved", 1, 2, -50},
		{"one third up", 4, 3, 33.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Growth(tt.this, tt.last))
		})
	}
}

func TestDashboardComputesAndCaches(t *testing.T) {
	fc := useFakeCache(t)
	svc, store := seeded(t)

	d, err := svc.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, int64(4), d.Users.Total)
	assert.Equal(t, int64(3), d.Users.Active)
	assert.Equal(t, int64(2), d.Users.NewThisMonth)
	assert.Equal(t, float64(100), d.Users.GrowthPercentage)
	assert.Equal(t, int64(1), d.News.Published)
	assert.Equal(t, int64(2), d.News.NewThisMonth)
	assert.Equal(t, int64(9), d.Documents.TotalDownloads)
	assert.Equal(t, "4 MB", d.System.StorageUsed)
	assert.Equal(t, 1, fc.sets)

	// A cached dashboard is served without touching the repositories.
	require.NoError(t, store.Repositories().User.Create(&models.User{Name: "Late", Email: "late@insbu.bi", Role: models.RoleUser, IsActive: true, CreatedAt: now}))
	cached, err := svc.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, int64(4), cached.Users.Total)
	assert.Equal(t, 1, fc.sets)

	svc.InvalidateDashboard()
	fresh, err := svc.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, int64(5), fresh.Users.Total)
	assert.Equal(t, 2, fc.sets)
}

func TestDashboardDiscardsCorruptEntry(t *testing.T) {
	fc := useFakeCache(t)
	svc, _ := seeded(t)
	fc.entries[CacheKeyDashboard] = "{not json"

	d, err := svc.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, int64(4), d.Users.Total)
}

func TestUsersReport(t *testing.T) {
	svc, _ := seeded(t)

	r, err := svc.Users()
	require.NoError(t, err)
	assert.Equal(t, int64(4), r.TotalUsers)
	assert.Equal(t, int64(3), r.ActiveUsers)
	assert.Equal(t, int64(1), r.InactiveUsers)
	assert.Equal(t, map[string]int64{"admin": 1, "editor": 1, "user": 2}, r.RoleDistribution)
	assert.Equal(t, int64(2), r.RecentRegistrations)
	assert.Equal(t, 2.5, r.AvgLoginFrequency)
}

func TestNewsReport(t *testing.T) {
	svc, _ := seeded(t)

	r, err := svc.News()
	require.NoError(t, err)
	assert.Equal(t, int64(3), r.TotalArticles)
	assert.Equal(t, int64(1), r.PublishedArticles)
	assert.Equal(t, int64(1), r.DraftArticles)
	assert.Equal(t, int64(1), r.PendingArticles)
	assert.Equal(t, 2.3, r.AvgReadingTime)
	require.NotEmpty(t, r.MostActiveAuthors)
	assert.Equal(t, "Editor", r.MostActiveAuthors[0].Name)
	assert.Equal(t, int64(2), r.MostActiveAuthors[0].NewsCount)
	assert.Equal(t, []CategoryCount{{"Economy", 2}, {"Census", 1}}, r.Categories)
}

func TestDocumentsReport(t *testing.T) {
	svc, _ := seeded(t)

	r, err := svc.Documents()
	require.NoError(t, err)
	assert.Equal(t, int64(2), r.TotalDocuments)
	assert.Equal(t, int64(1), r.PublicDocuments)
	assert.Equal(t, int64(1), r.PrivateDocuments)
	assert.Equal(t, int64(9), r.TotalDownloads)
	assert.Equal(t, 2.0, r.AvgFileSizeMB)
	require.Len(t, r.MostDownloaded, 2)
	assert.Equal(t, "Yearbook", r.MostDownloaded[0].Title)
	assert.ElementsMatch(t, []FileTypeCount{{"PDF", 1}, {"Excel/CSV", 1}}, r.FileTypes)
	assert.Equal(t, []CategoryCount{{"Reports", 1}}, r.Categories)
}

func TestDocumentsReportEmpty(t *testing.T) {
	svc := NewService(memrepo.New().Repositories(), clock.Fixed(now))

	r, err := svc.Documents()
	require.NoError(t, err)
	assert.Zero(t, r.AvgFileSizeMB)
	assert.Empty(t, r.MostDownloaded)
	assert.NotNil(t, r.Categories)
}

func TestMonthlyActivity(t *testing.T) {
	svc, _ := seeded(t)

	months, err := svc.MonthlyActivity(0)
	require.NoError(t, err)
	require.Len(t, months, DefaultMonths)
	assert.Equal(t, "Oct", months[0].Month)

	last := months[len(months)-1]
	assert.Equal(t, MonthActivity{Month: "Mar", Users: 2, News: 2, Documents: 1, Downloads: 7}, last)

	feb := months[len(months)-2]
	assert.Equal(t, MonthActivity{Month: "Feb", Users: 1, News: 1, Documents: 1, Downloads: 2}, feb)

	capped, err := svc.MonthlyActivity(100)
	require.NoError(t, err)
	assert.Len(t, capped, maxMonths)
}

func TestRoleDistribution(t *testing.T) {
	svc, _ := seeded(t)

	shares, err := svc.RoleDistribution()
	require.NoError(t, err)
	assert.Equal(t, []RoleShare{
		{Role: "User", Count: 2, Percentage: 50},
		{Role: "Admin", Count: 1, Percentage: 25},
		{Role: "Editor", Count: 1, Percentage: 25},
	}, shares)
}

func TestAdminReport(t *testing.T) {
	svc, _ := seeded(t)

	r, err := svc.Admin()
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.Users.Admin)
	assert.Equal(t, int64(2), r.Users.User)
	assert.Equal(t, int64(1), r.Users.Inactive)
	assert.Equal(t, int64(1), r.News.Pending)
	assert.Equal(t, int64(1), r.Documents.Private)
	assert.Equal(t, int64(4*1024*1024), r.Documents.TotalSize)
	assert.Equal(t, int64(2), r.Activity.UsersThisMonth)
	assert.Equal(t, int64(1), r.Activity.DocumentsThisMonth)
}

func TestUserActivity(t *testing.T) {
	svc, _ := seeded(t)

	a, err := svc.UserActivity(7)
	require.NoError(t, err)
	assert.Equal(t, []models.DailyStats{{Date: "2024-03-12", Count: 1}, {Date: "2024-03-13", Count: 1}}, a.Registrations)
	assert.Equal(t, []models.DailyStats{{Date: "2024-03-14", Count: 1}}, a.Logins)

	empty, err := NewService(memrepo.New().Repositories(), clock.Fixed(now)).UserActivity(0)
	require.NoError(t, err)
	assert.NotNil(t, empty.Registrations)
	assert.NotNil(t, empty.Logins)
}
