package statistics

import (
	"strings"
	"time"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/apperr"
	"github.com/insbu/portal/internal/pkg/clock"
)

const (
	DefaultMonths       = 6
	maxMonths           = 24
	DefaultActivityDays = 30
	maxActivityDays     = 365
	recentDays          = 7
	topLimit            = 5
)

type UserReport struct {
	TotalUsers          int64            `json:"total_users"`
	ActiveUsers         int64            `json:"active_users"`
	InactiveUsers       int64            `json:"inactive_users"`
	RoleDistribution    map[string]int64 `json:"role_distribution"`
	RecentRegistrations int64            `json:"recent_registrations"`
	AvgLoginFrequency   float64          `json:"avg_login_frequency"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type NewsReport struct {
	TotalArticles     int64                `json:"total_articles"`
	PublishedArticles int64                `json:"published_articles"`
	DraftArticles     int64                `json:"draft_articles"`
	PendingArticles   int64                `json:"pending_articles"`
	ArchivedArticles  int64                `json:"archived_articles"`
	AvgReadingTime    float64              `json:"avg_reading_time"`
	MostActiveAuthors []models.AuthorCount `json:"most_active_authors"`
	Categories        []CategoryCount      `json:"categories"`
}

type DownloadedDocument struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	DownloadCount int64  `json:"download_count"`
}

type FileTypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type DocumentReport struct {
	TotalDocuments   int64                `json:"total_documents"`
	PublicDocuments  int64                `json:"public_documents"`
	PrivateDocuments int64                `json:"private_documents"`
	TotalDownloads   int64                `json:"total_downloads"`
	TotalSizeBytes   int64                `json:"total_size_bytes"`
	AvgFileSizeMB    float64              `json:"avg_file_size_mb"`
	MostDownloaded   []DownloadedDocument `json:"most_downloaded"`
	FileTypes        []FileTypeCount      `json:"file_types"`
	Categories       []CategoryCount      `json:"categories"`
}

// MonthActivity counts what was created during one calendar month.
type MonthActivity struct {
	Month     string `json:"month"`
	Users     int64  `json:"users"`
	News      int64  `json:"news"`
	Documents int64  `json:"documents"`
	Downloads int64  `json:"downloads"`
}

type RoleShare struct {
	Role       string  `json:"role"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AdminReport is the breakdown shown on the admin console.
type AdminReport struct {
	Users struct {
		Total    int64 `json:"total"`
		Active   int64 `json:"active"`
		Inactive int64 `json:"inactive"`
		Admin    int64 `json:"admin"`
		Editor   int64 `json:"editor"`
		User     int64 `json:"user"`
	} `json:"users"`
	News struct {
		Total     int64 `json:"total"`
		Published int64 `json:"published"`
		Draft     int64 `json:"draft"`
		Pending   int64 `json:"pending"`
	} `json:"news"`
	Documents struct {
		Total          int64 `json:"total"`
		Public         int64 `json:"public"`
		Private        int64 `json:"private"`
		TotalSize      int64 `json:"total_size"`
		TotalDownloads int64 `json:"total_downloads"`
	} `json:"documents"`
	Activity struct {
		UsersThisMonth     int64 `json:"users_this_month"`
		NewsThisMonth      int64 `json:"news_this_month"`
		DocumentsThisMonth int64 `json:"documents_this_month"`
	} `json:"activity"`
}

type UserActivity struct {
	Registrations []models.DailyStats `json:"registrations"`
	Logins        []models.DailyStats `json:"logins"`
}

func (s *Service) months() (time.Time, time.Time) {
	monthStart := clock.MonthStart(s.clock.Now())
	return monthStart, monthStart.AddDate(0, -1, 0)
}

func (s *Service) Users() (*UserReport, error) {
	monthStart, lastMonthStart := s.months()
	totals, err := s.stats.UserTotals(monthStart, lastMonthStart)
	if err != nil {
		return nil, apperr.Internal("failed to load user totals", err)
	}
	roles, err := s.roleCounts()
	if err != nil {
		return nil, err
	}
	recent, err := s.stats.RegistrationsSince(s.clock.Now().AddDate(0, 0, -recentDays))
	if err != nil {
		return nil, apperr.Internal("failed to count registrations", err)
	}
	avg, err := s.stats.AverageLoginCount()
	if err != nil {
		return nil, apperr.Internal("failed to average logins", err)
	}

	return &UserReport{
		TotalUsers:          totals.Total,
		ActiveUsers:         totals.Active,
		InactiveUsers:       totals.Total - totals.Active,
		RoleDistribution:    roles,
		RecentRegistrations: recent,
		AvgLoginFrequency:   round(avg, 1),
	}, nil
}

// roleCounts returns a count for every role, including roles nobody holds.
func (s *Service) roleCounts() (map[string]int64, error) {
	rows, err := s.stats.RoleDistribution()
	if err != nil {
		return nil, apperr.Internal("failed to load role distribution", err)
	}
	counts := make(map[string]int64, len(models.Roles))
	for _, r := range models.Roles {
		counts[string(r.Value)] = 0
	}
	for _, row := range rows {
		counts[row.Label] = row.Count
	}
	return counts, nil
}

func (s *Service) News() (*NewsReport, error) {
	monthStart, lastMonthStart := s.months()
	totals, err := s.stats.NewsTotals(monthStart, lastMonthStart)
	if err != nil {
		return nil, apperr.Internal("failed to load news totals", err)
	}
	avg, err := s.stats.AverageReadingTime()
	if err != nil {
		return nil, apperr.Internal("failed to average reading time", err)
	}
	authors, err := s.stats.TopAuthors(topLimit)
	if err != nil {
		return nil, apperr.Internal("failed to rank authors", err)
	}
	cats, err := s.stats.NewsCategories()
	if err != nil {
		return nil, apperr.Internal("failed to count news categories", err)
	}
	if authors == nil {
		authors = []models.AuthorCount{}
	}

	return &NewsReport{
		TotalArticles:     totals.Total,
		PublishedArticles: totals.Published,
		DraftArticles:     totals.Draft,
		PendingArticles:   totals.Pending,
		ArchivedArticles:  totals.Archived,
		AvgReadingTime:    round(avg, 1),
		MostActiveAuthors: authors,
		Categories:        categoryCounts(cats),
	}, nil
}

func (s *Service) Documents() (*DocumentReport, error) {
	monthStart, lastMonthStart := s.months()
	totals, err := s.stats.DocumentTotals(monthStart, lastMonthStart)
	if err != nil {
		return nil, apperr.Internal("failed to load document totals", err)
	}
	top, err := s.stats.MostDownloaded(topLimit)
	if err != nil {
		return nil, apperr.Internal("failed to rank documents", err)
	}
	types, err := s.stats.FileTypeDistribution()
	if err != nil {
		return nil, apperr.Internal("failed to count file types", err)
	}
	cats, err := s.stats.DocumentCategories()
	if err != nil {
		return nil, apperr.Internal("failed to count document categories", err)
	}

	report := &DocumentReport{
		TotalDocuments:   totals.Total,
		PublicDocuments:  totals.Public,
		PrivateDocuments: totals.Total - totals.Public,
		TotalDownloads:   totals.TotalDownloads,
		TotalSizeBytes:   totals.TotalSize,
		MostDownloaded:   make([]DownloadedDocument, 0, len(top)),
		FileTypes:        make([]FileTypeCount, 0, len(types)),
		Categories:       categoryCounts(cats),
	}
	if totals.Total > 0 {
		report.AvgFileSizeMB = round(float64(totals.TotalSize)/float64(totals.Total)/1024/1024, 2)
	}
	for _, d := range top {
		report.MostDownloaded = append(report.MostDownloaded, DownloadedDocument{ID: d.ID, Title: d.Title, DownloadCount: d.DownloadCount})
	}
	for _, t := range types {
		report.FileTypes = append(report.FileTypes, FileTypeCount{Type: t.Label, Count: t.Count})
	}
	return report, nil
}

// MonthlyActivity returns one entry per month for the last months months,
// oldest first, ending with the current month.
func (s *Service) MonthlyActivity(months int) ([]MonthActivity, error) {
	if months <= 0 {
		months = DefaultMonths
	}
	months = min(months, maxMonths)

	current := clock.MonthStart(s.clock.Now())
	out := make([]MonthActivity, 0, months)
	for i := months - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		entry := MonthActivity{Month: start.Format("Jan")}
		var err error
		if entry.Users, err = s.stats.CreatedBetween(repository.TableUsers, start, end); err != nil {
			return nil, apperr.Internal("failed to count users", err)
		}
		if entry.News, err = s.stats.CreatedBetween(repository.TableNews, start, end); err != nil {
			return nil, apperr.Internal("failed to count news", err)
		}
		if entry.Documents, err = s.stats.CreatedBetween(repository.TableDocuments, start, end); err != nil {
			return nil, apperr.Internal("failed to count documents", err)
		}
		if entry.Downloads, err = s.stats.DownloadsBetween(start, end); err != nil {
			return nil, apperr.Internal("failed to sum downloads", err)
		}
		out = append(out, entry)
	}
	return out, nil
}

// RoleDistribution lists the roles that are held, with their share of all users.
func (s *Service) RoleDistribution() ([]RoleShare, error) {
	rows, err := s.stats.RoleDistribution()
	if err != nil {
		return nil, apperr.Internal("failed to load role distribution", err)
	}
	var total int64
	for _, r := range rows {
		total += r.Count
	}

	out := make([]RoleShare, 0, len(rows))
	for _, r := range rows {
		share := RoleShare{Role: capitalize(r.Label), Count: r.Count}
		if total > 0 {
			share.Percentage = round(float64(r.Count)/float64(total)*100, 1)
		}
		out = append(out, share)
	}
	return out, nil
}

func (s *Service) Admin() (*AdminReport, error) {
	monthStart, lastMonthStart := s.months()
	users, err := s.stats.UserTotals(monthStart, lastMonthStart)
	if err != nil {
		return nil, apperr.Internal("failed to load user totals", err)
	}
	news, err := s.stats.NewsTotals(monthStart, lastMonthStart)
	if err != nil {
		return nil, apperr.Internal("failed to load news totals", err)
	}
	docs, err := s.stats.DocumentTotals(monthStart, lastMonthStart)
	if err != nil {
		return nil, apperr.Internal("failed to load document totals", err)
	}
	roles, err := s.roleCounts()
	if err != nil {
		return nil, err
	}

	r := &AdminReport{}
	r.Users.Total = users.Total
	r.Users.Active = users.Active
	r.Users.Inactive = users.Total - users.Active
	r.Users.Admin = roles[string(models.RoleAdmin)]
	r.Users.Editor = roles[string(models.RoleEditor)]
	r.Users.User = roles[string(models.RoleUser)]
	r.News.Total = news.Total
	r.News.Published = news.Published
	r.News.Draft = news.Draft
	r.News.Pending = news.Pending
	r.Documents.Total = docs.Total
	r.Documents.Public = docs.Public
	r.Documents.Private = docs.Total - docs.Public
	r.Documents.TotalSize = docs.TotalSize
	r.Documents.TotalDownloads = docs.TotalDownloads
	r.Activity.UsersThisMonth = users.ThisMonth
	r.Activity.NewsThisMonth = news.ThisMonth
	r.Activity.DocumentsThisMonth = docs.ThisMonth
	return r, nil
}

// UserActivity returns daily registrations and logins over the last days days.
func (s *Service) UserActivity(days int) (*UserActivity, error) {
	if days <= 0 {
		days = DefaultActivityDays
	}
	days = min(days, maxActivityDays)

	now := s.clock.Now()
	since := clock.DayStart(now).AddDate(0, 0, -days)

	registrations, err := s.users.GetDailyStats(since, now)
	if err != nil {
		return nil, apperr.Internal("failed to load registrations", err)
	}
	logins, err := s.users.GetDailyLogins(since, now)
	if err != nil {
		return nil, apperr.Internal("failed to load logins", err)
	}
	if registrations == nil {
		registrations = []models.DailyStats{}
	}
	if logins == nil {
		logins = []models.DailyStats{}
	}
	return &UserActivity{Registrations: registrations, Logins: logins}, nil
}

func categoryCounts(rows []models.LabelCount) []CategoryCount {
	out := make([]CategoryCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, CategoryCount{Category: r.Label, Count: r.Count})
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
