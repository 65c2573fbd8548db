// Package statistics computes the dashboard and report figures. The dashboard
// is cached for a few minutes since every signed-in user loads it.
package statistics

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/apperr"
	"github.com/insbu/portal/internal/pkg/cache"
	"github.com/insbu/portal/internal/pkg/clock"
)

const (
	CacheKeyDashboard = "statistics:dashboard"
	CacheExpiration   = 5 * time.Minute
)

// Cache access goes through these variables so tests can replace them.
var (
	cacheGet    = cache.Get
	cacheSet    = cache.Set
	cacheDelete = cache.Delete
)

type UserSummary struct {
	Total            int64   `json:"total"`
	Active           int64   `json:"active"`
	NewThisMonth     int64   `json:"new_this_month"`
	GrowthPercentage float64 `json:"growth_percentage"`
}

type NewsSummary struct {
	Total            int64   `json:"total"`
	Published        int64   `json:"published"`
	NewThisMonth     int64   `json:"new_this_month"`
	GrowthPercentage float64 `json:"growth_percentage"`
}

type DocumentSummary struct {
	Total            int64   `json:"total"`
	TotalDownloads   int64   `json:"total_downloads"`
	NewThisMonth     int64   `json:"new_this_month"`
	GrowthPercentage float64 `json:"growth_percentage"`
	TotalSizeGB      float64 `json:"total_size_gb"`
}

type SystemSummary struct {
	StorageUsed string    `json:"storage_used"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Dashboard is the overview shown on the portal home screen.
type Dashboard struct {
	Users     UserSummary     `json:"users"`
	News      NewsSummary     `json:"news"`
	Documents DocumentSummary `json:"documents"`
	System    SystemSummary   `json:"system"`
}

type Service struct {
	stats repository.StatsRepository
	users repository.UserRepository
	clock clock.Clock
}

func NewService(repos *repository.Repositories, clk clock.Clock) *Service {
	return &Service{
		stats: repos.Stats,
		users: repos.User,
		clock: clock.Or(clk),
	}
}

// Growth compares this month with the previous one, in percent with one decimal.
// Without a previous month it is 100 when anything happened this month, else 0.
func Growth(thisMonth, lastMonth int64) float64 {
	if lastMonth == 0 {
		if thisMonth > 0 {
			return 100
		}
		return 0
	}
	return round(float64(thisMonth-lastMonth)/float64(lastMonth)*100, 1)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Dashboard returns the cached overview, computing and caching it on a miss.
// Cache failures are logged and never fail the request.
func (s *Service) Dashboard() (*Dashboard, error) {
	if raw, err := cacheGet(CacheKeyDashboard); err == nil {
		var d Dashboard
		if err := json.Unmarshal([]byte(raw), &d); err == nil {
			return &d, nil
		}
		log.Warnf("[Statistics] Discarding undecodable dashboard cache entry")
	} else if !cache.IsMiss(err) && !errors.Is(err, cache.ErrUnavailable) {
		log.Warnf("[Statistics] Error reading dashboard cache: %v", err)
	}

	d, err := s.computeDashboard()
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(d); err == nil {
		if err := cacheSet(CacheKeyDashboard, string(raw), CacheExpiration); err != nil && !errors.Is(err, cache.ErrUnavailable) {
			log.Warnf("[Statistics] Error caching dashboard: %v", err)
		}
	}
	return d, nil
}

// InvalidateDashboard drops the cached overview.
func (s *Service) InvalidateDashboard() {
	if err := cacheDelete(CacheKeyDashboard); err != nil && !errors.Is(err, cache.ErrUnavailable) {
		log.Warnf("[Statistics] Error invalidating dashboard cache: %v", err)
	}
}

func (s *Service) computeDashboard() (*Dashboard, error) {
	now := s.clock.Now()
	monthStart := clock.MonthStart(now)
	lastMonthStart := monthStart.AddDate(0, -1, 0)

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

	return &Dashboard{
		Users: UserSummary{
			Total:            users.Total,
			Active:           users.Active,
			NewThisMonth:     users.ThisMonth,
			GrowthPercentage: Growth(users.ThisMonth, users.LastMonth),
		},
		News: NewsSummary{
			Total:            news.Total,
			Published:        news.Published,
			NewThisMonth:     news.ThisMonth,
			GrowthPercentage: Growth(news.ThisMonth, news.LastMonth),
		},
		Documents: DocumentSummary{
			Total:            docs.Total,
			TotalDownloads:   docs.TotalDownloads,
			NewThisMonth:     docs.ThisMonth,
			GrowthPercentage: Growth(docs.ThisMonth, docs.LastMonth),
			TotalSizeGB:      round(float64(docs.TotalSize)/1024/1024/1024, 2),
		},
		System: SystemSummary{
			StorageUsed: models.FormatBytes(docs.TotalSize),
			GeneratedAt: now,
		},
	}, nil
}
