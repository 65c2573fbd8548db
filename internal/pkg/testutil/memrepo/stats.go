package memrepo

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
)

type statsRepo struct{ s *Store }

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

func (r *statsRepo) UserTotals(monthStart, lastMonthStart time.Time) (repository.UserTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var t repository.UserTotals
	for _, u := range r.s.users {
		t.Total++
		if u.IsActive {
			t.Active++
		}
		if !u.CreatedAt.Before(monthStart) {
			t.ThisMonth++
		}
		if inRange(u.CreatedAt, lastMonthStart, monthStart) {
			t.LastMonth++
		}
	}
	return t, nil
}

func (r *statsRepo) NewsTotals(monthStart, lastMonthStart time.Time) (repository.NewsTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var t repository.NewsTotals
	for _, n := range r.s.news {
		t.Total++
		switch n.Status {
		case models.NewsStatusPublished:
			t.Published++
		case models.NewsStatusDraft:
			t.Draft++
		case models.NewsStatusPending:
			t.Pending++
		case models.NewsStatusArchived:
			t.Archived++
		}
		if !n.CreatedAt.Before(monthStart) {
			t.ThisMonth++
		}
		if inRange(n.CreatedAt, lastMonthStart, monthStart) {
			t.LastMonth++
		}
	}
	return t, nil
}

func (r *statsRepo) DocumentTotals(monthStart, lastMonthStart time.Time) (repository.DocumentTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var t repository.DocumentTotals
	for _, d := range r.s.documents {
		t.Total++
		if d.IsPublic {
			t.Public++
		}
		t.TotalDownloads += d.DownloadCount
		t.TotalSize += d.FileSize
		if !d.CreatedAt.Before(monthStart) {
			t.ThisMonth++
		}
		if inRange(d.CreatedAt, lastMonthStart, monthStart) {
			t.LastMonth++
		}
	}
	return t, nil
}

func labelCounts(labels []string) []models.LabelCount {
	counts := map[string]int64{}
	for _, l := range labels {
		counts[l]++
	}
	out := make([]models.LabelCount, 0, len(counts))
	for l, c := range counts {
		out = append(out, models.LabelCount{Label: l, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func (r *statsRepo) RoleDistribution() ([]models.LabelCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var labels []string
	for _, u := range r.s.users {
		labels = append(labels, string(u.Role))
	}
	return labelCounts(labels), nil
}

func (r *statsRepo) RegistrationsSince(since time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if !u.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *statsRepo) AverageLoginCount() (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum, n := 0, 0
	for _, u := range r.s.users {
		if u.LoginCount > 0 {
			sum += u.LoginCount
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

func (r *statsRepo) AverageReadingTime() (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.news) == 0 {
		return 0, nil
	}
	sum := 0
	for _, n := range r.s.news {
		sum += n.ReadingTime
	}
	return float64(sum) / float64(len(r.s.news)), nil
}

func (r *statsRepo) TopAuthors(limit int) ([]models.AuthorCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[uint]int64{}
	for _, n := range r.s.news {
		counts[n.AuthorID]++
	}
	var out []models.AuthorCount
	for id, c := range counts {
		u, ok := r.s.users[id]
		if !ok {
			continue
		}
		out = append(out, models.AuthorCount{AuthorID: id, Name: u.Name, NewsCount: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NewsCount != out[j].NewsCount {
			return out[i].NewsCount > out[j].NewsCount
		}
		return out[i].AuthorID < out[j].AuthorID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *statsRepo) NewsCategories() ([]models.LabelCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var labels []string
	for _, n := range r.s.news {
		if c := deref(n.Category); c != "" {
			labels = append(labels, c)
		}
	}
	return labelCounts(labels), nil
}

func (r *statsRepo) DocumentCategories() ([]models.LabelCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var labels []string
	for _, d := range r.s.documents {
		if c := deref(d.Category); c != "" {
			labels = append(labels, c)
		}
	}
	return labelCounts(labels), nil
}

func (r *statsRepo) FileTypeDistribution() ([]models.LabelCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var labels []string
	for _, d := range r.s.documents {
		m := d.MimeType
		switch {
		case strings.Contains(m, "pdf"):
			labels = append(labels, "PDF")
		case strings.Contains(m, "word") || m == "application/msword":
			labels = append(labels, "Word")
		case strings.Contains(m, "excel") || strings.Contains(m, "spreadsheet") || m == "text/csv":
			labels = append(labels, "Excel/CSV")
		case strings.HasPrefix(m, "image/"):
			labels = append(labels, "Image")
		default:
			labels = append(labels, "Other")
		}
	}
	return labelCounts(labels), nil
}

func (r *statsRepo) MostDownloaded(limit int) ([]models.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Document
	for _, id := range sortedKeys(r.s.documents) {
		out = append(out, r.s.documents[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DownloadCount > out[j].DownloadCount })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *statsRepo) CreatedBetween(table repository.Table, start, end time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	switch table {
	case repository.TableUsers:
		for _, u := range r.s.users {
			if inRange(u.CreatedAt, start, end) {
				n++
			}
		}
	case repository.TableNews:
		for _, x := range r.s.news {
			if inRange(x.CreatedAt, start, end) {
				n++
			}
		}
	case repository.TableDocuments:
		for _, d := range r.s.documents {
			if inRange(d.CreatedAt, start, end) {
				n++
			}
		}
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}
	return n, nil
}

func (r *statsRepo) DownloadsBetween(start, end time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum int64
	for _, d := range r.s.documents {
		if inRange(d.CreatedAt, start, end) {
			sum += d.DownloadCount
		}
	}
	return sum, nil
}
