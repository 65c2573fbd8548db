// Package memrepo provides in-memory repository implementations for tests.
package memrepo

import (
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
)

// Store holds every table. All repositories returned by Repositories share it.
type Store struct {
	mu sync.Mutex

	users     map[uint]models.User
	news      map[uint]models.News
	documents map[uint]models.Document
	resources map[uint]models.Resource
	tokens    map[uint]models.APIToken
	logs      []models.ActivityLog

	nextID uint

	// Now stamps CreatedAt/UpdatedAt on rows that do not carry one.
	Now func() time.Time

	// FailWith, when set, is returned by every write.
	FailWith error
}

func New() *Store {
	return &Store{
		users:     map[uint]models.User{},
		news:      map[uint]models.News{},
		documents: map[uint]models.Document{},
		resources: map[uint]models.Resource{},
		tokens:    map[uint]models.APIToken{},
		Now:       time.Now,
	}
}

// Repositories wires the store into the repository bundle the services expect.
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:     &userRepo{s},
		News:     &newsRepo{s},
		Document: &documentRepo{s},
		Resource: &resourceRepo{s},
		Token:    &tokenRepo{s},
		Activity: &activityRepo{s},
		Stats:    &statsRepo{s},
	}
}

// Logs returns a copy of the recorded activity log entries, oldest first.
func (s *Store) Logs() []models.ActivityLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ActivityLog(nil), s.logs...)
}

// Tokens returns how many tokens exist for the user.
func (s *Store) Tokens(userID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tokens {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) stamp(created, updated *time.Time) {
	now := s.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func sortedKeys[V any](m map[uint]V) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func pageOf[T any](items []T, req repository.PageRequest) repository.Page[T] {
	req = req.Normalize()
	total := int64(len(items))
	start := req.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + req.PerPage
	if end > len(items) {
		end = len(items)
	}
	return repository.NewPage(append([]T(nil), items[start:end]...), req, total)
}

func distinct(values []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ---------------------------------------------------------------- users

type userRepo struct{ s *Store }

func (r *userRepo) Create(user *models.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = s.id()
	s.stamp(&user.CreatedAt, &user.UpdatedAt)
	s.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *userRepo) EmailTaken(email string, exceptID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID != exceptID && strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepo) Update(user *models.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, ok := s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.stamp(&user.CreatedAt, &user.UpdatedAt)
	s.users[user.ID] = *user
	return nil
}

func (r *userRepo) Delete(id uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, ok := s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.users, id)
	for k, n := range s.news {
		if n.AuthorID == id {
			delete(s.news, k)
		}
	}
	for k, d := range s.documents {
		if d.UploadedBy == id {
			delete(s.documents, k)
		}
	}
	for k, t := range s.tokens {
		if t.UserID == id {
			delete(s.tokens, k)
		}
	}
	for i := range s.logs {
		if s.logs[i].UserID != nil && *s.logs[i].UserID == id {
			s.logs[i].UserID = nil
		}
	}
	return nil
}

func (r *userRepo) List(filter repository.UserFilter, page repository.PageRequest) (repository.Page[models.User], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.User
	for _, id := range sortedKeys(r.s.users) {
		u := r.s.users[id]
		if filter.Search != "" && !contains(u.Name, filter.Search) && !contains(u.Email, filter.Search) {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Active != nil && u.IsActive != *filter.Active {
			continue
		}
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return pageOf(out, page), nil
}

func (r *userRepo) Count() (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

func (r *userRepo) CountActiveAdmins() (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if u.Role == models.RoleAdmin && u.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *userRepo) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	return r.daily(startDate, endDate, func(u models.User) *time.Time { return &u.CreatedAt })
}

func (r *userRepo) GetDailyLogins(startDate, endDate time.Time) ([]models.DailyStats, error) {
	return r.daily(startDate, endDate, func(u models.User) *time.Time { return u.LastLoginAt })
}

func (r *userRepo) daily(start, end time.Time, at func(models.User) *time.Time) ([]models.DailyStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int{}
	for _, u := range r.s.users {
		t := at(u)
		if t == nil || t.Before(start) || t.After(end) {
			continue
		}
		counts[t.Format("2006-01-02")]++
	}
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]models.DailyStats, len(days))
	for i, d := range days {
		out[i] = models.DailyStats{Date: d, Count: counts[d]}
	}
	return out, nil
}

// ---------------------------------------------------------------- news

type newsRepo struct{ s *Store }

func (r *newsRepo) withAuthor(n models.News) models.News {
	if u, ok := r.s.users[n.AuthorID]; ok {
		n.Author = &u
	}
	return n
}

func (r *newsRepo) Create(news *models.News) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	news.ID = s.id()
	s.stamp(&news.CreatedAt, &news.UpdatedAt)
	stored := *news
	stored.Author = nil
	s.news[news.ID] = stored
	return nil
}

func (r *newsRepo) GetByID(id uint) (*models.News, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.news[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	n = r.withAuthor(n)
	return &n, nil
}

func (r *newsRepo) Update(news *models.News) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, ok := s.news[news.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.stamp(&news.CreatedAt, &news.UpdatedAt)
	stored := *news
	stored.Author = nil
	s.news[news.ID] = stored
	return nil
}

func (r *newsRepo) Delete(id uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	delete(s.news, id)
	return nil
}

func visibleAt(n models.News, at *time.Time) bool {
	return at == nil || n.IsPublishedAt(*at)
}

func (r *newsRepo) List(filter repository.NewsFilter, page repository.PageRequest) (repository.Page[models.News], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.News
	for _, id := range sortedKeys(r.s.news) {
		n := r.s.news[id]
		if !visibleAt(n, filter.VisibleAt) {
			continue
		}
		if filter.Status != "" && n.Status != filter.Status {
			continue
		}
		if filter.Category != "" && deref(n.Category) != filter.Category {
			continue
		}
		if filter.AuthorID != 0 && n.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Search != "" && !contains(n.Title, filter.Search) && !contains(n.Body, filter.Search) && !contains(deref(n.Excerpt), filter.Search) {
			continue
		}
		out = append(out, r.withAuthor(n))
	}

	asc := strings.EqualFold(filter.SortOrder, "asc")
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var less bool
		switch filter.SortBy {
		case "title":
			less = a.Title < b.Title
		case "status":
			less = a.Status < b.Status
		case "updated_at":
			less = a.UpdatedAt.Before(b.UpdatedAt)
		case "published_at":
			less = timeOrZero(a.PublishedAt).Before(timeOrZero(b.PublishedAt))
		default:
			if filter.VisibleAt != nil {
				less = timeOrZero(a.PublishedAt).Before(timeOrZero(b.PublishedAt))
			} else {
				less = a.CreatedAt.Before(b.CreatedAt)
			}
		}
		if asc {
			return less
		}
		return !less && !equalForSort(a, b, filter)
	})
	return pageOf(out, page), nil
}

func equalForSort(a, b models.News, filter repository.NewsFilter) bool {
	switch filter.SortBy {
	case "title":
		return a.Title == b.Title
	case "status":
		return a.Status == b.Status
	case "updated_at":
		return a.UpdatedAt.Equal(b.UpdatedAt)
	case "published_at":
		return timeOrZero(a.PublishedAt).Equal(timeOrZero(b.PublishedAt))
	}
	if filter.VisibleAt != nil {
		return timeOrZero(a.PublishedAt).Equal(timeOrZero(b.PublishedAt))
	}
	return a.CreatedAt.Equal(b.CreatedAt)
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func (r *newsRepo) Latest(at *time.Time, limit int) ([]models.News, error) {
	p, err := r.List(repository.NewsFilter{VisibleAt: at, SortBy: "published_at"}, repository.PageRequest{Page: 1, PerPage: limit})
	return p.Data, err
}

func (r *newsRepo) Categories(at *time.Time) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var cats []string
	for _, n := range r.s.news {
		if visibleAt(n, at) {
			cats = append(cats, deref(n.Category))
		}
	}
	return distinct(cats), nil
}

func (r *newsRepo) CountByStatus() (map[models.NewsStatus]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[models.NewsStatus]int64{}
	for status := range models.NewsStatuses {
		counts[status] = 0
	}
	for _, n := range r.s.news {
		counts[n.Status]++
	}
	return counts, nil
}

// ---------------------------------------------------------------- documents

type documentRepo struct{ s *Store }

func (r *documentRepo) withUploader(d models.Document) models.Document {
	if u, ok := r.s.users[d.UploadedBy]; ok {
		d.Uploader = &u
	}
	return d
}

func (r *documentRepo) Create(doc *models.Document) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	doc.ID = s.id()
	s.stamp(&doc.CreatedAt, &doc.UpdatedAt)
	stored := *doc
	stored.Uploader = nil
	s.documents[doc.ID] = stored
	return nil
}

func (r *documentRepo) GetByID(id uint) (*models.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.documents[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	d = r.withUploader(d)
	return &d, nil
}

func (r *documentRepo) Update(doc *models.Document) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, ok := s.documents[doc.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.stamp(&doc.CreatedAt, &doc.UpdatedAt)
	stored := *doc
	stored.Uploader = nil
	s.documents[doc.ID] = stored
	return nil
}

func (r *documentRepo) Delete(id uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, ok := s.documents[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.documents, id)
	return nil
}

func (r *documentRepo) filtered(filter repository.DocumentFilter) []models.Document {
	var out []models.Document
	for _, id := range sortedKeys(r.s.documents) {
		d := r.s.documents[id]
		if filter.PublicOnly && !d.IsPublic {
			continue
		}
		if filter.Category != "" && deref(d.Category) != filter.Category {
			continue
		}
		if filter.Search != "" && !contains(d.Title, filter.Search) && !contains(deref(d.Description), filter.Search) && !contains(d.OriginalName, filter.Search) {
			continue
		}
		out = append(out, r.withUploader(d))
	}
	return out
}

func (r *documentRepo) List(filter repository.DocumentFilter, page repository.PageRequest) (repository.Page[models.Document], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.filtered(filter)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return pageOf(out, page), nil
}

func (r *documentRepo) Recent(publicOnly bool, limit int) ([]models.Document, error) {
	p, err := r.List(repository.DocumentFilter{PublicOnly: publicOnly}, repository.PageRequest{Page: 1, PerPage: limit})
	return p.Data, err
}

func (r *documentRepo) Popular(publicOnly bool, limit int) ([]models.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.filtered(repository.DocumentFilter{PublicOnly: publicOnly})
	sort.SliceStable(out, func(i, j int) bool { return out[i].DownloadCount > out[j].DownloadCount })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *documentRepo) Categories(publicOnly bool) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var cats []string
	for _, d := range r.filtered(repository.DocumentFilter{PublicOnly: publicOnly}) {
		cats = append(cats, deref(d.Category))
	}
	return distinct(cats), nil
}

func (r *documentRepo) IncrementDownloadCount(id uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	d, ok := s.documents[id]
	if !ok {
		return nil
	}
	d.DownloadCount++
	s.documents[id] = d
	return nil
}

func (r *documentRepo) PathsByUploader(userID uint) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var paths []string
	for _, id := range sortedKeys(r.s.documents) {
		if d := r.s.documents[id]; d.UploadedBy == userID {
			paths = append(paths, d.FilePath)
		}
	}
	return paths, nil
}

// ---------------------------------------------------------------- resources

type resourceRepo struct{ s *Store }

func (r *resourceRepo) Create(resource *models.Resource) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	resource.ID = s.id()
	s.stamp(&resource.CreatedAt, &resource.UpdatedAt)
	s.resources[resource.ID] = *resource
	return nil
}

func (r *resourceRepo) GetByID(id uint) (*models.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.resources[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &res, nil
}

func (r *resourceRepo) GetByURL(url string) (*models.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, res := range r.s.resources {
		if res.URL == url {
			return &res, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *resourceRepo) Update(resource *models.Resource) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, ok := s.resources[resource.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.stamp(&resource.CreatedAt, &resource.UpdatedAt)
	s.resources[resource.ID] = *resource
	return nil
}

func (r *resourceRepo) Delete(id uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resources[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.resources, id)
	return nil
}

func (r *resourceRepo) List(filter repository.ResourceFilter, page repository.PageRequest) (repository.Page[models.Resource], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return pageOf(r.filtered(filter), page), nil
}

func (r *resourceRepo) filtered(filter repository.ResourceFilter) []models.Resource {
	var out []models.Resource
	for _, res := range r.s.resources {
		if filter.ActiveOnly && !res.IsActive {
			continue
		}
		if filter.Category != "" && deref(res.Category) != filter.Category {
			continue
		}
		if filter.Search != "" && !contains(res.Title, filter.Search) && !contains(deref(res.Description), filter.Search) {
			continue
		}
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Title < out[j].Title
	})
	return out
}

func (r *resourceRepo) Categories(activeOnly bool) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := r.filtered(repository.ResourceFilter{ActiveOnly: activeOnly})
	cats := make([]string, 0, len(list))
	for _, res := range list {
		cats = append(cats, deref(res.Category))
	}
	return distinct(cats), nil
}

// ---------------------------------------------------------------- tokens

type tokenRepo struct{ s *Store }

func (r *tokenRepo) Create(token *models.APIToken) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	token.ID = s.id()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = s.Now()
	}
	s.tokens[token.ID] = *token
	return nil
}

func (r *tokenRepo) GetByHash(hash string) (*models.APIToken, *models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tokens {
		if hash != "" && t.TokenHash == hash {
			u, ok := r.s.users[t.UserID]
			if !ok {
				return nil, nil, gorm.ErrRecordNotFound
			}
			return &t, &u, nil
		}
	}
	return nil, nil, gorm.ErrRecordNotFound
}

func (r *tokenRepo) Touch(id uint, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.tokens[id]; ok {
		t.Touch(at)
		r.s.tokens[id] = t
	}
	return nil
}

func (r *tokenRepo) Delete(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tokens, id)
	return nil
}

func (r *tokenRepo) DeleteByUserID(userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, id)
		}
	}
	return nil
}

// ---------------------------------------------------------------- activity

type activityRepo struct{ s *Store }

func (r *activityRepo) Create(entry *models.ActivityLog) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	entry.ID = s.id()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.Now()
	}
	s.logs = append(s.logs, *entry)
	return nil
}

func (r *activityRepo) List(page repository.PageRequest) (repository.Page[models.ActivityLog], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.ActivityLog, 0, len(r.s.logs))
	for i := len(r.s.logs) - 1; i >= 0; i-- {
		out = append(out, r.s.logs[i])
	}
	return pageOf(out, page), nil
}
