package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/clock"
	"github.com/insbu/portal/internal/pkg/storage"
	"github.com/insbu/portal/internal/pkg/testutil/memrepo"
)

const password = "correct-horse"

var now = time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

var pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

type testAPI struct {
	app   *fiber.App
	repos *repository.Repositories
	store *memrepo.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memrepo.New()
	store.Now = func() time.Time { return now }
	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	app := fiber.New()
	repos := store.Repositories()
	InstallRouter(app, Dependencies{Repos: repos, Store: files, Clock: clock.Fixed(now)})
	return &testAPI{app: app, repos: repos, store: store}
}

// user creates an account directly and signs it in, returning the bearer token.
func (a *testAPI) user(t *testing.T, email string, role models.Role) string {
	t.Helper()
	u, err := models.NewUser(string(role), email, password, role)
	require.NoError(t, err)
	require.NoError(t, a.repos.User.Create(u))

	status, body := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, fiber.StatusOK, status, body)
	return body["token"].(string)
}

func (a *testAPI) do(t *testing.T, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return a.send(t, req, token)
}

func (a *testAPI) send(t *testing.T, req *http.Request, token string) (int, map[string]any) {
	t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func data(body map[string]any) map[string]any {
	d, _ := body["data"].(map[string]any)
	return d
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OK", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestRegisterLoginAndProfile(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":                  "Reader",
		"email":                 "Reader@Example.org",
		"password":              password,
		"password_confirmation": password,
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	token := body["token"].(string)
	assert.True(t, strings.HasPrefix(token, "ptl_"))
	assert.Equal(t, "Bearer", body["token_type"])

	status, body = api.do(t, http.MethodGet, "/api/auth/user", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	user := body["user"].(map[string]any)
	assert.Equal(t, "reader@example.org", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "password")

	status, _ = api.do(t, http.MethodGet, "/api/auth/user", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = api.do(t, http.MethodGet, "/api/auth/user", "ptl_bogus", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "reader@example.org", "password": "wrong-password"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body["errors"], "email")

	status, _ = api.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = api.do(t, http.MethodGet, "/api/auth/user", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestNewsReviewOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	admin := api.user(t, "admin@example.org", models.RoleAdmin)
	editor := api.user(t, "editor@example.org", models.RoleEditor)

	status, body := api.do(t, http.MethodPost, "/api/news", editor, map[string]string{
		"title":  "Population census results",
		"body":   "<p>The census counted every household.</p>",
		"status": "published",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	article := data(body)
	assert.Equal(t, "pending", article["status"])
	assert.Equal(t, "The census counted every household....", article["excerpt"])
	id := int(article["id"].(float64))
	path := fmt.Sprintf("/api/news/%d", id)

	status, _ = api.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = api.do(t, http.MethodPost, fmt.Sprintf("/api/admin/articles/%d/approve", id), editor, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = api.do(t, http.MethodPost, fmt.Sprintf("/api/admin/articles/%d/approve", id), admin, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "published", data(body)["status"])
	assert.NotNil(t, data(body)["published_at"])

	status, body = api.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Population census results", data(body)["title"])

	status, body = api.do(t, http.MethodPost, fmt.Sprintf("/api/admin/articles/%d/reject", id), admin, map[string]string{"reason": "late"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invariant_violation", body["error"])

	status, body = api.do(t, http.MethodGet, "/api/news?limit=5", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, float64(5), body["per_page"])
}

func TestNewsWritesRequireContentManager(t *testing.T) {
	api := newTestAPI(t)
	reader := api.user(t, "reader@example.org", models.RoleUser)

	status, _ := api.do(t, http.MethodPost, "/api/news", "", map[string]string{"title": "x", "body": "y"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = api.do(t, http.MethodPost, "/api/news", reader, map[string]string{"title": "x", "body": "y"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = api.do(t, http.MethodGet, "/api/news/statistics", reader, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func multipartUpload(t *testing.T, fields map[string]string, name string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("files", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func TestDocumentUploadAndDownload(t *testing.T) {
	api := newTestAPI(t)
	editor := api.user(t, "editor@example.org", models.RoleEditor)

	req := multipartUpload(t, map[string]string{"title": "Annual report", "category": "Reports"}, "annual-report.pdf", pdfContent)
	status, body := api.send(t, req, editor)
	require.Equal(t, fiber.StatusCreated, status, body)
	uploaded := body["data"].([]any)
	require.Len(t, uploaded, 1)
	doc := uploaded[0].(map[string]any)
	assert.Equal(t, "annual-report.pdf", doc["original_name"])
	assert.Equal(t, "pdf", doc["kind"])
	assert.Equal(t, true, doc["is_public"])
	id := int(doc["id"].(float64))

	resp, err := api.app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/documents/%d/download", id), nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), `filename="annual-report.pdf"`)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, pdfContent, got)

	stored, err := api.repos.Document.GetByID(uint(id))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.DownloadCount)
}

func TestPrivateDocumentHiddenFromReaders(t *testing.T) {
	api := newTestAPI(t)
	editor := api.user(t, "editor@example.org", models.RoleEditor)
	reader := api.user(t, "reader@example.org", models.RoleUser)

	req := multipartUpload(t, map[string]string{"title": "Internal memo", "is_public": "0"}, "memo.pdf", pdfContent)
	status, body := api.send(t, req, editor)
	require.Equal(t, fiber.StatusCreated, status, body)
	id := int(body["data"].([]any)[0].(map[string]any)["id"].(float64))

	status, _ = api.do(t, http.MethodGet, fmt.Sprintf("/api/documents/%d", id), reader, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = api.do(t, http.MethodGet, fmt.Sprintf("/api/documents/%d/download", id), "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = api.do(t, http.MethodGet, fmt.Sprintf("/api/documents/%d", id), editor, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, data(body)["is_public"])
}

func TestUploadRejectsDisguisedFile(t *testing.T) {
	api := newTestAPI(t)
	editor := api.user(t, "editor@example.org", models.RoleEditor)

	req := multipartUpload(t, map[string]string{"title": "Fake"}, "fake.pdf", []byte("MZ\x90\x00 not a pdf at all"))
	status, body := api.send(t, req, editor)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Len(t, body["errors"], 1)
}

func TestAdminRoutes(t *testing.T) {
	api := newTestAPI(t)
	admin := api.user(t, "admin@example.org", models.RoleAdmin)
	editor := api.user(t, "editor@example.org", models.RoleEditor)

	status, _ := api.do(t, http.MethodGet, "/api/admin/users", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = api.do(t, http.MethodGet, "/api/admin/users", editor, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := api.do(t, http.MethodGet, "/api/admin/users?role=editor", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["total"])

	status, _ = api.do(t, http.MethodGet, "/api/admin/users?status=banned", admin, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	adminUser, err := api.repos.User.GetByEmail("admin@example.org")
	require.NoError(t, err)
	status, body = api.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", adminUser.ID), admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Cannot delete the last active admin user.", body["message"])

	editorUser, err := api.repos.User.GetByEmail("editor@example.org")
	require.NoError(t, err)
	status, body = api.do(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d/status", editorUser.ID), admin, map[string]bool{"is_active": false})
	require.Equal(t, fiber.StatusOK, status, body)

	// Suspension revokes the editor's tokens.
	status, _ = api.do(t, http.MethodGet, "/api/auth/user", editor, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = api.do(t, http.MethodGet, "/api/admin/logs?limit=5", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["data"])

	status, body = api.do(t, http.MethodGet, "/api/admin/roles", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 3)
}

func TestResourcesCatalog(t *testing.T) {
	api := newTestAPI(t)
	admin := api.user(t, "admin@example.org", models.RoleAdmin)

	status, body := api.do(t, http.MethodPost, "/api/resources", admin, map[string]any{
		"title":      "WHO Health Guidelines",
		"url":        "https://www.who.int/publications",
		"category":   "International",
		"sort_order": 2,
	})
	require.Equal(t, fiber.StatusCreated, status, body)

	status, body = api.do(t, http.MethodGet, "/api/resources", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["total"])

	status, _ = api.do(t, http.MethodPost, "/api/resources", "", map[string]any{"title": "x"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestStatsRequireAuth(t *testing.T) {
	api := newTestAPI(t)
	reader := api.user(t, "reader@example.org", models.RoleUser)

	status, _ := api.do(t, http.MethodGet, "/api/stats/users", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := api.do(t, http.MethodGet, "/api/stats/role-distribution", reader, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = api.do(t, http.MethodGet, "/api/stats/monthly-activity?months=3", reader, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 3)
}

func TestListingsDefaultToFifteenPerPage(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/api/news", "/api/documents", "/api/resources"} {
		t.Run(path, func(t *testing.T) {
			status, body := api.do(t, http.MethodGet, path, "", nil)
			require.Equal(t, fiber.StatusOK, status, body)
			assert.Equal(t, float64(repository.DefaultPerPage), body["per_page"])
			assert.Equal(t, float64(15), body["per_page"])
		})
	}
}
