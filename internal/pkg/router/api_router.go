package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/insbu/portal/app/controllers"
	"github.com/insbu/portal/internal/pkg/accounts"
	"github.com/insbu/portal/internal/pkg/audit"
	"github.com/insbu/portal/internal/pkg/documents"
	"github.com/insbu/portal/internal/pkg/env"
	"github.com/insbu/portal/internal/pkg/middleware"
	"github.com/insbu/portal/internal/pkg/news"
	"github.com/insbu/portal/internal/pkg/resources"
	"github.com/insbu/portal/internal/pkg/statistics"
)

type ApiRouter struct {
	deps Dependencies

	auth      *controllers.AuthController
	news      *controllers.NewsController
	documents *controllers.DocumentController
	resources *controllers.ResourceController
	stats     *controllers.StatsController
	admin     *controllers.AdminController
}

// NewApiRouter builds the services and controllers on top of deps.
func NewApiRouter(deps Dependencies) *ApiRouter {
	rec := audit.NewRecorder(deps.Repos.Activity)
	accountSvc := accounts.NewService(deps.Repos, deps.Store, rec, deps.Clock)
	newsSvc := news.NewService(deps.Repos, rec, deps.Clock)
	statsSvc := statistics.NewService(deps.Repos, deps.Clock)

	return &ApiRouter{
		deps:      deps,
		auth:      controllers.NewAuthController(accountSvc),
		news:      controllers.NewNewsController(newsSvc),
		documents: controllers.NewDocumentController(documents.NewService(deps.Repos, deps.Store, rec, deps.Clock)),
		resources: controllers.NewResourceController(resources.NewService(deps.Repos)),
		stats:     controllers.NewStatsController(statsSvc),
		admin:     controllers.NewAdminController(accountSvc, newsSvc, statsSvc, rec),
	}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api",
		newLimiter(h.deps.LimiterStorage),
		middleware.TokenAuthMiddleware(h.deps.Repos.Token, h.deps.Clock),
	)
	api.Get("/health", controllers.HandleHealth)

	h.registerAuthRoutes(api)
	h.registerNewsRoutes(api)
	h.registerDocumentRoutes(api)
	h.registerResourceRoutes(api)
	h.registerStatsRoutes(api)
	h.registerAdminRoutes(api)
}

func newLimiter(storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        env.GetEnvInt("RATE_LIMIT_MAX", 60),
		Expiration: time.Minute,
		Storage:    storage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "too_many_requests",
				"message": "Too many requests, please slow down.",
			})
		},
	})
}

func (h ApiRouter) registerAuthRoutes(api fiber.Router) {
	auth := api.Group("/auth")
	auth.Post("/register", h.auth.HandleRegister)
	auth.Post("/login", h.auth.HandleLogin)

	auth.Get("/user", middleware.RequireAuth, h.auth.HandleUser)
	auth.Put("/profile", middleware.RequireAuth, h.auth.HandleUpdateProfile)
	auth.Put("/password", middleware.RequireAuth, h.auth.HandleChangePassword)
	auth.Post("/refresh", middleware.RequireAuth, h.auth.HandleRefresh)
	auth.Post("/logout", middleware.RequireAuth, h.auth.HandleLogout)
	auth.Post("/logout-all", middleware.RequireAuth, h.auth.HandleLogoutAll)
}

func (h ApiRouter) registerNewsRoutes(api fiber.Router) {
	r := api.Group("/news")
	r.Get("/", h.news.HandleList)
	r.Get("/latest", h.news.HandleLatest)
	r.Get("/categories", h.news.HandleCategories)
	r.Get("/statistics", middleware.RequireContentManager, h.news.HandleStatistics)
	r.Get("/:id<int>", h.news.HandleShow)

	r.Post("/", middleware.RequireContentManager, h.news.HandleCreate)
	r.Put("/:id<int>", middleware.RequireContentManager, h.news.HandleUpdate)
	r.Delete("/:id<int>", middleware.RequireContentManager, h.news.HandleDelete)
}

func (h ApiRouter) registerDocumentRoutes(api fiber.Router) {
	r := api.Group("/documents")
	r.Get("/", h.documents.HandleList)
	r.Get("/recent", h.documents.HandleRecent)
	r.Get("/popular", h.documents.HandlePopular)
	r.Get("/categories", h.documents.HandleCategories)
	r.Get("/statistics", middleware.RequireContentManager, h.documents.HandleStatistics)
	r.Get("/:id<int>", h.documents.HandleShow)
	r.Get("/:id<int>/download", h.documents.HandleDownload)

	r.Post("/", middleware.RequireContentManager, h.documents.HandleUpload)
	r.Put("/:id<int>", middleware.RequireContentManager, h.documents.HandleUpdate)
	r.Delete("/:id<int>", middleware.RequireContentManager, h.documents.HandleDelete)
}

func (h ApiRouter) registerResourceRoutes(api fiber.Router) {
	r := api.Group("/resources")
	r.Get("/", h.resources.HandleList)
	r.Get("/categories", h.resources.HandleCategories)
	r.Get("/:id<int>", h.resources.HandleShow)

	r.Post("/", middleware.RequireAdmin, h.resources.HandleCreate)
	r.Put("/:id<int>", middleware.RequireAdmin, h.resources.HandleUpdate)
	r.Delete("/:id<int>", middleware.RequireAdmin, h.resources.HandleDelete)
}

func (h ApiRouter) registerStatsRoutes(api fiber.Router) {
	r := api.Group("/stats", middleware.RequireAuth)
	r.Get("/dashboard", h.stats.HandleDashboard)
	r.Get("/users", h.stats.HandleUsers)
	r.Get("/news", h.stats.HandleNews)
	r.Get("/documents", h.stats.HandleDocuments)
	r.Get("/monthly-activity", h.stats.HandleMonthlyActivity)
	r.Get("/role-distribution", h.stats.HandleRoleDistribution)
}

func (h ApiRouter) registerAdminRoutes(api fiber.Router) {
	r := api.Group("/admin", middleware.RequireAdmin)

	r.Get("/users", h.admin.HandleUsers)
	r.Post("/users", h.admin.HandleUserCreate)
	r.Get("/users/:id<int>", h.admin.HandleUserShow)
	r.Put("/users/:id<int>", h.admin.HandleUserUpdate)
	r.Put("/users/:id<int>/role", h.admin.HandleUserRole)
	r.Put("/users/:id<int>/status", h.admin.HandleUserStatus)
	r.Delete("/users/:id<int>", h.admin.HandleUserDelete)

	r.Get("/roles", h.admin.HandleRoles)
	r.Get("/statistics", h.admin.HandleStatistics)
	r.Get("/logs", h.admin.HandleLogs)
	r.Get("/user-activity", h.admin.HandleUserActivity)

	r.Get("/articles", h.admin.HandleArticles)
	r.Post("/articles/:id<int>/approve", h.admin.HandleApprove)
	r.Post("/articles/:id<int>/reject", h.admin.HandleReject)
}
