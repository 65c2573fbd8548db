package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/clock"
	"github.com/insbu/portal/internal/pkg/storage"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies is everything the routes need from the outside.
type Dependencies struct {
	Repos *repository.Repositories
	Store storage.Store
	Clock clock.Clock
	// LimiterStorage backs the API rate limiter; nil keeps counters in memory.
	LimiterStorage fiber.Storage
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	setup(app, NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
