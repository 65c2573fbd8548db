package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/cache"
	"github.com/insbu/portal/internal/pkg/clock"
	"github.com/insbu/portal/internal/pkg/database"
	"github.com/insbu/portal/internal/pkg/env"
	"github.com/insbu/portal/internal/pkg/router"
	"github.com/insbu/portal/internal/pkg/storage"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "8000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	store, err := newStore(context.Background())
	if err != nil {
		log.Fatalf("storage setup failed: %v", err)
	}

	basePath := ""
	for _, path := range []string{"./", "../../"} {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	app := fiber.New(fiber.Config{
		AppName: "INSBU Portal",
		// documents are capped at 10 MB each, a batch holds several
		BodyLimit: env.GetEnvInt("BODY_LIMIT_MB", 64) * 1024 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: env.GetEnv("CORS_ALLOW_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}))

	var limiterStorage fiber.Storage
	if env.GetEnv("RATE_LIMIT_STORAGE", "memory") == "redis" {
		limiterStorage = cache.NewFiberStorage(cache.LimiterDatabase)
	}

	// ROUTER
	router.InstallRouter(app, router.Dependencies{
		Repos:          repository.GetGlobalRepositories(),
		Store:          store,
		Clock:          clock.Real(),
		LimiterStorage: limiterStorage,
	})

	return app
}

func newStore(ctx context.Context) (storage.Store, error) {
	cfg, err := storage.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == storage.DriverS3 {
		s3Store, err := storage.NewS3Store(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s3Store, nil
	}
	local, err := storage.NewLocalStore(cfg.Root)
	if err != nil {
		return nil, err
	}
	return local, nil
}
