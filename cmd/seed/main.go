package main

import (
	"log"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/database"
	"github.com/insbu/portal/internal/pkg/env"
	"github.com/insbu/portal/internal/pkg/seed"
)

func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())

	password := env.GetEnv("SEED_ADMIN_PASSWORD", "")
	if password == "" {
		log.Fatal("SEED_ADMIN_PASSWORD must be set")
	}

	opts := seed.Options{
		Admin: seed.Account{
			Name:     env.GetEnv("SEED_ADMIN_NAME", "Administrator"),
			Email:    env.GetEnv("SEED_ADMIN_EMAIL", "admin@insbu.bi"),
			Password: password,
			Role:     models.RoleAdmin,
		},
		WithSamples: env.GetEnvBool("SEED_WITH_SAMPLES", false),
		Samples: []seed.Account{
			{Name: "Editor", Email: "editor@insbu.bi", Password: env.GetEnv("SEED_SAMPLE_PASSWORD", "password123"), Role: models.RoleEditor},
			{Name: "Reader", Email: "user@insbu.bi", Password: env.GetEnv("SEED_SAMPLE_PASSWORD", "password123"), Role: models.RoleUser},
		},
	}

	res, err := seed.Run(repository.GetGlobalRepositories(), opts)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Printf("Seeding done: %d user(s), %d resource(s) created", res.Users, res.Resources)
}
