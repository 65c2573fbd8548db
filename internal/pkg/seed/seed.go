// Package seed fills an empty database with the bootstrap accounts and the
// default resource catalog. Running it twice changes nothing.
package seed

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
)

type Account struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

type Options struct {
	Admin Account
	// Samples are only created when WithSamples is set.
	Samples     []Account
	WithSamples bool
}

// Result counts what a run created.
type Result struct {
	Users     int
	Resources int
}

func strPtr(s string) *string { return &s }

// DefaultResources is the catalog a fresh installation starts with.
var DefaultResources = []models.Resource{
	{
		Title:       "INSBU Official Website",
		Description: strPtr("Official website of the Institut National de la Statistique du Burundi"),
		URL:         "https://www.insbu.bi",
		Category:    strPtr("Official"),
		IsActive:    true,
		SortOrder:   1,
	},
	{
		Title:       "WHO Health Guidelines",
		Description: strPtr("World Health Organization guidelines and publications"),
		URL:         "https://www.who.int/publications",
		Category:    strPtr("International"),
		IsActive:    true,
		SortOrder:   2,
	},
	{
		Title:       "Ministry of Health Burundi",
		Description: strPtr("Official portal of the Ministry of Public Health and the Fight against AIDS"),
		URL:         "https://www.minisante.gov.bi",
		Category:    strPtr("Government"),
		IsActive:    true,
		SortOrder:   3,
	},
	{
		Title:       "Public Health Research Database",
		Description: strPtr("Database of peer reviewed public health research"),
		URL:         "https://pubmed.ncbi.nlm.nih.gov",
		Category:    strPtr("Research"),
		IsActive:    true,
		SortOrder:   4,
	},
	{
		Title:       "Health Data Analytics Tools",
		Description: strPtr("Tools for collecting and analysing health statistics"),
		URL:         "https://dhis2.org",
		Category:    strPtr("Tools"),
		IsActive:    true,
		SortOrder:   5,
	},
	{
		Title:       "Epidemiological Surveillance Guidelines",
		Description: strPtr("Guidelines for integrated disease surveillance and response"),
		URL:         "https://www.afro.who.int/publications/technical-guidelines-integrated-disease-surveillance-and-response-african-region-third",
		Category:    strPtr("Guidelines"),
		IsActive:    true,
		SortOrder:   6,
	},
}

// Run creates missing accounts and resources. Existing rows, matched by
// email and URL, are left untouched.
func Run(repos *repository.Repositories, opts Options) (Result, error) {
	var res Result

	accounts := []Account{opts.Admin}
	if opts.WithSamples {
		accounts = append(accounts, opts.Samples...)
	}
	for _, a := range accounts {
		created, err := ensureUser(repos.User, a)
		if err != nil {
			return res, err
		}
		if created {
			res.Users++
		}
	}

	for _, r := range DefaultResources {
		created, err := ensureResource(repos.Resource, r)
		if err != nil {
			return res, err
		}
		if created {
			res.Resources++
		}
	}

	log.Infof("[Seed] Created %d user(s) and %d resource(s)", res.Users, res.Resources)
	return res, nil
}

func ensureUser(users repository.UserRepository, a Account) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(a.Email))
	if email == "" || a.Password == "" {
		return false, fmt.Errorf("seed account %q needs an email and a password", a.Name)
	}

	_, err := users.GetByEmail(email)
	if err == nil {
		log.Debugf("[Seed] User %s already exists", email)
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("look up %s: %w", email, err)
	}

	user, err := models.NewUser(a.Name, email, a.Password, a.Role)
	if err != nil {
		return false, fmt.Errorf("build %s: %w", email, err)
	}
	if err := users.Create(user); err != nil {
		return false, fmt.Errorf("create %s: %w", email, err)
	}
	log.Infof("[Seed] Created %s user %s", a.Role, email)
	return true, nil
}

func ensureResource(resources repository.ResourceRepository, r models.Resource) (bool, error) {
	_, err := resources.GetByURL(r.URL)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("look up resource %s: %w", r.URL, err)
	}
	if err := resources.Create(&r); err != nil {
		return false, fmt.Errorf("create resource %s: %w", r.Title, err)
	}
	return true, nil
}
