package database

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

var DB *gorm.DB

// GetDB returns the shared connection opened by SetupDatabase.
func GetDB() *gorm.DB {
	return DB
}

// DSN builds the MySQL data source name from DB_* variables.
func DSN() string {
	// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		env.GetEnv("DB_USER", "insbu"),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", "insbu_portal"),
	)
}

// SetupDatabase connects with retries and panics when MySQL never comes up.
// With DB_AUTO_MIGRATE enabled the portal tables are created by GORM instead
// of the SQL migrations.
func SetupDatabase() {
	var err error
	logLevel := logger.Warn
	if env.IsDev() {
		logLevel = logger.Info
	}

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       DSN(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), &gorm.Config{
			Logger:  logger.Default.LogMode(logLevel),
			NowFunc: func() time.Time { return time.Now().UTC() },
		})
		if err == nil {
			if env.GetEnvBool("DB_AUTO_MIGRATE", false) {
				if err = AutoMigrate(DB); err != nil {
					panic(err)
				}
			}
			log.Info("[Database] Connected")
			return
		}

		log.Warnf("[Database] Failed to connect (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Infof("[Database] Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		panic(err)
	}
}

// AutoMigrate creates or updates every portal table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.APIToken{},
		&models.News{},
		&models.Document{},
		&models.Resource{},
		&models.ActivityLog{},
	)
}
