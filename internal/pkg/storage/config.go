package storage

import (
	"errors"

	"github.com/insbu/portal/internal/pkg/env"
)

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Config holds storage configuration
type Config struct {
	Driver string
	Root   string

	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
}

// LoadConfig loads storage configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Driver:          env.GetEnv("STORAGE_DRIVER", DriverLocal),
		Root:            env.GetEnv("STORAGE_ROOT", "./uploads"),
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
	}

	// Validate required fields if S3 is selected
	if config.Driver == DriverS3 {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when STORAGE_DRIVER=s3")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when STORAGE_DRIVER=s3")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when STORAGE_DRIVER=s3")
		}
	}

	return config, nil
}
