package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for missing or inconsistent values.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DBHost == "" || c.DBPort == "" || c.DBUser == "" || c.DBName == "" {
		return errors.New("database host, port, user and name are required")
	}

	switch c.ImageStorage {
	case "local":
		if c.UploadDir == "" {
			return errors.New("UPLOAD_DIR is required for local image storage")
		}
	case "s3":
		if c.S3Bucket == "" || c.S3Region == "" {
			return errors.New("S3_BUCKET and S3_REGION are required for s3 image storage")
		}
	default:
		return fmt.Errorf("unknown image storage backend: %q", c.ImageStorage)
	}

	return nil
}
