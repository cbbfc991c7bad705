package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost     string
	ServerPort     string
	AllowedOrigins []string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration (optional; rate limiting is disabled without it)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string

	// Image storage: "local" or "s3"
	ImageStorage string
	UploadDir    string
	S3Bucket     string
	S3Region     string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "pantrybook")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IMAGE_STORAGE", "local")
	v.SetDefault("UPLOAD_DIR", "uploads")

	cfg := &Config{
		ServerHost:     v.GetString("SERVER_HOST"),
		ServerPort:     v.GetString("SERVER_PORT"),
		AllowedOrigins: v.GetStringSlice("ALLOWED_ORIGINS"),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBName:         v.GetString("DB_NAME"),
		DBSSLMode:      v.GetString("DB_SSL_MODE"),
		RedisHost:      v.GetString("REDIS_HOST"),
		RedisPort:      v.GetString("REDIS_PORT"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		ImageStorage:   v.GetString("IMAGE_STORAGE"),
		UploadDir:      v.GetString("UPLOAD_DIR"),
		S3Bucket:       v.GetString("S3_BUCKET"),
		S3Region:       v.GetString("S3_REGION"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled reports whether a redis host was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}
