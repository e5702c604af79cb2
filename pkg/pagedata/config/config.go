package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// defaults mirrors the env-default tags of ServerConfig.
func defaults() ServerConfig {
	return ServerConfig{
		Environment:    "development",
		LogLevel:       "info",
		DatabaseType:   "memory",
		StorageBackend: "memory",
		StorageBaseURL: "/uploads",
		FSBaseDir:      "./data/uploads",
		S3Region:       "us-east-1",
		S3SSEAlgorithm: "AES256",
		AssetsDir:      "visualcomposer-assets",
		PublishBundles: true,
		Sanitize:       true,
		EnableMetrics:  true,
		MaxBodyBytes:   32 << 20,
	}
}

// ServerConfig represents server configuration for the page data service
type ServerConfig struct {
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`

	// Database configuration
	DatabaseType string `env:"PAGEDATA_DATABASE_TYPE" env-default:"memory"` // "memory", "postgres"
	DatabaseURL  string `env:"DATABASE_URL"`
	DBSchema     string `env:"PAGEDATA_DB_SCHEMA"` // Postgres schema to use; server default when empty
	AutoMigrate  bool   `env:"PAGEDATA_AUTO_MIGRATE" env-default:"false"`

	// Storage configuration
	StorageBackend string `env:"PAGEDATA_STORAGE" env-default:"memory"` // "memory", "fs", "s3"
	StorageBaseURL string `env:"PAGEDATA_UPLOADS_URL" env-default:"/uploads"`
	FSBaseDir      string `env:"PAGEDATA_FS_BASE_DIR" env-default:"./data/uploads"`

	S3Bucket          string `env:"PAGEDATA_S3_BUCKET"`
	S3Region          string `env:"PAGEDATA_S3_REGION" env-default:"us-east-1"`
	S3Endpoint        string `env:"PAGEDATA_S3_ENDPOINT"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3UsePathStyle    bool   `env:"PAGEDATA_S3_USE_PATH_STYLE" env-default:"false"`
	S3PublicURL       string `env:"PAGEDATA_S3_PUBLIC_URL"`
	S3EnableSSE       bool   `env:"PAGEDATA_S3_ENABLE_SSE" env-default:"false"`
	S3SSEAlgorithm    string `env:"PAGEDATA_S3_SSE_ALGORITHM" env-default:"AES256"`
	S3SSEKMSKeyID     string `env:"PAGEDATA_S3_SSE_KMS_KEY_ID"`
	S3CreateBucket    bool   `env:"PAGEDATA_S3_CREATE_BUCKET" env-default:"false"`

	// Editor options
	AssetsDir      string `env:"PAGEDATA_ASSETS_DIR" env-default:"visualcomposer-assets"`
	PublishBundles bool   `env:"PAGEDATA_PUBLISH_BUNDLES" env-default:"true"`
	Sanitize       bool   `env:"PAGEDATA_SANITIZE" env-default:"true"`

	// Server options
	JWTSecret     string `env:"PAGEDATA_JWT_SECRET"`
	EnableMetrics bool   `env:"PAGEDATA_METRICS" env-default:"true"`
	MaxBodyBytes  int64  `env:"PAGEDATA_MAX_BODY_BYTES" env-default:"33554432"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.StorageBackend {
	case "memory":
	case "fs":
		if c.FSBaseDir == "" {
			return errors.New("fs base directory is required when using fs storage")
		}
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("s3 bucket is required when using s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %s", c.StorageBackend)
	}

	if c.MaxBodyBytes <= 0 {
		return errors.New("max_body_bytes must be positive")
	}

	if c.Environment == "production" && c.JWTSecret == "" {
		return errors.New("jwt secret is required in production")
	}

	if _, err := c.level(); err != nil {
		return err
	}

	return nil
}

func (c *ServerConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Logger returns a logger writing to stderr at the configured level. Text
// output in development, JSON otherwise.
func (c *ServerConfig) Logger() *slog.Logger {
	level, err := c.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Environment == "development" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
