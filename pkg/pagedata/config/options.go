package config

import (
	"fmt"
)

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithLogLevel sets the log level (debug, info, warn, error)
func WithLogLevel(level string) Option {
	return func(c *ServerConfig) error {
		c.LogLevel = level
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != "memory" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithAutoMigrate applies the embedded schema on startup
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithMemoryStorage keeps uploads in memory, served under baseURL
func WithMemoryStorage(baseURL string) Option {
	return func(c *ServerConfig) error {
		c.StorageBackend = "memory"
		c.StorageBaseURL = baseURL
		return nil
	}
}

// WithFilesystemStorage stores uploads under baseDir, served under urlPrefix
func WithFilesystemStorage(baseDir, urlPrefix string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.StorageBackend = "fs"
		c.FSBaseDir = baseDir
		c.StorageBaseURL = urlPrefix
		return nil
	}
}

// WithS3Storage stores uploads in an S3 bucket
func WithS3Storage(bucket, region string) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("S3 bucket name cannot be empty")
		}
		c.StorageBackend = "s3"
		c.S3Bucket = bucket
		if region != "" {
			c.S3Region = region
		}
		return nil
	}
}

// WithS3Endpoint points the S3 backend at an S3-compatible service
func WithS3Endpoint(endpoint string, usePathStyle bool) Option {
	return func(c *ServerConfig) error {
		c.S3Endpoint = endpoint
		c.S3UsePathStyle = usePathStyle
		return nil
	}
}

// WithAssetsDir sets the directory plugin assets are served from
func WithAssetsDir(dir string) Option {
	return func(c *ServerConfig) error {
		if dir == "" {
			return fmt.Errorf("assets directory cannot be empty")
		}
		c.AssetsDir = dir
		return nil
	}
}

// WithJWTSecret sets the secret editor tokens are signed with
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		return nil
	}
}

// WithSanitizer enables or disables content sanitization
func WithSanitizer(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.Sanitize = enabled
		return nil
	}
}

// WithMetrics enables or disables Prometheus metrics
func WithMetrics(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableMetrics = enabled
		return nil
	}
}

// WithBundlePublishing enables or disables publishing compiled CSS bundles
func WithBundlePublishing(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.PublishBundles = enabled
		return nil
	}
}
