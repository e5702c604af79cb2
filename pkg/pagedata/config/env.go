package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// WithEnv reads every ServerConfig field from its environment variable,
// falling back to the env-default tag. Options applied after it override
// the environment.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
		return nil
	}
}

// LoadServerConfig loads .env files when present, then the environment.
func LoadServerConfig(files ...string) (*ServerConfig, error) {
	// Missing .env files are not an error
	_ = godotenv.Load(files...)
	return Load(WithEnv())
}

// Usage describes the environment variables ServerConfig reads.
func Usage() (string, error) {
	var cfg ServerConfig
	return cleanenv.GetDescription(&cfg, nil)
}
