package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIURL       = "http://localhost:4000/api"
	defaultReadTimeout  = 5 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// ClientConfig holds the settings used by the userdir front end to reach the API.
type ClientConfig struct {
	APIURL       string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LoadClient reads the front end configuration from the environment.
func LoadClient() (ClientConfig, error) {
	_ = godotenv.Load()

	cfg := ClientConfig{
		APIURL:       getEnv("USERDIR_API_URL", defaultAPIURL),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}

	if v := os.Getenv("USERDIR_READ_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("invalid USERDIR_READ_TIMEOUT: %w", err)
		}
		cfg.ReadTimeout = d
	}
	if v := os.Getenv("USERDIR_WRITE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("invalid USERDIR_WRITE_TIMEOUT: %w", err)
		}
		cfg.WriteTimeout = d
	}

	return cfg, nil
}
