package citadel

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	Addr         string `env:"ADDR" envDefault:":8080"`
	DatabasePath string `env:"DATABASE_URL" envDefault:"data/citadel.db"`
	UploadsDir   string `env:"UPLOADS_DIR" envDefault:"uploads"`

	// AdminToken is the shared secret for admin routes. When empty every
	// admin call answers 500 rather than 401: a missing secret is an
	// operator fault, not a caller fault.
	AdminToken string `env:"ADMIN_TOKEN"`

	// CORSOrigins restricts cross-origin access; empty means allow all,
	// matching the original deployment behind a static frontend.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

// LoadConfig parses configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
