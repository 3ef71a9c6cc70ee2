package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings for a capture session. Command line flags
// override whatever the environment provides.
type Config struct {
	PhotosDir    string  `env:"FACELOG_PHOTOS" envDefault:"photos"`
	LogPath      string  `env:"FACELOG_LOG" envDefault:"face_log.csv"`
	ArchiveDir   string  `env:"FACELOG_ARCHIVE_DIR" envDefault:"csv_logs"`
	ModelsDir    string  `env:"FACELOG_MODELS" envDefault:"models"`
	Device       string  `env:"FACELOG_DEVICE" envDefault:"0"`
	Threshold    float64 `env:"FACELOG_THRESHOLD" envDefault:"0.4"`
	Every        int     `env:"FACELOG_EVERY" envDefault:"2"`
	Scale        int     `env:"FACELOG_SCALE" envDefault:"4"`
	MaxImageEdge int     `env:"FACELOG_MAX_IMAGE_EDGE" envDefault:"1024"`
	CNN          bool    `env:"FACELOG_CNN" envDefault:"false"`

	Database DatabaseConfig
}

// DatabaseConfig locates the optional Postgres mirror.
type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"POSTGRES_HOST"`
	User     string `env:"POSTGRES_USER"`
	Password string `env:"POSTGRES_PASSWORD"`
	Name     string `env:"POSTGRES_DB"`
	Port     string `env:"POSTGRES_PORT" envDefault:"5432"`
}

// ConnString returns the connection string, or "" when no database is
// configured.
func (d DatabaseConfig) ConnString() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Host == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", d.User, d.Password, d.Host, d.Port, d.Name)
}

// Load reads an optional .env file and then parses the environment.
func Load() (Config, error) {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the session cannot run with.
func (c Config) Validate() error {
	if c.Threshold <= 0 || c.Threshold > 1 {
		return fmt.Errorf("%w: threshold must be in (0, 1], got %g", ErrInvalidConfig, c.Threshold)
	}
	if c.Every < 1 {
		return fmt.Errorf("%w: every must be at least 1, got %d", ErrInvalidConfig, c.Every)
	}
	if c.Scale < 1 {
		return fmt.Errorf("%w: scale must be at least 1, got %d", ErrInvalidConfig, c.Scale)
	}
	if c.MaxImageEdge < 1 {
		return fmt.Errorf("%w: max image edge must be at least 1, got %d", ErrInvalidConfig, c.MaxImageEdge)
	}
	if c.PhotosDir == "" || c.LogPath == "" {
		return fmt.Errorf("%w: photos folder and log path are required", ErrInvalidConfig)
	}
	return nil
}
