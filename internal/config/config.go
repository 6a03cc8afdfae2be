package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

const (
	BlobBackendLocal = "local"
	BlobBackendS3    = "s3"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Facturas"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
		Timezone string `envconfig:"APP_TIMEZONE" default:"Europe/Madrid"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"facturas"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
		MaxUpload   int64         `envconfig:"MAX_UPLOAD_BYTES" default:"52428800"`
	}

	Sealer struct {
		Key string `envconfig:"SEALER_KEY"`
	}

	Auth struct {
		User         string        `envconfig:"AUTH_USER" default:"admin"`
		Secret       string        `envconfig:"AUTH_SECRET"`
		PasswordHash string        `envconfig:"AUTH_PASSWORD_HASH"`
		TTL          time.Duration `envconfig:"AUTH_TTL" default:"12h"`
	}

	Blob struct {
		Backend     string `envconfig:"BLOB_BACKEND" default:"local"`
		LocalDir    string `envconfig:"BLOB_LOCAL_DIR"`
		S3Bucket    string `envconfig:"BLOB_S3_BUCKET"`
		S3Prefix    string `envconfig:"BLOB_S3_PREFIX"`
		S3Region    string `envconfig:"BLOB_S3_REGION"`
		S3Endpoint  string `envconfig:"BLOB_S3_ENDPOINT"`
		S3PathStyle bool   `envconfig:"BLOB_S3_PATH_STYLE" default:"false"`
	}

	Income struct {
		OtherExpenseFloorCents int64 `envconfig:"INCOME_OTHER_EXPENSE_FLOOR_CENTS" default:"80000"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func required(errs []error, value, name string) []error {
	if strings.TrimSpace(value) == "" {
		return append(errs, fmt.Errorf("%s is required", name))
	}

	return errs
}

// Validate reports every missing setting shared by all entry points at once.
func (c *Config) Validate() error {
	var errs []error

	errs = required(errs, c.DB.Password, "DB_PASSWORD")
	errs = required(errs, c.Sealer.Key, "SEALER_KEY")

	switch c.Blob.Backend {
	case BlobBackendLocal:
		errs = required(errs, c.Blob.LocalDir, "BLOB_LOCAL_DIR")
	case BlobBackendS3:
		errs = required(errs, c.Blob.S3Bucket, "BLOB_S3_BUCKET")
	default:
		errs = append(errs, fmt.Errorf("BLOB_BACKEND must be %q or %q, got %q", BlobBackendLocal, BlobBackendS3, c.Blob.Backend))
	}

	if c.Income.OtherExpenseFloorCents < 0 {
		errs = append(errs, errors.New("INCOME_OTHER_EXPENSE_FLOOR_CENTS must not be negative"))
	}

	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("APP_TIMEZONE: %w", err))
	}

	return errors.Join(errs...)
}

// ValidateAuth checks the settings only the HTTP API needs to sign sessions.
func (c *Config) ValidateAuth() error {
	var errs []error

	errs = required(errs, c.Auth.Secret, "AUTH_SECRET")
	errs = required(errs, c.Auth.PasswordHash, "AUTH_PASSWORD_HASH")

	return errors.Join(errs...)
}

// Location is the zone invoice dates are interpreted in. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}

	return loc
}

// Level maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadAPI is Load plus the session settings the HTTP API cannot start without.
func LoadAPI() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.ValidateAuth(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
