package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string `env:"DB_HOST"`
	Port               string `env:"DB_PORT, default=5432"`
	User               string `env:"DB_USER"`
	Password           string `env:"DB_PASSWORD"`
	Name               string `env:"DB_NAME"`
	SSLMode            string `env:"DB_SSLMODE, default=disable"`
	MaxOpenConns       int    `env:"DB_MAX_OPEN_CONNS, default=10"`
	MaxIdleConns       int    `env:"DB_MAX_IDLE_CONNS, default=5"`
	ConnMaxLifetimeSec int    `env:"DB_CONN_MAX_LIFETIME_SEC, default=300"`
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET"`
	UseSSL    bool   `env:"MINIO_USE_SSL, default=false"`
}

// BlobCacheConfig sizes the in-process read cache placed in front of object storage.
// A zero Entries value disables the cache.
type BlobCacheConfig struct {
	Entries        int   `env:"BLOB_CACHE_ENTRIES, default=256"`
	MaxObjectBytes int64 `env:"BLOB_CACHE_MAX_OBJECT_BYTES, default=1048576"`
}

// AuthConfig configures verification of the bearer tokens issued by the identity provider.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET"`
	JWTIssuer string `env:"AUTH_JWT_ISSUER"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost        string        `env:"APP_HOST, default=localhost:8080"`
	Port           string        `env:"PORT, default=8080"`
	Timezone       string        `env:"APP_TIMEZONE, default=UTC"`
	PageSize       int           `env:"PAGE_SIZE, default=10"`
	MaxUploadBytes int           `env:"MAX_UPLOAD_BYTES, default=52428800"`
	LinkTTL        time.Duration `env:"LINK_TTL, default=15m"`

	Auth      AuthConfig
	BlobCache BlobCacheConfig
	Database  DatabaseConfig
	MinIO     MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load(ctx context.Context) (*AppConfig, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("load config: PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}
	return &cfg, nil
}

// Location resolves the configured time zone used for log timestamps.
func (c *AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
