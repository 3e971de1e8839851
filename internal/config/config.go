// Package config provides centralized configuration management for the
// import service. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"math"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Media    MediaConfig
	Cache    CacheConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request body (default: 5m)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"5m"`

	// WriteTimeout is the maximum duration for writing the response (default: 0, unlimited)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for import requests (default: 10m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"10m"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Migrate applies the embedded schema on startup (default: true)
	Migrate bool `env:"DB_MIGRATE" default:"true"`
}

// ImportConfig holds row import settings.
type ImportConfig struct {
	// ManageStock is used when the store has never set the manage_stock option (default: true)
	ManageStock bool `env:"IMPORT_MANAGE_STOCK_DEFAULT" default:"true"`

	// StockDecimals is the number of decimals kept on stock quantities (default: 0, whole units)
	StockDecimals int `env:"IMPORT_STOCK_DECIMALS" default:"0"`

	// UploadBaseURL is the public base URL of the media library
	UploadBaseURL string `env:"IMPORT_UPLOAD_BASE_URL"`

	// Timezone is the store timezone for sale dates without an offset (default: UTC)
	Timezone string `env:"IMPORT_TIMEZONE" default:"UTC"`

	// MaxBodySize is the maximum accepted NDJSON body in bytes (default: 100MB)
	MaxBodySize int64 `env:"IMPORT_MAX_BODY_SIZE" default:"104857600"`

	// MaxConcurrent is the maximum number of imports running at once (default: 4)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// MaxWait is how long an import waits for a free slot (default: 30s)
	MaxWait time.Duration `env:"IMPORT_MAX_WAIT" default:"30s"`
}

// MediaConfig holds image import settings. Images are not fetched when
// Bucket is empty.
type MediaConfig struct {
	// Bucket is the S3 bucket images are uploaded to
	Bucket string `env:"MEDIA_BUCKET"`

	// Region is the AWS region (default: us-east-1)
	Region string `env:"MEDIA_REGION" envAlt:"AWS_REGION" default:"us-east-1"`

	// Endpoint selects an S3-compatible service such as MinIO
	Endpoint string `env:"MEDIA_ENDPOINT"`

	// Prefix is prepended to every object key (default: uploads)
	Prefix string `env:"MEDIA_PREFIX" default:"uploads"`

	// MaxBytes is the maximum image size (default: 10MB)
	MaxBytes int64 `env:"MEDIA_MAX_BYTES" default:"10485760"`

	// FetchTimeout bounds a single image download (default: 30s)
	FetchTimeout time.Duration `env:"MEDIA_FETCH_TIMEOUT" default:"30s"`

	// FetchRate is the number of image downloads per second (default: 5)
	FetchRate float64 `env:"MEDIA_FETCH_RATE" default:"5"`

	// FetchBurst is the download burst size (default: 5)
	FetchBurst int `env:"MEDIA_FETCH_BURST" default:"5"`
}

// CacheConfig holds the Redis taxonomy cache settings.
type CacheConfig struct {
	// Enabled turns on the taxonomy cache (default: false)
	Enabled bool `env:"CACHE_ENABLED" default:"false"`

	// Addr is the Redis address (default: localhost:6379)
	Addr string `env:"REDIS_ADDR" default:"localhost:6379"`

	Password string `env:"REDIS_PASSWORD"`

	DB int `env:"REDIS_DB" default:"0"`

	// TTL is how long lookups are cached (default: 5m)
	TTL time.Duration `env:"CACHE_TTL" default:"5m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// File additionally writes logs to a rotated file when set
	File string `env:"LOG_FILE"`

	// MaxSizeMB is the size at which the log file is rotated (default: 100)
	MaxSizeMB int `env:"LOG_MAX_SIZE_MB" default:"100"`

	// MaxBackups is the number of rotated files kept (default: 5)
	MaxBackups int `env:"LOG_MAX_BACKUPS" default:"5"`

	// MaxAgeDays is how long rotated files are kept (default: 28)
	MaxAgeDays int `env:"LOG_MAX_AGE_DAYS" default:"28"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Location loads the configured store timezone.
func (c *ImportConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// StockAmount returns the stock coercion for the configured precision:
// truncation to whole units by default, rounding to StockDecimals places
// otherwise.
func (c *ImportConfig) StockAmount() func(float64) float64 {
	if c.StockDecimals <= 0 {
		return math.Trunc
	}
	scale := math.Pow10(c.StockDecimals)
	return func(v float64) float64 {
		return math.Round(v*scale) / scale
	}
}

// MediaEnabled reports whether remote images can be imported.
func (c *MediaConfig) MediaEnabled() bool {
	return c.Bucket != ""
}
