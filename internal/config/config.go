// Package config loads the server configuration from environment variables
// with defaults and validates it on startup.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Load     LoadConfig
	Parser   ParserConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout also bounds the wait for in-flight loads (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for API requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds the optional export database settings.
// Exports are disabled when URL is empty.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// ExportSchema is the default schema for exported tables
	ExportSchema string `env:"EXPORT_SCHEMA"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// LoadConfig holds file loading limits.
type LoadConfig struct {
	// DataDir is the directory every load path is resolved in (default: ./data)
	DataDir string `env:"DATA_DIR" default:"data"`

	// MaxFileSize is the maximum file size in bytes (default: 1GiB)
	MaxFileSize int64 `env:"LOAD_MAX_FILE_SIZE" default:"1073741824"`

	MaxConcurrent int           `env:"LOAD_MAX_CONCURRENT" default:"4"`
	MaxWaitTime   time.Duration `env:"LOAD_MAX_WAIT_TIME" default:"30s"`
	Timeout       time.Duration `env:"LOAD_TIMEOUT" default:"10m"`

	// PreviewRows is the number of data rows on the HTML preview (default: 50)
	PreviewRows int `env:"PREVIEW_ROWS" default:"50"`
}

// ParserConfig holds the parser settings used when a load request leaves
// them empty.
type ParserConfig struct {
	Separator string `env:"CSV_SEPARATOR" default:","`
	Escape    string `env:"CSV_ESCAPE"`

	// Strip is a comma-separated list of characters to drop
	Strip []string `env:"CSV_STRIP"`

	// Replace is a comma-separated list of from=to pairs
	Replace map[string]string `env:"CSV_REPLACE"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables X-API-Key checks on the API (default: false)
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
