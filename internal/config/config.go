// Package config loads application configuration. Values start from
// development defaults, are overlaid by an optional YAML file and finally by
// environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileEnv names the environment variable holding the YAML config path.
const FileEnv = "STANDPRESS_CONFIG"

const defaultFile = "standpress.yaml"

// Config holds all application configuration values. YAML keys and
// environment variable names match: app_port in the file, APP_PORT in the
// environment.
type Config struct {
	// Server settings
	Host string `koanf:"app_host" yaml:"app_host"`
	Port string `koanf:"app_port" yaml:"app_port"`
	Env  string `koanf:"app_env" yaml:"app_env"` // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string `koanf:"postgres_host" yaml:"postgres_host"`
	DBPort     string `koanf:"postgres_port" yaml:"postgres_port"`
	DBUser     string `koanf:"postgres_user" yaml:"postgres_user"`
	DBPassword string `koanf:"postgres_password" yaml:"postgres_password"`
	DBName     string `koanf:"postgres_db" yaml:"postgres_db"`

	// Valkey (Redis-compatible cache)
	ValkeyHost     string `koanf:"valkey_host" yaml:"valkey_host"`
	ValkeyPort     string `koanf:"valkey_port" yaml:"valkey_port"`
	ValkeyPassword string `koanf:"valkey_password" yaml:"valkey_password"`
	ValkeyDB       int    `koanf:"valkey_db" yaml:"valkey_db"`

	// S3-compatible object storage. Storage is disabled when the endpoint
	// is empty.
	S3Endpoint  string `koanf:"s3_endpoint" yaml:"s3_endpoint"`
	S3Region    string `koanf:"s3_region" yaml:"s3_region"`
	S3AccessKey string `koanf:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey string `koanf:"s3_secret_key" yaml:"s3_secret_key"`
	S3Bucket    string `koanf:"s3_bucket" yaml:"s3_bucket"`
	S3PublicURL string `koanf:"s3_public_url" yaml:"s3_public_url"`

	// Logging
	LogLevel  string `koanf:"log_level" yaml:"log_level"`   // debug, info, warn, error
	LogFormat string `koanf:"log_format" yaml:"log_format"` // text, json; empty picks by environment
	LogFile   string `koanf:"log_file" yaml:"log_file"`     // optional rotating file

	// Editor
	CORSOrigins   string `koanf:"cors_origins" yaml:"cors_origins"` // comma separated
	DefaultLocale string `koanf:"default_locale" yaml:"default_locale"`
	PDFFont       string `koanf:"pdf_font" yaml:"pdf_font"` // TTF used for PDF text; core fonts when empty
	PDFImageHosts string `koanf:"pdf_image_hosts" yaml:"pdf_image_hosts"` // comma separated https hosts the exporter may fetch from

	DraftTTLMinutes  int `koanf:"draft_ttl_minutes" yaml:"draft_ttl_minutes"`
	RenderTTLMinutes int `koanf:"render_ttl_minutes" yaml:"render_ttl_minutes"`

	// Upload rate limit per client IP
	UploadRateLimit  int `koanf:"upload_rate_limit" yaml:"upload_rate_limit"`
	UploadRateWindow int `koanf:"upload_rate_window" yaml:"upload_rate_window"` // seconds
}

// Defaults returns the development configuration.
func Defaults() *Config {
	return &Config{
		Host: "0.0.0.0",
		Port: "8080",
		Env:  "development",

		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "standpress",
		DBPassword: "changeme",
		DBName:     "standpress",

		ValkeyHost: "localhost",
		ValkeyPort: "6379",

		S3Region: "us-east-1",
		S3Bucket: "standpress",

		LogLevel: "info",

		CORSOrigins:   "http://localhost:5173",
		DefaultLocale: "tr",

		DraftTTLMinutes:  24 * 60,
		RenderTTLMinutes: 60,

		UploadRateLimit:  30,
		UploadRateWindow: 60,
	}
}

// knownKeys are the configuration keys accepted from the environment.
var knownKeys = func() map[string]bool {
	keys := map[string]bool{}
	for _, key := range []string{
		"app_host", "app_port", "app_env",
		"postgres_host", "postgres_port", "postgres_user", "postgres_password", "postgres_db",
		"valkey_host", "valkey_port", "valkey_password", "valkey_db",
		"s3_endpoint", "s3_region", "s3_access_key", "s3_secret_key", "s3_bucket", "s3_public_url",
		"log_level", "log_format", "log_file",
		"cors_origins", "default_locale", "pdf_font", "pdf_image_hosts",
		"draft_ttl_minutes", "render_ttl_minutes",
		"upload_rate_limit", "upload_rate_window",
	} {
		keys[key] = true
	}
	return keys
}()

// Load builds the configuration from defaults, the YAML file named by
// STANDPRESS_CONFIG (standpress.yaml when unset) and the environment.
// Returns an error if critical values are missing in production mode.
func Load() (*Config, error) {
	path := os.Getenv(FileEnv)
	if path == "" {
		path = defaultFile
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit YAML path. A missing file is not an
// error.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Empty variables count as unset so that APP_PORT= keeps the default.
	if err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		key = strings.ToLower(key)
		if !knownKeys[key] || value == "" {
			return "", nil
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if c.Env == "production" && c.DBPassword == "changeme" {
		return fmt.Errorf("POSTGRES_PASSWORD must be set in production")
	}
	if c.ValkeyDB < 0 {
		return fmt.Errorf("valkey_db must be non-negative")
	}
	if c.DraftTTLMinutes <= 0 || c.RenderTTLMinutes <= 0 {
		return fmt.Errorf("draft and render TTLs must be positive")
	}
	if c.UploadRateLimit < 0 || c.UploadRateWindow <= 0 {
		return fmt.Errorf("upload rate limit must be non-negative with a positive window")
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: must be text or json", c.LogFormat)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// AllowedOrigins splits CORSOrigins into its entries.
func (c *Config) AllowedOrigins() []string {
	return splitList(c.CORSOrigins)
}

// ImageHosts splits PDFImageHosts into its entries. Images hosted elsewhere
// are only exported when they are inline or live in the S3 bucket.
func (c *Config) ImageHosts() []string {
	return splitList(c.PDFImageHosts)
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// StorageEnabled reports whether S3 storage is configured.
func (c *Config) StorageEnabled() bool {
	return c.S3Endpoint != ""
}
