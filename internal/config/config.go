package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

// Config represents the console configuration
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	API           APIConfig           `mapstructure:"api"`
	Display       DisplayConfig       `mapstructure:"display"`
	Listing       ListingConfig       `mapstructure:"listing"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// ServerConfig contains console HTTP server configurations
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	SessionCookie  string   `mapstructure:"session_cookie"`
}

// DatabaseConfig contains the local store configuration. Drafts and
// sessions live here; everything else is owned by the backend.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Path     string `mapstructure:"path"`
}

// APIConfig describes the backend REST API
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DisplayConfig controls how timestamps are rendered
type DisplayConfig struct {
	Locale   string `mapstructure:"locale"`
	TimeZone string `mapstructure:"timezone"`
}

// ListingConfig contains list page defaults
type ListingConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// NotificationsConfig contains banner settings
type NotificationsConfig struct {
	ClearAfter time.Duration `mapstructure:"clear_after"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.port":               "SERVER_PORT",
	"server.allowed_origins":    "CORS_ORIGINS",
	"server.session_cookie":     "SESSION_COOKIE",
	"database.driver":           "DB_DRIVER",
	"database.host":             "DB_HOST",
	"database.port":             "DB_PORT",
	"database.user":             "DB_USER",
	"database.password":         "DB_PASSWORD",
	"database.name":             "DB_NAME",
	"database.path":             "DB_PATH",
	"api.base_url":              "API_BASE_URL",
	"api.timeout":               "API_TIMEOUT",
	"display.locale":            "DISPLAY_LOCALE",
	"display.timezone":          "DISPLAY_TIMEZONE",
	"listing.page_size":         "PAGE_SIZE",
	"notifications.clear_after": "BANNER_CLEAR_AFTER",
	"logging.level":             "LOG_LEVEL",
	"logging.format":            "LOG_FORMAT",
}

// Default returns the configuration used when nothing else is provided
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          8081,
			SessionCookie: "satonic_admin_session",
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			Host:   "localhost",
			Port:   5432,
			Name:   "satonic_admin",
			Path:   "satonic-admin.db",
		},
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 30 * time.Second,
		},
		Display: DisplayConfig{
			Locale:   "en_US",
			TimeZone: "UTC",
		},
		Listing: ListingConfig{
			PageSize: 20,
		},
		Notifications: NotificationsConfig{
			ClearAfter: 2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads the configuration from file and environment
func Load() (*Config, error) {
	// Look for config file
	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = filepath.Join("configs", "config.json")
	}

	return LoadFile(configFile)
}

// LoadFile loads the configuration from the given file, if it exists, and
// applies environment overrides on top.
func LoadFile(configFile string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// Try to load config from file
	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			v.SetConfigFile(configFile)
			v.SetConfigType(configType(configFile))
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}

// Validate checks the configuration for values the console cannot run with
func (c *Config) Validate() error {
	return validation.Errors{
		"server":   c.Server.Validate(),
		"database": c.Database.Validate(),
		"api":      c.API.Validate(),
		"display": validation.ValidateStruct(&c.Display,
			validation.Field(&c.Display.Locale, validation.Required),
		),
		"listing": validation.ValidateStruct(&c.Listing,
			validation.Field(&c.Listing.PageSize, validation.Required, validation.Min(1), validation.Max(500)),
		),
	}.Filter()
}

// Validate checks the server settings
func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&s.SessionCookie, validation.Required),
	)
}

// Validate checks the local store settings
func (d DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Driver, validation.Required, validation.In("postgres", "sqlite3")),
		validation.Field(&d.Path, validation.When(d.Driver == "sqlite3", validation.Required)),
		validation.Field(&d.Host, validation.When(d.Driver == "postgres", validation.Required)),
		validation.Field(&d.Name, validation.When(d.Driver == "postgres", validation.Required)),
	)
}

// Validate checks the backend API settings
func (a APIConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.BaseURL, validation.Required),
		validation.Field(&a.Timeout, validation.Min(time.Duration(0))),
	)
}

// Location resolves the configured display time zone, falling back to UTC
func (d DisplayConfig) Location() *time.Location {
	if d.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(d.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
