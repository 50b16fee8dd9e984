package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Orders   OrdersConfig
	Scanner  ScannerConfig
	Notify   NotifyConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
	AutoMigrate     bool
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey      string
	AdminAPIKey string
}

// OrdersConfig holds order lifecycle settings.
type OrdersConfig struct {
	EditWindow time.Duration
	BaseURL    string // storefront URL used for deep links in emails
}

// ScannerConfig controls the deadline warning scanner.
type ScannerConfig struct {
	// Interval between in-process scans. Zero leaves scheduling to an external trigger.
	Interval    time.Duration
	Concurrency int
}

// NotifyConfig selects and configures the notification transport.
type NotifyConfig struct {
	Driver      string // "log" or "ses"
	SESRegion   string
	FromAddress string
}

// Load loads configuration from environment variables, optionally layered
// over a config file named by CONFIG_FILE.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Database:        v.GetString("DB_NAME"),
			MaxConnections:  v.GetInt("DB_MAX_CONNECTIONS"),
			MinConnections:  v.GetInt("DB_MIN_CONNECTIONS"),
			MaxConnLifetime: v.GetInt("DB_MAX_CONN_LIFETIME"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Auth: AuthConfig{
			APIKey:      v.GetString("API_KEY"),
			AdminAPIKey: v.GetString("ADMIN_API_KEY"),
		},
		Orders: OrdersConfig{
			EditWindow: v.GetDuration("ORDER_EDIT_WINDOW"),
			BaseURL:    v.GetString("APP_BASE_URL"),
		},
		Scanner: ScannerConfig{
			Interval:    v.GetDuration("SCANNER_INTERVAL"),
			Concurrency: v.GetInt("SCANNER_CONCURRENCY"),
		},
		Notify: NotifyConfig{
			Driver:      v.GetString("NOTIFY_DRIVER"),
			SESRegion:   v.GetString("SES_REGION"),
			FromAddress: v.GetString("SES_FROM_ADDRESS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "storefront")
	v.SetDefault("DB_MAX_CONNECTIONS", 25)
	v.SetDefault("DB_MIN_CONNECTIONS", 5)
	v.SetDefault("DB_MAX_CONN_LIFETIME", 300)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("API_KEY", "")
	v.SetDefault("ADMIN_API_KEY", "")
	v.SetDefault("ORDER_EDIT_WINDOW", 30*time.Minute)
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")
	v.SetDefault("SCANNER_INTERVAL", 0)
	v.SetDefault("SCANNER_CONCURRENCY", 4)
	v.SetDefault("NOTIFY_DRIVER", "log")
	v.SetDefault("SES_REGION", "us-east-1")
	v.SetDefault("SES_FROM_ADDRESS", "")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	if c.Auth.AdminAPIKey == "" {
		return fmt.Errorf("admin API key is required")
	}

	if c.Auth.AdminAPIKey == c.Auth.APIKey {
		return fmt.Errorf("admin API key must differ from the storefront API key")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Orders.EditWindow <= 0 {
		return fmt.Errorf("order edit window must be positive")
	}

	if u, err := url.Parse(c.Orders.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid app base URL: %q", c.Orders.BaseURL)
	}

	if c.Scanner.Interval < 0 {
		return fmt.Errorf("scanner interval cannot be negative")
	}

	if c.Scanner.Concurrency < 1 {
		return fmt.Errorf("scanner concurrency must be at least 1")
	}

	switch c.Notify.Driver {
	case "log":
	case "ses":
		if c.Notify.SESRegion == "" {
			return fmt.Errorf("SES region is required when the ses notify driver is used")
		}
		if c.Notify.FromAddress == "" {
			return fmt.Errorf("SES from address is required when the ses notify driver is used")
		}
	default:
		return fmt.Errorf("invalid notify driver: %s (must be log or ses)", c.Notify.Driver)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
