package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// Restaurant data (name, NIF, tax rate, invoice series) is not here: it lives
// in the application state and is edited through the settings endpoint.
type Config struct {
	// Server
	Port           int    `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"` // development | production
	WorkerPoolSize int    `mapstructure:"WORKER_POOL_SIZE"`
	CORSOrigins    string `mapstructure:"CORS_ORIGINS"` // comma-separated, production only

	// Local state snapshot (SQLite file)
	StateDBPath string `mapstructure:"STATE_DB_PATH"`

	// Redis job queue and menu cache. Empty disables async jobs.
	RedisURL     string        `mapstructure:"REDIS_URL"`
	MenuCacheTTL time.Duration `mapstructure:"MENU_CACHE_TTL"`

	// Cloud mirror (PostgreSQL). Empty disables sync.
	CloudDatabaseURL string        `mapstructure:"CLOUD_DATABASE_URL"`
	SyncInterval     time.Duration `mapstructure:"SYNC_INTERVAL"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`
	OwnerPIN           string `mapstructure:"OWNER_PIN"`

	// Invoicing
	InvoicePrefix string `mapstructure:"INVOICE_PREFIX"`
	// Timezone decides which calendar day an order belongs to.
	Timezone string `mapstructure:"TIMEZONE"`

	// SMTP
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

	// Documents
	DocumentStoragePath string        `mapstructure:"DOCUMENT_STORAGE_PATH"`
	NotificationTTL     time.Duration `mapstructure:"NOTIFICATION_TTL"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	for key, val := range Defaults() {
		v.SetDefault(key, val)
	}

	// Optional .env file for local development; a missing file is fine
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resolves Timezone. An empty value means UTC.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: TIMEZONE: %w", err)
	}
	return loc, nil
}

// Defaults lists every key with its development default. AutomaticEnv only
// resolves keys viper already knows about, so every field needs an entry.
func Defaults() map[string]any {
	return map[string]any{
		"PORT":                  8000,
		"APP_ENV":               "development",
		"WORKER_POOL_SIZE":      3,
		"CORS_ORIGINS":          "",
		"STATE_DB_PATH":         "./data/vereda.db",
		"REDIS_URL":             "",
		"MENU_CACHE_TTL":        10 * time.Minute,
		"CLOUD_DATABASE_URL":    "",
		"SYNC_INTERVAL":         15 * time.Minute,
		"JWT_SECRET":            "dev-secret-change-me",
		"JWT_EXPIRATION_HOURS":  12,
		"OWNER_PIN":             "0000",
		"INVOICE_PREFIX":        "FR VER",
		"TIMEZONE":              "Africa/Luanda",
		"SMTP_HOST":             "",
		"SMTP_PORT":             587,
		"SMTP_USER":             "",
		"SMTP_PASSWORD":         "",
		"DOCUMENT_STORAGE_PATH": "/tmp/vereda/docs",
		"NOTIFICATION_TTL":      3 * time.Second,
	}
}
