package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Auth      AuthConfig
	Sensor    SensorConfig
	Inventory InventoryConfig
	Redis     RedisConfig
	Alerts    AlertsConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port         string
	AllowOrigins []string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AuthConfig holds JWT and password-reset options.
type AuthConfig struct {
	JWTSecret string
	AccessTTL time.Duration
	ResetTTL  time.Duration
}

// SensorConfig covers the rig ingest path.
type SensorConfig struct {
	DeviceKey    string
	OfflineAfter time.Duration
}

// InventoryConfig bounds the ledger aggregation window.
type InventoryConfig struct {
	WindowSize int
}

// RedisConfig enables cross-instance event fan-out when Addr is set.
type RedisConfig struct {
	Addr    string
	Channel string
}

// AlertsConfig points threshold alerts at an operator webhook.
type AlertsConfig struct {
	WebhookURL string
}

// SheetsConfig contains configuration for the optional Google Sheets report
// export. Both credential fields empty disables the export.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	ReportRange     string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	accessTTL, err := getenvDuration("AUTH_ACCESS_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	resetTTL, err := getenvDuration("AUTH_RESET_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	offlineAfter, err := getenvDuration("SENSOR_OFFLINE_AFTER", 90*time.Second)
	if err != nil {
		return nil, err
	}
	windowSize, err := getenvInt("INVENTORY_WINDOW_SIZE", 50)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getenvWithDefault("APP_PORT", "8080"),
			AllowOrigins: []string{getenvWithDefault("CORS_ALLOW_ORIGIN", "*")},
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "ecovolt"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			AccessTTL: accessTTL,
			ResetTTL:  resetTTL,
		},
		Sensor: SensorConfig{
			DeviceKey:    os.Getenv("SENSOR_DEVICE_KEY"),
			OfflineAfter: offlineAfter,
		},
		Inventory: InventoryConfig{
			WindowSize: windowSize,
		},
		Redis: RedisConfig{
			Addr:    os.Getenv("REDIS_ADDR"),
			Channel: getenvWithDefault("REDIS_CHANNEL", "ecovolt.events"),
		},
		Alerts: AlertsConfig{
			WebhookURL: os.Getenv("ALERT_WEBHOOK_URL"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_REPORT_ID"),
			ReportRange:     getenvWithDefault("GOOGLE_SHEET_REPORT_RANGE", "DailyReports!A:H"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 0 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Manila"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}
	if c.Auth.AccessTTL <= 0 {
		return errors.New("AUTH_ACCESS_TTL must be positive")
	}
	if c.Auth.ResetTTL <= 0 {
		return errors.New("AUTH_RESET_TTL must be positive")
	}

	if c.Sensor.DeviceKey == "" {
		return errors.New("SENSOR_DEVICE_KEY must be provided")
	}
	if c.Sensor.OfflineAfter <= 0 {
		return errors.New("SENSOR_OFFLINE_AFTER must be positive")
	}

	if c.Inventory.WindowSize <= 0 {
		return errors.New("INVENTORY_WINDOW_SIZE must be positive")
	}

	// Sheets export is optional, but partial configuration is a mistake.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_REPORT_ID must be set together")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}
	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

// SheetsEnabled reports whether the Google Sheets export is configured.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

func getenvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return n, nil
}
