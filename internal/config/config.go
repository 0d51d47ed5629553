package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Telegram TelegramConfig
	Slack    SlackConfig
	Admin    AdminConfig
	Region   RegionConfig
	Maps     MapsConfig
	Expiry   ExpiryConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// TelegramConfig holds the bot token and the drivers group chat where new
// ride requests are posted. Either may be empty; the bot then no-ops.
type TelegramConfig struct {
	BotToken        string
	OpsChatID       int64
	RequireVerified bool
}

// SlackConfig holds the team webhook for operational visibility. Optional.
type SlackConfig struct {
	WebhookURL string
}

// AdminConfig holds the shared secret for the admin surface. An empty key
// disables the admin endpoints entirely.
type AdminConfig struct {
	Key string
}

// RegionConfig holds the service area and fare schedule.
type RegionConfig struct {
	Name               string
	CenterLat          float64
	CenterLng          float64
	ServiceRadiusMiles float64
	MaxTripMiles       float64
	ToleranceMiles     float64
	BaseFare           float64
	PerMileRate        float64
}

// MapsConfig holds the Google Maps API key for address suggestions.
type MapsConfig struct {
	APIKey string
}

// ExpiryConfig controls the optional pending-ride expiry sweep. A zero
// window disables the sweep.
type ExpiryConfig struct {
	PendingWindow time.Duration
	SweepInterval time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "dispatch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "dispatch-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Telegram: TelegramConfig{
			BotToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
			OpsChatID:       getInt64Env("TELEGRAM_OPS_CHAT_ID", 0),
			RequireVerified: getBoolEnv("TELEGRAM_REQUIRE_VERIFIED_DRIVERS", false),
		},
		Slack: SlackConfig{
			WebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		},
		Admin: AdminConfig{
			Key: getEnv("ADMIN_DASHBOARD_KEY", ""),
		},
		Region: RegionConfig{
			Name:               getEnv("REGION_NAME", "Long Beach"),
			CenterLat:          getFloatEnv("REGION_CENTER_LAT", 33.7701),
			CenterLng:          getFloatEnv("REGION_CENTER_LNG", -118.1937),
			ServiceRadiusMiles: getFloatEnv("SERVICE_RADIUS_MILES", 12),
			MaxTripMiles:       getFloatEnv("MAX_TRIP_MILES", 25),
			ToleranceMiles:     getFloatEnv("DISTANCE_TOLERANCE_MILES", 2),
			BaseFare:           getFloatEnv("BASE_FARE_USD", 6),
			PerMileRate:        getFloatEnv("PER_MILE_FARE_USD", 2.5),
		},
		Maps: MapsConfig{
			APIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		},
		Expiry: ExpiryConfig{
			PendingWindow: getDurationEnv("PENDING_EXPIRY_WINDOW", 0),
			SweepInterval: getDurationEnv("PENDING_EXPIRY_SWEEP_INTERVAL", time.Minute),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
