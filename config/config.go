package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// Model artifacts
	ModelDir string

	// Sessions
	Sessions SessionConfig

	// Weather lookup
	Weather WeatherConfig

	// Message archive (optional)
	Database DatabaseConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Security
	AllowedOrigins []string
}

type SessionConfig struct {
	// TTL of 0 disables eviction entirely.
	TTL           time.Duration
	SweepInterval time.Duration
}

type WeatherConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type DatabaseConfig struct {
	URI  string
	Name string

	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
}

var cfg *Config

// Load initializes the configuration
func Load() error {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg = &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		ModelDir: getEnv("MODEL_DIR", "./modeldata"),

		Sessions: SessionConfig{
			TTL:           getEnvAsDuration("SESSION_TTL", "30m"),
			SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", "1m"),
		},

		Weather: WeatherConfig{
			APIKey:  getEnv("OPENWEATHER_API_KEY", ""),
			BaseURL: getEnv("OPENWEATHER_BASE_URL", "http://api.openweathermap.org/data/2.5/weather"),
			Timeout: getEnvAsDuration("WEATHER_TIMEOUT", "10s"),
		},

		Database: DatabaseConfig{
			URI:  getEnv("DATABASE_URL", ""),
			Name: getEnv("DB_NAME", "afira_chatbot"),

			MaxConnections: getEnvAsInt("DB_MAX_CONNECTIONS", 100),
			MinConnections: getEnvAsInt("DB_MIN_CONNECTIONS", 10),
			MaxIdleTime:    getEnvAsDuration("DB_MAX_IDLE_TIME", "30m"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}

	// Validate configuration
	if err := validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	return nil
}

// Get returns the loaded configuration
func Get() *Config {
	if cfg == nil {
		log.Fatal("Configuration not loaded. Call Load() first")
	}
	return cfg
}

// ArchiveEnabled reports whether the mongo message archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.Database.URI != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	// Simple comma-separated parsing
	return strings.Split(value, ",")
}

func validate() error {
	if cfg.ModelDir == "" {
		return fmt.Errorf("MODEL_DIR must be provided")
	}

	if cfg.Sessions.TTL > 0 && cfg.Sessions.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive when SESSION_TTL is set")
	}

	if cfg.Weather.APIKey == "" {
		log.Println("OPENWEATHER_API_KEY not set, weather lookups will report cities as not found")
	}

	return nil
}
