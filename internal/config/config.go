package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB      DBConfig
	Server  ServerConfig
	Weather WeatherConfig
}

// DBType represents database type
type DBType string

const (
	DBTypeSQLite     DBType = "sqlite"
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// WeatherConfig holds settings for the upstream weather API
type WeatherConfig struct {
	BaseURL        string
	Timeout        time.Duration
	DefaultUnits   string
	DefaultCountry string
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	switch c.Type {
	case DBTypeMemory:
		if c.Name != "" && c.Name != "weather" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	case DBTypePostgreSQL:
		return fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
		)
	default:
		// busy_timeout lets concurrent writers wait on the file lock
		return fmt.Sprintf("file:%s?_busy_timeout=5000", c.Path)
	}
}

// IsSQLite returns true for both file-backed and in-memory SQLite
func (c DBConfig) IsSQLite() bool {
	return c.Type != DBTypePostgreSQL
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", string(DBTypeSQLite)))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory && dbType != DBTypeSQLite {
		dbType = DBTypeSQLite
	}

	timeout, err := getEnvAsDuration("WEATHER_API_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}

	config := &Config{
		DB: DBConfig{
			Type:     dbType,
			Path:     getEnv("DB_PATH", "weather_data.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "weather"),
			Password: getEnv("DB_PASSWORD", "weather_password"),
			Name:     getEnv("DB_NAME", "weather"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
		},
		Weather: WeatherConfig{
			BaseURL:        getEnv("WEATHER_API_URL", "https://weather.talkpython.fm/api/weather"),
			Timeout:        timeout,
			DefaultUnits:   getEnv("WEATHER_DEFAULT_UNITS", "metric"),
			DefaultCountry: getEnv("WEATHER_DEFAULT_COUNTRY", "US"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// A bare integer is read as seconds
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if seconds := getEnvAsInt(key, -1); seconds >= 0 {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
