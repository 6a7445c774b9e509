// Package config loads the service configuration from the environment. A
// local .env file is honored in development; in deployed environments the
// variables come from the runtime.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/tripflow/tripflow-api/internal/types"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Providers ProviderConfig
	Cache     CacheConfig
	LogLevel  string
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// ProviderConfig holds credentials for the external travel data providers.
// Empty values disable the corresponding endpoint with a configuration error
// instead of failing at startup, so a partial deployment still serves the
// rest of the API.
type ProviderConfig struct {
	OpenWeatherKey     string
	AmadeusKey         string
	AmadeusSecret      string
	TicketmasterKey    string
	GooglePlacesKey    string
	IPInfoToken        string
	DefaultOriginCity  string
}

// CacheConfig sizes the shared result cache.
type CacheConfig struct {
	MaxEntries int
	TTL        time.Duration
}

// Load reads the configuration. A .env file in the working directory is
// merged in first when present.
func Load() (*Config, error) {
	// Missing .env is fine outside development.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:        getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:       getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout:    getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RateLimitPerSecond: getEnvInt("SERVER_RATE_LIMIT_PER_SECOND", 50),
			RateLimitBurst:     getEnvInt("SERVER_RATE_LIMIT_BURST", 100),
			AllowedOrigins:     []string{getEnvOrDefault("SERVER_ALLOWED_ORIGIN", "http://localhost:3000")},
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnvOrDefault("DB_NAME", "tripflow"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
		},
		Providers: ProviderConfig{
			OpenWeatherKey:    os.Getenv("OPENWEATHER_API_KEY"),
			AmadeusKey:        os.Getenv("AMADEUS_API_KEY"),
			AmadeusSecret:     os.Getenv("AMADEUS_API_SECRET"),
			TicketmasterKey:   os.Getenv("TICKETMASTER_API_KEY"),
			GooglePlacesKey:   os.Getenv("GOOGLE_PLACES_API_KEY"),
			IPInfoToken:       os.Getenv("IPINFO_TOKEN"),
			DefaultOriginCity: getEnvOrDefault("DEFAULT_ORIGIN_CITY", "Jakarta"),
		},
		Cache: CacheConfig{
			MaxEntries: getEnvInt("CACHE_MAX_ENTRIES", 200),
			TTL:        getEnvDuration("CACHE_TTL", 10*time.Minute),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: SERVER_PORT must be between 1 and 65535, got %d", types.ErrConfiguration, c.Server.Port)
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		return fmt.Errorf("%w: DB_HOST and DB_NAME are required", types.ErrConfiguration)
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("%w: CACHE_MAX_ENTRIES must be positive, got %d", types.ErrConfiguration, c.Cache.MaxEntries)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("%w: CACHE_TTL must be positive, got %v", types.ErrConfiguration, c.Cache.TTL)
	}
	return nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
