package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Auth     AuthServiceConfig
	Relay    RelayConfig
	Security SecurityConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds dashboard session token configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// AuthServiceConfig points at the hosted auth service that owns accounts
// and sessions. ServiceKey is the admin-scoped key required for secret
// rotation; Timeout bounds every round trip.
type AuthServiceConfig struct {
	BaseURL    string
	APIKey     string
	ServiceKey string
	Timeout    time.Duration
}

// RelayConfig holds the Farcaster Connect relay settings
type RelayConfig struct {
	BaseURL      string
	AppDomain    string
	PollInterval time.Duration
	PollTimeout  time.Duration
	ChannelTTL   time.Duration
}

// SecurityConfig holds encryption keys
type SecurityConfig struct {
	SignerTokenKey string
	ChallengeTTL   time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "castdeck"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Auth: AuthServiceConfig{
			BaseURL:    getEnv("AUTH_SERVICE_URL", "http://localhost:9999"),
			APIKey:     getEnv("AUTH_SERVICE_API_KEY", ""),
			ServiceKey: getEnv("AUTH_SERVICE_SERVICE_KEY", ""),
			Timeout:    getEnvAsDuration("AUTH_SERVICE_TIMEOUT", 10*time.Second),
		},
		Relay: RelayConfig{
			BaseURL:      getEnv("RELAY_URL", "https://relay.farcaster.xyz"),
			AppDomain:    getEnv("RELAY_APP_DOMAIN", "castdeck.app"),
			PollInterval: getEnvAsDuration("RELAY_POLL_INTERVAL", 2*time.Second),
			PollTimeout:  getEnvAsDuration("RELAY_POLL_TIMEOUT", 10*time.Second),
			ChannelTTL:   getEnvAsDuration("RELAY_CHANNEL_TTL", 10*time.Minute),
		},
		Security: SecurityConfig{
			SignerTokenKey: getEnv("SIGNER_TOKEN_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
			ChallengeTTL:   getEnvAsDuration("CHALLENGE_TTL", 5*time.Minute),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
