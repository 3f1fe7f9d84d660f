package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer         string // Issuer claim for tokens (default: openclass-identity)
	JWTSecret      []byte // Required: shared HMAC secret, from JWT_SECRET or JWT_SECRET_FILE
	BootstrapToken string // Optional: token required to perform bootstrap

	AccessTokenTTL  time.Duration // Optional: access token lifetime (default: 1h)
	RefreshTokenTTL time.Duration // Optional: refresh token lifetime (default: 168h)

	DatabaseFile string // Optional: path to SQLite database file (default: ./identity.db)
	RedisURL     string // Optional: if set, revocations live in redis instead of sqlite
	PepperFile   string // Optional: path to pepper file for password hashing (default: ./pepper)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Revocation sweep interval (default: 1h)
}

// LoadConfig reads configuration from the environment, layering a local .env
// file underneath when one exists (development convenience, never required).
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Issuer:               getEnvOrDefault("IDENTITY_ISSUER", "openclass-identity"),
		BootstrapToken:       os.Getenv("BOOTSTRAP_TOKEN"),
		AccessTokenTTL:       getEnvDurationOrDefault("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:      getEnvDurationOrDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		DatabaseFile:         getEnvOrDefault("IDENTITY_DATABASE_FILE", "identity.db"),
		RedisURL:             os.Getenv("IDENTITY_REDIS_URL"),
		PepperFile:           getEnvOrDefault("IDENTITY_PEPPER_FILE", "pepper"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	secret, err := loadSecret()
	if err != nil {
		return Config{}, err
	}
	cfg.JWTSecret = secret

	return cfg, nil
}

// loadSecret reads the shared signing secret from JWT_SECRET, or from the
// file named by JWT_SECRET_FILE (the usual shape for docker/k8s secrets).
// The service refuses to start without one; a generated fallback would mint
// tokens no other service could verify.
func loadSecret() ([]byte, error) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		return []byte(v), nil
	}
	if path := os.Getenv("JWT_SECRET_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		secret := []byte(strings.TrimSpace(string(raw)))
		if len(secret) == 0 {
			return nil, errors.New("app: JWT_SECRET_FILE is empty")
		}
		return secret, nil
	}
	return nil, errors.New("app: JWT_SECRET or JWT_SECRET_FILE must be set")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
