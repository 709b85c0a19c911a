package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures top-level service configuration.
type Server struct {
	Addr          string
	Environment   string
	JWTSigningKey string
	Issuer        string
	Audience      string

	// TokenTTL bounds the stateless validity of issued access tokens.
	TokenTTL time.Duration
	// RefreshGrace is how long past expiry a token is still accepted by the
	// refresh endpoint. Beyond it the caller must log in again.
	RefreshGrace time.Duration
	// SessionCacheTTL bounds how long cached admin snapshots live.
	SessionCacheTTL time.Duration

	CleanupInterval time.Duration

	// MaintenanceToken guards destructive maintenance endpoints. Empty
	// disables them.
	MaintenanceToken string

	DatabaseURL string
	Redis       RedisConfig
	Lockout     LockoutConfig
}

// RedisConfig holds Redis client configuration.
// An empty URL means Redis is not configured and in-memory stores are used.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LockoutConfig controls failed-login lockout behavior.
type LockoutConfig struct {
	MaxFailures  int
	Window       time.Duration
	LockDuration time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:            envOr("OPSGATE_ADDR", ":8080"),
		Environment:     envOr("OPSGATE_ENV", "development"),
		JWTSigningKey:   envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Issuer:          envOr("JWT_ISSUER", "opsgate"),
		Audience:        envOr("JWT_AUDIENCE", "opsgate-admin"),
		TokenTTL:        durationOr("TOKEN_TTL", 30*time.Minute),
		RefreshGrace:    durationOr("TOKEN_REFRESH_GRACE", 10*time.Minute),
		SessionCacheTTL: durationOr("SESSION_CACHE_TTL", 12*time.Hour),
		CleanupInterval: durationOr("CLEANUP_INTERVAL", 5*time.Minute),

		MaintenanceToken: os.Getenv("MAINTENANCE_TOKEN"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: intOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Lockout: LockoutConfig{
			MaxFailures:  intOr("LOCKOUT_MAX_FAILURES", 5),
			Window:       durationOr("LOCKOUT_WINDOW", 15*time.Minute),
			LockDuration: durationOr("LOCKOUT_DURATION", 15*time.Minute),
		},
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
