package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultJWTSecret is the development fallback. Production deployments MUST set
// JWT_SECRET_KEY; main logs a warning whenever this value is still active.
const DefaultJWTSecret = "omnibot_secret_key_change_in_production"

type Config struct {
	Env  string
	Port int

	// auth
	JWTSecret   string
	TokenTTL    time.Duration
	UsersFile   string
	StrictStore bool // refuse to start on an unreadable users file instead of degrading to an empty store
	CORSOrigins []string

	// upstream providers
	UpstreamTimeout time.Duration
	AlpacaKey       string
	AlpacaSecret    string
	OpenCageKey     string
	OpenWeatherKey  string
	StabilityKey    string
	GeminiKey       string

	// optional shared response cache
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	// tracing
	OTLPEndpoint string
}

func Load() Config {
	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 8080)

	return Config{
		Env:  env,
		Port: port,

		JWTSecret:   getEnv("JWT_SECRET_KEY", DefaultJWTSecret),
		TokenTTL:    time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 1440)) * time.Minute,
		UsersFile:   getEnv("USERS_FILE", "data/users.json"),
		StrictStore: getEnvBool("USERS_FILE_STRICT", false),
		CORSOrigins: []string{getEnv("CORS_ORIGIN", "*")},

		UpstreamTimeout: time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 10)) * time.Second,
		AlpacaKey:       getEnv("ALPACA_API_KEY", ""),
		AlpacaSecret:    getEnv("ALPACA_API_SECRET", ""),
		OpenCageKey:     getEnv("OPENCAGE_API_KEY", ""),
		OpenWeatherKey:  getEnv("OPENWEATHER_API_KEY", ""),
		StabilityKey:    getEnv("STABILITY_API_KEY", ""),
		GeminiKey:       getEnv("GEMINI_API_KEY", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 30)) * time.Second,

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

// UsingDefaultSecret reports whether the hardcoded dev secret is still in use.
func (c Config) UsingDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)

		if err != nil {
			return fallback
		}

		return b
	}
	return fallback
}
