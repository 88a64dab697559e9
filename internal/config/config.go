package config

import (
	"os"
	"time"
)

const (
	defaultAddr      = ":8080"
	defaultDSN       = "crm.db"
	defaultJWTSecret = "change-me-jwt-secret"
	defaultJWTTTL    = "24h"
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
)

type Config struct {
	Addr      string
	DSN       string
	JWTSecret string
	JWTTTL    time.Duration
	LogLevel  string
	LogFormat string
}

func Load() Config {
	ttl, err := time.ParseDuration(getenv("JWT_TTL", defaultJWTTTL))
	if err != nil {
		ttl = 24 * time.Hour
	}

	return Config{
		Addr:      getenv("ADDR", defaultAddr),
		DSN:       getenv("DATABASE_URL", defaultDSN),
		JWTSecret: getenv("JWT_SECRET", defaultJWTSecret),
		JWTTTL:    ttl,
		LogLevel:  getenv("LOG_LEVEL", defaultLogLevel),
		LogFormat: getenv("LOG_FORMAT", defaultLogFormat),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
