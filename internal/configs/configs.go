package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

type Config struct {
	AppURL                 string
	DatabaseDSN            string
	RedisAddr              string
	JWTSecret              string
	RateLimit              int
	NotifyWorkers          int
	NotifyQueueSize        int
	PresenceTTLSeconds     int
	ShutdownTimeoutSeconds int
}

func Load() Config {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")

	cfg := Config{
		AppURL:                 fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDSN:            getEnv("DATABASE_DSN", "urbanup.db"),
		RedisAddr:              redisAddr(),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		RateLimit:              getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		NotifyWorkers:          getEnvAsInt("NOTIFY_WORKERS", 4),
		NotifyQueueSize:        getEnvAsInt("NOTIFY_QUEUE_SIZE", 256),
		PresenceTTLSeconds:     getEnvAsInt("PRESENCE_TTL_SECONDS", 60),
		ShutdownTimeoutSeconds: getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20),
	}

	validate(cfg)
	return cfg
}

// redisAddr returns empty when redis is not configured; presence tracking is
// then disabled instead of fatal.
func redisAddr() string {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return ""
	}
	port := getEnv("REDIS_PORT", "6379")
	return fmt.Sprintf("%s:%s", host, port)
}

func validate(cfg Config) {
	if cfg.DatabaseDSN == "" {
		logrus.Fatal("DATABASE_DSN must not be empty")
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must not be empty")
	}
	if cfg.RateLimit <= 0 {
		logrus.Fatal("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.NotifyWorkers <= 0 {
		logrus.Fatal("NOTIFY_WORKERS must be greater than 0")
	}
	if cfg.NotifyQueueSize <= 0 {
		logrus.Fatal("NOTIFY_QUEUE_SIZE must be greater than 0")
	}
	if cfg.PresenceTTLSeconds <= 0 {
		logrus.Fatal("PRESENCE_TTL_SECONDS must be greater than 0")
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			logrus.Fatalf("invalid integer value for %s", key)
		}
		return i
	}
	return defaultVal
}
