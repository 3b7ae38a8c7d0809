package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort        string
	FirebaseProject   string
	Environment       string
	DevTokenSecret    string
	HeartbeatInterval time.Duration
	PresenceStaleness time.Duration
	ReconcileInterval time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		FirebaseProject:   getEnv("FIREBASE_PROJECT_ID", ""),
		Environment:       getEnv("ENVIRONMENT", "development"),
		DevTokenSecret:    getEnv("DEV_TOKEN_SECRET", "otomart-dev-secret"),
		HeartbeatInterval: getEnvAsSeconds("HEARTBEAT_INTERVAL_SECONDS", 10),
		PresenceStaleness: getEnvAsSeconds("PRESENCE_STALENESS_SECONDS", 20),
		ReconcileInterval: getEnvAsSeconds("RECONCILE_INTERVAL_SECONDS", 3),
	}

	// A staleness window below two heartbeats flags healthy sessions as offline
	if config.PresenceStaleness < 2*config.HeartbeatInterval {
		config.PresenceStaleness = 2 * config.HeartbeatInterval
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsSeconds(key string, defaultValue int64) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil && intValue > 0 {
			return time.Duration(intValue) * time.Second
		}
	}
	return time.Duration(defaultValue) * time.Second
}
