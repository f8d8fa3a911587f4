package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort              string
	FirebaseProject         string
	ServiceAccountJSON      string
	ServiceAccountPath      string
	StorageBucket           string
	Environment             string
	SubscribeMaxAttempts    int
	SubscribeInitialBackoff time.Duration
	SubscribeMaxBackoff     time.Duration
	EnrichTimeout           time.Duration
	EnrichConcurrency       int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		FirebaseProject:         getEnv("FIREBASE_PROJECT_ID", ""),
		ServiceAccountJSON:      getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountPath:      getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		StorageBucket:           getEnv("STORAGE_BUCKET", ""),
		Environment:             getEnv("ENVIRONMENT", "development"),
		SubscribeMaxAttempts:    int(getEnvAsInt64("SUBSCRIBE_MAX_ATTEMPTS", 5)),
		SubscribeInitialBackoff: time.Duration(getEnvAsInt64("SUBSCRIBE_INITIAL_BACKOFF_MS", 250)) * time.Millisecond,
		SubscribeMaxBackoff:     time.Duration(getEnvAsInt64("SUBSCRIBE_MAX_BACKOFF_MS", 10000)) * time.Millisecond,
		EnrichTimeout:           time.Duration(getEnvAsInt64("ENRICH_TIMEOUT_MS", 5000)) * time.Millisecond,
		EnrichConcurrency:       int(getEnvAsInt64("ENRICH_CONCURRENCY", 16)),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
