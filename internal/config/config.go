package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string

	// External reference database polled by the lookup table sync
	LookupSyncDriver   string // "postgres" or "mysql"
	LookupSyncDSN      string
	LookupSyncSchedule string // cron expression; empty disables the scheduler

	// Instances stuck in processing longer than this many minutes are
	// moved to error by the watchdog so they become retryable
	ProcessingTimeoutMin int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		JWTSecret:            getEnv("JWT_SECRET", "secret"),
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:               getEnv("DB_NAME", "go-docmap"),
		SkipAuth:             getEnv("SKIP_AUTH", "false") == "true",
		Environment:          getEnv("ENVIRONMENT", "development"),
		AppId:                getEnv("APP_ID", "go-docmap"),
		LookupSyncDriver:     getEnv("LOOKUP_SYNC_DRIVER", "postgres"),
		LookupSyncDSN:        getEnv("LOOKUP_SYNC_DSN", ""),
		LookupSyncSchedule:   getEnv("LOOKUP_SYNC_SCHEDULE", ""),
		ProcessingTimeoutMin: getEnvInt("PROCESSING_TIMEOUT_MIN", 30),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
