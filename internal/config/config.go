package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	JWTSecret      string
	MongoURI       string
	DBName         string
	SkipAuth       bool
	Environment    string
	AppId          string
	CachePath      string        // sqlite file backing the persistent cache
	CacheTTL       time.Duration // default TTL for cached report payloads
	CountCacheTTL  time.Duration // shorter TTL for pagination count queries
	WarmupSchedule string        // cron expression for the cache warm job
	DefaultDays    int           // default filter window in days
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:         getEnv("DB_NAME", "go-obra"),
		SkipAuth:       getEnv("SKIP_AUTH", "false") == "true",
		Environment:    getEnv("ENVIRONMENT", "development"),
		AppId:          getEnv("APP_ID", "go-obra"),
		CachePath:      getEnv("CACHE_PATH", "./obra-cache.db"),
		CacheTTL:       getDurationEnv("CACHE_TTL_MINUTES", 60),
		CountCacheTTL:  getDurationEnv("COUNT_CACHE_TTL_MINUTES", 10),
		WarmupSchedule: getEnv("WARMUP_SCHEDULE", "0 6 * * *"),
		DefaultDays:    getIntEnv("DEFAULT_FILTER_DAYS", 30),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getDurationEnv(key string, fallbackMinutes int) time.Duration {
	return time.Duration(getIntEnv(key, fallbackMinutes)) * time.Minute
}
