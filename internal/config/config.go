package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Environment   string
	AppId         string
	MongoURI      string
	DBName        string
	RedisURL      string
	AccessSecret  string
	RefreshSecret string
	SkipAuth      bool
	// BlacklistStore selects where revoked tokens live: "memory" (single
	// process) or "redis" (shared across instances).
	BlacklistStore string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AppId:          getEnv("APP_ID", "go-pos"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:         getEnv("DB_NAME", "go-pos"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		AccessSecret:   getEnv("JWT_ACCESS_SECRET", "dev-access-secret"),
		RefreshSecret:  getEnv("JWT_REFRESH_SECRET", "dev-refresh-secret"),
		SkipAuth:       getEnv("SKIP_AUTH", "false") == "true",
		BlacklistStore: getEnv("BLACKLIST_STORE", "memory"),
	}, nil
}

// IsProduction reports whether the server runs with production hardening
// (secure cookies, strict SameSite).
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
