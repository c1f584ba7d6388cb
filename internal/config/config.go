package config

import (
	"fmt"
	"log"
	"os"
	"time"

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

	StoreDriver  string        // "mongo" or "memory"
	StoreTimeout time.Duration // Per-call timeout on the entity store

	AutomationEnabled  bool
	AutomationInterval time.Duration
	AutomationRules    string // Optional YAML seed file; built-in rules when empty

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	storeTimeout, err := getDuration("STORE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	interval, err := getDuration("AUTOMATION_INTERVAL", 60*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "go-crm"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "go-crm-assistant"),

		StoreDriver:  getEnv("STORE_DRIVER", "mongo"),
		StoreTimeout: storeTimeout,

		AutomationEnabled:  getEnv("AUTOMATION_ENABLED", "true") == "true",
		AutomationInterval: interval,
		AutomationRules:    getEnv("AUTOMATION_RULES_FILE", ""),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
	}

	if cfg.StoreDriver != "mongo" && cfg.StoreDriver != "memory" {
		return nil, fmt.Errorf("invalid STORE_DRIVER %q (expected mongo or memory)", cfg.StoreDriver)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
