package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCredentialsEnv is the variable holding the Firebase service-account JSON.
const DefaultCredentialsEnv = "FIREBASE_SERVICE_ACCOUNT"

// Config holds the relay configuration.
type Config struct {
	Port                 string
	LogLevel             string
	AppVersion           string
	CredentialsEnv       string
	SendConcurrency      int
	ProviderTimeout      time.Duration
	DebugEndpointEnabled bool
	APIKey               string
	CORSAllowOrigins     []string
	RedisURL             string
	RateLimitPerMinute   int
	TokenSuppressTTL     time.Duration
	IdempotencyTTL       time.Duration
	DatabaseURL          string
	DeliveryTable        string
	RabbitMQURL          string
	ReportExchange       string
	ReportRoutingKey     string
	ReportQueue          string
	CircuitBreaker       bool
	StartupRetryAttempts int
	ShutdownTimeout      time.Duration
}

// Load loads the configuration from environment variables. A missing .env
// file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:                 getEnv("PORT", "5000"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		AppVersion:           getEnv("APP_VERSION", "1.0.0"),
		CredentialsEnv:       getEnv("FIREBASE_CREDENTIALS_ENV", DefaultCredentialsEnv),
		SendConcurrency:      getEnvAsInt("SEND_CONCURRENCY", 8),
		ProviderTimeout:      getEnvAsDuration("PROVIDER_TIMEOUT", 10*time.Second),
		DebugEndpointEnabled: getEnvAsBool("DEBUG_ENDPOINT_ENABLED", true),
		APIKey:               getEnv("RELAY_API_KEY", ""),
		CORSAllowOrigins:     getEnvAsList("CORS_ALLOW_ORIGINS", []string{"*"}),
		RedisURL:             getEnv("REDIS_URL", ""),
		RateLimitPerMinute:   getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		TokenSuppressTTL:     getEnvAsDuration("TOKEN_SUPPRESS_TTL", 24*time.Hour),
		IdempotencyTTL:       getEnvAsDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		DeliveryTable:        getEnv("DELIVERY_TABLE", "push_deliveries"),
		RabbitMQURL:          getEnv("RABBITMQ_URL", ""),
		ReportExchange:       getEnv("REPORT_EXCHANGE", "notifications.direct"),
		ReportRoutingKey:     getEnv("REPORT_ROUTING_KEY", "push.report"),
		ReportQueue:          getEnv("REPORT_QUEUE", "push.reports"),
		CircuitBreaker:       getEnvAsBool("CIRCUIT_BREAKER_ENABLED", false),
		StartupRetryAttempts: getEnvAsInt("STARTUP_RETRY_ATTEMPTS", 3),
		ShutdownTimeout:      getEnvAsDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
	}, nil
}

// ServiceAccountJSON returns the raw credential document from the configured variable.
func (c *Config) ServiceAccountJSON() string {
	return os.Getenv(c.CredentialsEnv)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		i, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			log.Printf("invalid int for %s, using default %d: %v", key, defaultValue, err)
			return defaultValue
		}
		return i
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			log.Printf("invalid bool for %s, using default %t: %v", key, defaultValue, err)
			return defaultValue
		}
		return b
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("invalid duration for %s; using default %s", key, defaultValue)
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
