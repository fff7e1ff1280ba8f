package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port         string
	DatabasePath string
	LogLevel     string

	// Security settings
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	MaxUploadSizeBytes int64

	// HTTP edge
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int

	// Reports
	StatsCacheTTL time.Duration

	// Import/export column labels (optional YAML file)
	FieldMappingPath string

	// Messaging (optional; events are dropped when AMQPURL is empty)
	AMQPURL           string
	AMQPExchange      string
	AMQPRoutingPrefix string
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

const minJWTSecretLength = 32

// LoadConfig loads configuration from environment variables or a .env file.
// It terminates the process when the configuration cannot be used.
func LoadConfig() {
	// 1. Try loading from the current directory (standard behavior)
	errEnv := godotenv.Load()

	// 2. If not found, try loading from the parent directory
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}

	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found in current or parent directory. Relying on OS environment variables.")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	cfg, err := LoadConfigFrom(os.LookupEnv)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	Cfg = cfg

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, Origins=%v",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.AllowedOrigins)
}

// LoadConfigFrom builds an AppConfig from the given lookup function.
func LoadConfigFrom(lookup func(string) (string, bool)) (*AppConfig, error) {
	env := envReader{lookup: lookup}

	jwtSecret, err := env.required("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	if len(jwtSecret) < minJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters long", minJWTSecretLength)
	}

	cfg := &AppConfig{
		Port:         env.get("PORT", "8080"),
		DatabasePath: env.get("DATABASE_PATH", "./expensetracker.db"),
		LogLevel:     env.get("LOG_LEVEL", "info"),

		JWTSecret:          jwtSecret,
		AccessTokenExpiry:  env.duration("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
		RefreshTokenExpiry: env.duration("REFRESH_TOKEN_EXPIRY", 168*time.Hour), // 7 days
		MaxUploadSizeBytes: env.int64("MAX_UPLOAD_SIZE_BYTES", 5*1024*1024),

		AllowedOrigins: env.list("ALLOWED_ORIGINS", "http://localhost:3000"),
		RateLimitRPS:   env.float("RATE_LIMIT_RPS", 10),
		RateLimitBurst: env.int("RATE_LIMIT_BURST", 30),

		StatsCacheTTL:    env.duration("STATS_CACHE_TTL", 5*time.Minute),
		FieldMappingPath: env.get("FIELD_MAPPING_PATH", ""),

		AMQPURL:           env.get("AMQP_URL", ""),
		AMQPExchange:      env.get("AMQP_EXCHANGE", "expensetracker"),
		AMQPRoutingPrefix: env.get("AMQP_ROUTING_PREFIX", "purchases"),
	}

	if cfg.MaxUploadSizeBytes <= 0 {
		log.Printf("WARNING: MAX_UPLOAD_SIZE_BYTES must be positive, using default 5MB")
		cfg.MaxUploadSizeBytes = 5 * 1024 * 1024
	}
	return cfg, nil
}

type envReader struct {
	lookup func(string) (string, bool)
}

// get retrieves an environment variable or returns a fallback value.
func (e envReader) get(key, fallback string) string {
	if value, exists := e.lookup(key); exists {
		return value
	}
	return fallback
}

// required retrieves an environment variable that must be set and non-empty.
func (e envReader) required(key string) (string, error) {
	value, exists := e.lookup(key)
	if !exists || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("required environment variable %s is not set or is empty", key)
	}
	return value, nil
}

func (e envReader) int(key string, fallback int) int {
	valueStr := e.get(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func (e envReader) int64(key string, fallback int64) int64 {
	valueStr := e.get(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func (e envReader) float(key string, fallback float64) float64 {
	valueStr := e.get(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil && value > 0 {
		return value
	}
	log.Printf("Invalid number value for %s ('%s'), using default: %g", key, valueStr, fallback)
	return fallback
}

func (e envReader) duration(key string, fallback time.Duration) time.Duration {
	valueStr := e.get(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

// list parses a comma-separated value, dropping empty entries.
func (e envReader) list(key, fallback string) []string {
	raw := e.get(key, fallback)
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
