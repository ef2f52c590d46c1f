package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration.
type Config struct {
	Port                    string
	CORSAllowOrigin         []string
	AuditStoreType          string
	LocalStoreDir           string
	AWSRegion               string
	S3Bucket                string
	S3Prefix                string
	SSEKMSKeyID             string
	DatabaseURL             string
	Env                     string
	SessionEventsQueueURL   string
	DecisionRulesFile       string
	LogLevel                string
	LogFile                 string
	ReadRateLimitPerMinute  int
	WriteRateLimitPerMinute int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:                    getEnv("PORT", "8080"),
		CORSAllowOrigin:         splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		AuditStoreType:          normalizeStoreType(getEnv("AUDIT_STORE", "local")),
		LocalStoreDir:           getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:               getEnv("AWS_REGION", ""),
		S3Bucket:                getEnv("S3_BUCKET", ""),
		S3Prefix:                getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:             getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:             dbURL,
		Env:                     env,
		SessionEventsQueueURL:   getEnv("SESSION_EVENTS_QUEUE_URL", ""),
		DecisionRulesFile:       getEnv("DECISION_RULES_FILE", ""),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFile:                 getEnv("LOG_FILE", ""),
		ReadRateLimitPerMinute:  getEnvInt("RATE_LIMIT_READ_PER_MINUTE", 120),
		WriteRateLimitPerMinute: getEnvInt("RATE_LIMIT_WRITE_PER_MINUTE", 30),
	}
}

// IsLocal reports whether in-memory fallbacks are allowed.
func (c Config) IsLocal() bool {
	return c.Env == "dev" || c.Env == "local"
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
