package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Telegram  TelegramConfig
	Gemini    GeminiConfig
	Qdrant    QdrantConfig
	Document  DocumentConfig
	RateLimit RateLimitConfig
	Session   SessionConfig
	Analysis  AnalysisConfig
	Admin     AdminConfig
	Cleanup   CleanupConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type TelegramConfig struct {
	BotToken      string
	APIBaseURL    string
	WebhookURL    string
	WebhookSecret string
}

type GeminiConfig struct {
	APIKey            string
	RequestsPerMinute int
	RetryMaxAttempts  int
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type DocumentConfig struct {
	MinChars    int
	MaxChars    int
	MaxFileSize int64
	AllowPDF    bool
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

type SessionConfig struct {
	TTL time.Duration
}

type AnalysisConfig struct {
	Timeout time.Duration
}

type AdminConfig struct {
	Password string
	// TODO: enforce lockout; the limits are loaded but nothing applies them yet.
	LockoutAttempts int
	LockoutCooldown time.Duration
}

type CleanupConfig struct {
	Interval     time.Duration
	LogRetention time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_match_bot"),
		},
		Telegram: TelegramConfig{
			BotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
			APIBaseURL:    getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
			WebhookURL:    getEnv("WEBHOOK_URL", ""),
			WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
		},
		Gemini: GeminiConfig{
			APIKey:            getEnv("GEMINI_API_KEY", ""),
			RequestsPerMinute: getEnvAsInt("GEMINI_RPM", 50),
			RetryMaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "match_rubrics"),
		},
		Document: DocumentConfig{
			MinChars:    getEnvAsInt("DOC_MIN_CHARS", 100),
			MaxChars:    getEnvAsInt("DOC_MAX_CHARS", 30000),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			AllowPDF:    getEnvAsBool("ALLOW_PDF", true),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 10),
		},
		Session: SessionConfig{
			TTL: getEnvAsDuration("SESSION_TTL", "1h"),
		},
		Analysis: AnalysisConfig{
			Timeout: getEnvAsDuration("ANALYSIS_TIMEOUT", "90s"),
		},
		Admin: AdminConfig{
			Password:        getEnv("ADMIN_PASSWORD", ""),
			LockoutAttempts: getEnvAsInt("ADMIN_LOCKOUT_ATTEMPTS", 5),
			LockoutCooldown: getEnvAsDuration("ADMIN_LOCKOUT_COOLDOWN", "15m"),
		},
		Cleanup: CleanupConfig{
			Interval:     getEnvAsDuration("CLEANUP_INTERVAL", "10m"),
			LogRetention: getEnvAsDuration("LOG_RETENTION", "168h"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// IsProduction gates the admin password check: any other environment is open
// and authorizes admin commands unconditionally.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// QdrantEnabled reports whether rubric retrieval is configured at all.
func (c *Config) QdrantEnabled() bool {
	return c.Qdrant.URL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
