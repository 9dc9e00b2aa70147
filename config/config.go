package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Razorpay RazorpayConfig
	Links    LinksConfig
	Email    EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                 string
	PortFallbackAttempts int // how many successive ports to try when the bind fails
	ReadTimeout          int
	WriteTimeout         int
	CORSAllowedOrigins   string // comma-separated, or "*" for all
	StaticDir            string // directory served at / and /static; empty disables static serving
	DebugEndpoints       bool   // expose unauthenticated diagnostic endpoints (_recent-attendees)
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL is not
// fatal at startup; store-backed handlers fail at call time instead.
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis connection settings for the email job queue.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RazorpayConfig holds the payment provider key pair and webhook secret.
// An empty WebhookSecret disables signature verification on /webhook.
type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Currency      string
}

// LinksConfig holds the resource URLs unlocked on verified payment.
type LinksConfig struct {
	WhatsApp string
	Telegram string
	Download string
}

// EmailConfig holds SMTP settings for access-link delivery. An empty SMTPHost
// disables mail delivery entirely.
type EmailConfig struct {
	FromAddress string
	FromName    string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:                 getEnv("PORT", "8080"),
			PortFallbackAttempts: getEnvInt("PORT_FALLBACK_ATTEMPTS", 10),
			ReadTimeout:          getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:         getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
			StaticDir:            getEnv("STATIC_DIR", ""),
			DebugEndpoints:       getEnvBool("DEBUG_ENDPOINTS", false),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Razorpay: RazorpayConfig{
			KeyID:         getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
			WebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
			Currency:      getEnv("PAYMENT_CURRENCY", "INR"),
		},
		Links: LinksConfig{
			WhatsApp: getEnv("LINK_WHATSAPP", ""),
			Telegram: getEnv("LINK_TELEGRAM", ""),
			Download: getEnv("LINK_DOWNLOAD", ""),
		},
		Email: EmailConfig{
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@example.com"),
			FromName:    getEnv("EMAIL_FROM_NAME", "Forge Workshop"),
			SMTPHost:    getEnv("SMTP_HOST", ""),
			SMTPPort:    getEnvInt("SMTP_PORT", 587),
			SMTPUser:    getEnv("SMTP_USER", ""),
			SMTPPass:    getEnv("SMTP_PASS", ""),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes":
			return true
		case "0", "false", "no":
			return false
		}
	}
	return fallback
}
