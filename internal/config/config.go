package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

const (
	// SessionTokenTTL bounds the signed session token lifetime.
	SessionTokenTTL = 72 * time.Hour
	// DefaultAdminSessionTTL bounds the admin capability grant.
	DefaultAdminSessionTTL = 12 * time.Hour
)

// Config holds all runtime configuration, populated from environment variables.
type Config struct {
	ListenAddr  string
	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret         string
	SessionCookieName string
	AdminSessionTTL   time.Duration

	// Bootstrap credentials used when the admin_users table is empty.
	BootstrapAdminUser     string
	BootstrapAdminPassword string

	// Optional Telegram notification target for offline admins.
	TelegramBotToken    string
	TelegramAdminChatID int64
}

// Load populates a Config from environment variables. Optional numeric values
// that fail to parse are logged and fall back to their defaults.
func Load() *Config {
	cfg := &Config{
		ListenAddr:             getEnv("LISTEN_ADDR", ":8080"),
		DatabaseDSN:            getEnv("DATABASE_DSN", "host=localhost user=user password=password dbname=supportchat port=5432 sslmode=disable"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		SessionCookieName:      getEnv("SESSION_COOKIE_NAME", "chat_session"),
		AdminSessionTTL:        DefaultAdminSessionTTL,
		BootstrapAdminUser:     getEnv("ADMIN_USERNAME", "admin"),
		BootstrapAdminPassword: os.Getenv("ADMIN_PASSWORD"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("WARNING: invalid REDIS_DB %q, using 0: %v", v, err)
		} else {
			cfg.RedisDB = n
		}
	}

	if v := os.Getenv("ADMIN_SESSION_TTL_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Printf("WARNING: invalid ADMIN_SESSION_TTL_HOURS %q, using default", v)
		} else {
			cfg.AdminSessionTTL = time.Duration(n) * time.Hour
		}
	}

	if v := os.Getenv("TELEGRAM_ADMIN_CHAT_ID"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Printf("WARNING: invalid TELEGRAM_ADMIN_CHAT_ID %q, telegram notifications disabled: %v", v, err)
		} else {
			cfg.TelegramAdminChatID = n
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
