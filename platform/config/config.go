// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "APP_"

// Lead store backends.
const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSOrigins() []string
	GetRateLimitPerMinute() int
}

// StoreConfig provides lead store selection and locations.
type StoreConfig interface {
	GetLeadsStore() string
	GetLeadsFile() string
	GetSQLitePath() string
	GetDatabaseURL() string
}

// LeadsConfig provides pipeline settings for the leads module.
type LeadsConfig interface {
	GetDuplicateWindow() time.Duration
}

// SMTPConfig provides settings for the email notifier.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUser() string
	GetSMTPPassword() string
	GetFromEmail() string
	GetToEmail() string
	IsSMTPEnabled() bool
}

// TelegramConfig provides settings for the Telegram notifier.
type TelegramConfig interface {
	GetTelegramBotToken() string
	GetTelegramChatID() int64
	IsTelegramEnabled() bool
}

// WhatsAppConfig provides settings for the WhatsApp gateway notifier.
type WhatsAppConfig interface {
	GetWhatsAppURL() string
	GetWhatsAppKey() string
	GetWhatsAppDeviceID() string
	GetWhatsAppNotifyPhone() string
	IsWhatsAppEnabled() bool
}

// SchedulerConfig provides settings for the background notification queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// ArchiveConfig provides settings for MinIO lead archiving.
type ArchiveConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketLeads() string
	IsMinIOEnabled() bool
}

// AdminConfig provides settings for admin endpoint authentication.
type AdminConfig interface {
	GetAdminJWTSecret() string
	GetAdminPasswordHash() string
	GetAdminTokenTTL() time.Duration
	IsAdminAuthEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	LogFile            string
	CORSOrigins        []string
	RateLimitPerMinute int
	LeadsStore         string
	LeadsFile          string
	SQLitePath         string
	DatabaseURL        string
	DuplicateWindow    time.Duration
	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPassword       string
	FromEmail          string
	ToEmail            string
	TelegramBotToken   string
	TelegramChatID     int64
	WhatsAppURL        string
	WhatsAppKey        string
	WhatsAppDeviceID   string
	WhatsAppNotify     string
	RedisURL           string
	RedisTLSInsecure   bool
	AsynqQueueName     string
	AsynqConcurrency   int
	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOUseSSL        bool
	MinioBucketLeads   string
	AdminJWTSecret     string
	AdminPasswordHash  string
	AdminTokenTTL      time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string        { return c.HTTPAddr }
func (c *Config) GetCORSOrigins() []string   { return c.CORSOrigins }
func (c *Config) GetRateLimitPerMinute() int { return c.RateLimitPerMinute }

// StoreConfig implementation
func (c *Config) GetLeadsStore() string  { return c.LeadsStore }
func (c *Config) GetLeadsFile() string   { return c.LeadsFile }
func (c *Config) GetSQLitePath() string  { return c.SQLitePath }
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// LeadsConfig implementation
func (c *Config) GetDuplicateWindow() time.Duration { return c.DuplicateWindow }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string     { return c.SMTPHost }
func (c *Config) GetSMTPPort() int        { return c.SMTPPort }
func (c *Config) GetSMTPUser() string     { return c.SMTPUser }
func (c *Config) GetSMTPPassword() string { return c.SMTPPassword }
func (c *Config) GetFromEmail() string    { return c.FromEmail }
func (c *Config) GetToEmail() string      { return c.ToEmail }
func (c *Config) IsSMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPassword != "" && c.ToEmail != ""
}

// TelegramConfig implementation
func (c *Config) GetTelegramBotToken() string { return c.TelegramBotToken }
func (c *Config) GetTelegramChatID() int64    { return c.TelegramChatID }
func (c *Config) IsTelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// WhatsAppConfig implementation
func (c *Config) GetWhatsAppURL() string         { return c.WhatsAppURL }
func (c *Config) GetWhatsAppKey() string         { return c.WhatsAppKey }
func (c *Config) GetWhatsAppDeviceID() string    { return c.WhatsAppDeviceID }
func (c *Config) GetWhatsAppNotifyPhone() string { return c.WhatsAppNotify }
func (c *Config) IsWhatsAppEnabled() bool {
	return c.WhatsAppURL != "" && c.WhatsAppNotify != ""
}

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }

// ArchiveConfig implementation
func (c *Config) GetMinIOEndpoint() string    { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string   { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string   { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool        { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketLeads() string { return c.MinioBucketLeads }
func (c *Config) IsMinIOEnabled() bool        { return c.MinIOEndpoint != "" }

// AdminConfig implementation
func (c *Config) GetAdminJWTSecret() string       { return c.AdminJWTSecret }
func (c *Config) GetAdminPasswordHash() string    { return c.AdminPasswordHash }
func (c *Config) GetAdminTokenTTL() time.Duration { return c.AdminTokenTTL }
func (c *Config) IsAdminAuthEnabled() bool        { return c.AdminJWTSecret != "" }

// Load reads configuration from the environment, after loading .env if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                getEnv("ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8000"),
		LogFile:            getEnv("LOG_FILE", ""),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitPerMinute: mustInt(getEnv("RATE_LIMIT_PER_MINUTE", "10")),
		LeadsStore:         strings.ToLower(getEnv("LEADS_STORE", StoreFile)),
		LeadsFile:          getEnv("LEADS_FILE", "data/leads.json"),
		SQLitePath:         getEnv("SQLITE_PATH", "data/leads.db"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DuplicateWindow:    mustDuration(getEnv("DUPLICATE_WINDOW", "5m")),
		SMTPHost:           getEnv("SMTP_HOST", "smtp.yandex.ru"),
		SMTPPort:           mustInt(getEnv("SMTP_PORT", "465")),
		SMTPUser:           getEnv("SMTP_USER", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		FromEmail:          getEnv("FROM_EMAIL", ""),
		ToEmail:            getEnv("TO_EMAIL", ""),
		TelegramBotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:     mustInt64(getEnv("TELEGRAM_CHAT_ID", "0")),
		WhatsAppURL:        getEnv("WHATSAPP_URL", ""),
		WhatsAppKey:        getEnv("WHATSAPP_KEY", ""),
		WhatsAppDeviceID:   getEnv("WHATSAPP_DEVICE_ID", ""),
		WhatsAppNotify:     getEnv("WHATSAPP_NOTIFY_PHONE", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:     getEnv("ASYNQ_QUEUE", "notifications"),
		AsynqConcurrency:   mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		MinIOEndpoint:      getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:     getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:        strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketLeads:   getEnv("MINIO_BUCKET_LEADS", "leads-archive"),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		AdminPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
		AdminTokenTTL:      mustDuration(getEnv("ADMIN_TOKEN_TTL", "12h")),
	}

	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.SMTPUser
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LeadsStore {
	case StoreFile:
		if c.LeadsFile == "" {
			return fmt.Errorf("APP_LEADS_FILE is required when APP_LEADS_STORE is file")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("APP_SQLITE_PATH is required when APP_LEADS_STORE is sqlite")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("APP_DATABASE_URL is required when APP_LEADS_STORE is postgres")
		}
	default:
		return fmt.Errorf("unknown APP_LEADS_STORE %q", c.LeadsStore)
	}

	if c.DuplicateWindow <= 0 {
		return fmt.Errorf("APP_DUPLICATE_WINDOW must be a positive duration")
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		return fmt.Errorf("APP_SMTP_PORT must be between 1 and 65535")
	}
	if c.AdminPasswordHash != "" && c.AdminJWTSecret == "" {
		return fmt.Errorf("APP_ADMIN_JWT_SECRET is required when APP_ADMIN_PASSWORD_HASH is set")
	}
	if c.IsAdminAuthEnabled() && c.AdminTokenTTL <= 0 {
		return fmt.Errorf("APP_ADMIN_TOKEN_TTL must be a positive duration")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(envPrefix + key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}
