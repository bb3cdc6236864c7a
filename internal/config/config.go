package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageSQLite   = "sqlite"
)

type Config struct {
	// Core
	BotToken   string `env:"BOT_TOKEN"`
	APIBaseURL string `env:"API_BASE_URL"`
	AppOrigin  string `env:"APP_ORIGIN"`

	// Backend calls. Zero means wait until the backend answers or the context ends.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"0s"`

	// Generation
	GuidanceScale decimal.Decimal `env:"GUIDANCE_SCALE" envDefault:"7.5"`

	// Storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	DatabaseURL    string `env:"DATABASE_URL"`
	DBMaxConns     int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns     int32  `env:"DB_MIN_CONNS" envDefault:"2"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix    string `env:"REDIS_PREFIX" envDefault:"sketchbot:"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"sketchbot.db"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Admin
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Telegram logging
	LogTelegramChatID int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError     int   `env:"LOG_TOPIC_ERROR"`
	LogTopicSignup    int   `env:"LOG_TOPIC_SIGNUP"`

	// Resolved once in Load.
	Endpoints Endpoints `env:"-"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	cfg.Endpoints = NewEndpoints(ResolveBase(cfg.APIBaseURL, cfg.AppOrigin))
	return cfg, nil
}

// Validate checks the guidance scale and that the selected storage backend
// has what it needs.
func (c *Config) Validate() error {
	if err := CheckGuidance(c.GuidanceScale); err != nil {
		return fmt.Errorf("GUIDANCE_SCALE: %w", err)
	}

	switch c.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for %s storage", c.StorageBackend)
		}
		if c.DBMinConns < 0 || c.DBMaxConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS (%d) must be between 0 and DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	case StorageRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for %s storage", c.StorageBackend)
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for %s storage", c.StorageBackend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	return nil
}

// CheckGuidance reports whether d is a usable guidance scale.
func CheckGuidance(d decimal.Decimal) error {
	maxScale := decimal.RequireFromString(MaxGuidanceScale)
	if !d.IsPositive() || d.GreaterThan(maxScale) {
		return fmt.Errorf("guidance scale %s outside (0, %s]", d, maxScale)
	}
	return nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
