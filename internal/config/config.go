// Package config loads server configuration from an optional YAML file and
// BUDGETBUDDY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/budgetbuddy/backend/internal/money"
)

const (
	ModeDev  = "dev"
	ModeProd = "prod"

	envPrefix    = "BUDGETBUDDY"
	devJWTSecret = "budgetbuddy-dev-secret-do-not-use-in-prod"
	minSecretLen = 32
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Budget   BudgetConfig   `mapstructure:"budget"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigin   string        `mapstructure:"allowed_origin"`
	StaticDir       string        `mapstructure:"static_dir"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Mode            string        `mapstructure:"mode"`
}

// DatabaseConfig holds the SQLite file location
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig holds session token settings
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenDuration time.Duration `mapstructure:"token_duration"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// CacheConfig holds the idempotency cache settings. An empty RedisAddr
// selects the in-memory cache.
type CacheConfig struct {
	RedisAddr      string        `mapstructure:"redis_addr"`
	RedisPassword  string        `mapstructure:"redis_password"`
	RedisDB        int           `mapstructure:"redis_db"`
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
}

// LedgerConfig holds ledger presentation settings
type LedgerConfig struct {
	Currency string `mapstructure:"currency"`
}

// BudgetConfig holds personal budget settings. MonthlyAllowance is written in
// major units ("10000", "2500.50"); Load fills AllowanceMinor from it.
type BudgetConfig struct {
	MonthlyAllowance string `mapstructure:"monthly_allowance"`
	AllowanceMinor   int64  `mapstructure:"-"`
}

// Dev reports whether the server runs in development mode.
func (c *Config) Dev() bool {
	return c.Server.Mode == ModeDev
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origin", "*")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.mode", ModeDev)

	v.SetDefault("database.path", "./data/budgetbuddy.db")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_duration", "24h")

	v.SetDefault("log.level", "info")

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.idempotency_ttl", "24h")

	v.SetDefault("ledger.currency", string(money.DefaultCurrency))

	v.SetDefault("budget.monthly_allowance", "10000")
}

// Load reads configuration. configPath may be empty, in which case
// ./config.yaml is used when present. Environment variables such as
// BUDGETBUDDY_SERVER_PORT override file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Older deployments set these unprefixed.
	_ = v.BindEnv("database.path", envPrefix+"_DATABASE_PATH", "DB_PATH")
	_ = v.BindEnv("server.static_dir", envPrefix+"_SERVER_STATIC_DIR", "STATIC_PATH")
	_ = v.BindEnv("log.level", envPrefix+"_LOG_LEVEL", "LOG_LEVEL")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Mode != ModeDev && c.Server.Mode != ModeProd {
		return fmt.Errorf("server.mode must be %q or %q, got %q", ModeDev, ModeProd, c.Server.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Auth.JWTSecret == "" && c.Dev() {
		slog.Warn("auth.jwt_secret not set, using development secret")
		c.Auth.JWTSecret = devJWTSecret
	}
	if len(c.Auth.JWTSecret) < minSecretLen && !c.Dev() {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes", minSecretLen)
	}
	if c.Auth.TokenDuration <= 0 {
		return fmt.Errorf("auth.token_duration must be positive")
	}
	if c.Cache.IdempotencyTTL <= 0 {
		return fmt.Errorf("cache.idempotency_ttl must be positive")
	}

	cur, err := money.Currency(c.Ledger.Currency)
	if err != nil {
		return fmt.Errorf("ledger.currency: %w", err)
	}
	c.Ledger.Currency = cur.Code

	allowance, err := money.Parse(c.Budget.MonthlyAllowance, c.Ledger.Currency)
	if err != nil {
		return fmt.Errorf("budget.monthly_allowance: %w", err)
	}
	if allowance < 0 {
		return fmt.Errorf("budget.monthly_allowance must not be negative")
	}
	c.Budget.AllowanceMinor = allowance

	return nil
}
