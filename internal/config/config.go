package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port           int    `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"` // development | production | test
	WorkerPoolSize int    `mapstructure:"WORKER_POOL_SIZE"`
	CORSOrigins    string `mapstructure:"CORS_ORIGINS"`

	// Store: file | postgres | redis | memory
	StoreDriver      string `mapstructure:"STORE_DRIVER"`
	DataDir          string `mapstructure:"DATA_DIR"`
	PersistTimeoutMS int    `mapstructure:"PERSIST_TIMEOUT_MS"`

	// Database (STORE_DRIVER=postgres)
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis: job queues, and the document store when STORE_DRIVER=redis.
	// Empty disables background jobs.
	RedisURL string `mapstructure:"REDIS_URL"`

	// Access gate
	JWTSecret           string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours  int    `mapstructure:"JWT_EXPIRATION_HOURS"`
	GatePasswordHash    string `mapstructure:"GATE_PASSWORD_HASH"`
	GateMaxIntentos     int    `mapstructure:"GATE_MAX_INTENTOS"`
	GateCooldownSeconds int    `mapstructure:"GATE_COOLDOWN_SECONDS"`

	// SMTP
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

	// Business
	TicketStoragePath string `mapstructure:"TICKET_STORAGE_PATH"`
	NombreNegocio     string `mapstructure:"NOMBRE_NEGOCIO"`
}

var defaults = map[string]any{
	"PORT":                  8000,
	"APP_ENV":               "development",
	"WORKER_POOL_SIZE":      2,
	"CORS_ORIGINS":          "http://localhost:5173",
	"STORE_DRIVER":          "file",
	"DATA_DIR":              "./data",
	"PERSIST_TIMEOUT_MS":    5000,
	"DATABASE_URL":          "",
	"REDIS_URL":             "",
	"JWT_SECRET":            "",
	"JWT_EXPIRATION_HOURS":  8,
	"GATE_PASSWORD_HASH":    "",
	"GATE_MAX_INTENTOS":     5,
	"GATE_COOLDOWN_SECONDS": 300,
	"SMTP_HOST":             "",
	"SMTP_PORT":             587,
	"SMTP_USER":             "",
	"SMTP_PASSWORD":         "",
	"TICKET_STORAGE_PATH":   "./data/tickets",
	"NOMBRE_NEGOCIO":        "Joyeria",
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Every key needs a default so Unmarshal sees env-only values.
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	// Optional .env file for local development, ignored if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "file", "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: STORE_DRIVER=postgres requires DATABASE_URL")
		}
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("config: STORE_DRIVER=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.Env == "production" && c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required in production")
	}
	if c.PersistTimeoutMS <= 0 {
		return fmt.Errorf("config: PERSIST_TIMEOUT_MS must be positive")
	}
	return nil
}

// PersistTimeout is PERSIST_TIMEOUT_MS as a duration.
func (c *Config) PersistTimeout() time.Duration {
	return time.Duration(c.PersistTimeoutMS) * time.Millisecond
}

// GateCooldown is GATE_COOLDOWN_SECONDS as a duration.
func (c *Config) GateCooldown() time.Duration {
	return time.Duration(c.GateCooldownSeconds) * time.Second
}
