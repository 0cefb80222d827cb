package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppName string
	AppEnv  string
	Port    string

	// DBDSN vacío => repos in-memory.
	DBDSN         string
	DBAutoMigrate bool

	// RedisAddr vacío => sin sink redis.
	RedisAddr string
	RedisDB   int

	JWTSecret   string
	JWTIssuer   string
	JWTTTL      time.Duration
	AuthDevMode bool

	LogLevel  string
	LogFormat string

	Dispatch DispatchConfig

	WebhookURL     string
	WebhookTimeout time.Duration
}

type DispatchConfig struct {
	Shards       int
	QueueSize    int
	MaxAttempts  int
	RetryInitial time.Duration
}

// Load lee configuración de env (y de .env si cmd/api lo cargó antes).
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_NAME", "coffee-with-me")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", "dev-insecure-change-this")
	v.SetDefault("JWT_ISSUER", "coffee-with-me")
	v.SetDefault("JWT_TTL", 24*time.Hour)
	v.SetDefault("AUTH_DEV_MODE", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("DISPATCH_SHARDS", 8)
	v.SetDefault("DISPATCH_QUEUE_SIZE", 256)
	v.SetDefault("DISPATCH_MAX_ATTEMPTS", 3)
	v.SetDefault("DISPATCH_RETRY_INITIAL", 200*time.Millisecond)
	v.SetDefault("NOTIFY_WEBHOOK_URL", "")
	v.SetDefault("NOTIFY_WEBHOOK_TIMEOUT", 5*time.Second)

	c := Config{
		AppName:       v.GetString("APP_NAME"),
		AppEnv:        strings.ToLower(v.GetString("APP_ENV")),
		Port:          strings.TrimPrefix(v.GetString("PORT"), ":"),
		DBDSN:         strings.TrimSpace(v.GetString("DB_DSN")),
		DBAutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		RedisAddr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisDB:       v.GetInt("REDIS_DB"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTIssuer:     v.GetString("JWT_ISSUER"),
		JWTTTL:        v.GetDuration("JWT_TTL"),
		AuthDevMode:   v.GetBool("AUTH_DEV_MODE"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFormat:     v.GetString("LOG_FORMAT"),
		Dispatch: DispatchConfig{
			Shards:       v.GetInt("DISPATCH_SHARDS"),
			QueueSize:    v.GetInt("DISPATCH_QUEUE_SIZE"),
			MaxAttempts:  v.GetInt("DISPATCH_MAX_ATTEMPTS"),
			RetryInitial: v.GetDuration("DISPATCH_RETRY_INITIAL"),
		},
		WebhookURL:     strings.TrimSpace(v.GetString("NOTIFY_WEBHOOK_URL")),
		WebhookTimeout: v.GetDuration("NOTIFY_WEBHOOK_TIMEOUT"),
	}

	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("config: PORT is required")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("config: JWT_TTL must be positive")
	}
	if c.Dispatch.MaxAttempts < 1 {
		return fmt.Errorf("config: DISPATCH_MAX_ATTEMPTS must be >= 1")
	}
	if c.AppEnv == "production" && c.JWTSecret == "dev-insecure-change-this" {
		return fmt.Errorf("config: JWT_SECRET must be set in production")
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func (c Config) String() string {
	db := "memory"
	if c.DBDSN != "" {
		db = "postgres"
	}
	return fmt.Sprintf("env=%s addr=%s storage=%s redis=%q dev_auth=%t", c.AppEnv, c.Addr(), db, c.RedisAddr, c.AuthDevMode)
}
