package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hostelhub/service-booking/pkg/config"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port        string `validate:"required"`
	AppEnv      string `validate:"oneof=development staging production test"`
	DBConfig    config.DatabaseConfig
	JWTConfig   config.JWTConfig
	KafkaConfig config.KafkaConfig
	RedisConfig config.RedisConfig

	// LockTimeout bounds how long a booking transaction waits on the hostel row.
	LockTimeout   time.Duration `validate:"min=0"`
	StatsCacheTTL time.Duration `validate:"gt=0"`

	RateLimitRPS   float64 `validate:"gt=0"`
	RateLimitBurst int     `validate:"min=1"`

	MetricsPath    string `validate:"startswith=/"`
	// AllowedOrigins is empty when every origin is allowed.
	AllowedOrigins []string
	MigrationsPath string `validate:"required"`
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}

	v.SetDefault("DB_NAME", "hostelhub_booking")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("METRICS_PATH", "/metrics")
	v.SetDefault("MIGRATIONS_PATH", "migrations")

	cfg := &ServiceConfig{
		Port:           config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:         config.GetAppEnv(v),
		DBConfig:       config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:      config.LoadJWTConfig(v),
		KafkaConfig:    config.LoadKafkaConfig(v),
		RedisConfig:    config.LoadRedisConfig(v),
		LockTimeout:    config.GetDuration(v, "LOCK_TIMEOUT", 5*time.Second),
		StatsCacheTTL:  config.GetDuration(v, "STATS_CACHE_TTL", time.Minute),
		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
		MetricsPath:    v.GetString("METRICS_PATH"),
		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded settings, including the nested connection configs.
func (c *ServiceConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ConsumerGroup returns the Kafka consumer group of the catalog projection.
func (c *ServiceConfig) ConsumerGroup() string {
	return c.KafkaConfig.GroupPrefix + "service-booking"
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
