package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOOKING_JWT_SECRET", "a-secret-of-sufficient-length")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8082", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "hostelhub_booking", cfg.DBConfig.DBName)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaConfig.Brokers)
	assert.Equal(t, 5*time.Second, cfg.LockTimeout)
	assert.Equal(t, time.Minute, cfg.StatsCacheTTL)
	assert.Equal(t, 20.0, cfg.RateLimitRPS)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.Equal(t, "/metrics", cfg.MetricsPath)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, "hostelhub-service-booking", cfg.ConsumerGroup())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BOOKING_JWT_SECRET", "a-secret-of-sufficient-length")
	t.Setenv("BOOKING_SERVICE_PORT", "9000")
	t.Setenv("BOOKING_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("BOOKING_LOCK_TIMEOUT", "750ms")
	t.Setenv("BOOKING_CORS_ALLOWED_ORIGINS", "https://hostelhub.co.ke, https://admin.hostelhub.co.ke")
	t.Setenv("BOOKING_REDIS_ADDR", "redis:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaConfig.Brokers)
	assert.Equal(t, 750*time.Millisecond, cfg.LockTimeout)
	assert.Len(t, cfg.AllowedOrigins, 2)
	assert.Equal(t, "redis:6379", cfg.RedisConfig.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{}},
		{"short jwt secret", map[string]string{"BOOKING_JWT_SECRET": "short"}},
		{"unknown environment", map[string]string{"BOOKING_APP_ENV": "moon"}},
		{"bad ssl mode", map[string]string{"BOOKING_DB_SSLMODE": "sometimes"}},
		{"zero rate limit", map[string]string{"BOOKING_RATE_LIMIT_RPS": "0"}},
		{"relative metrics path", map[string]string{"BOOKING_METRICS_PATH": "metrics"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := tt.env["BOOKING_JWT_SECRET"]; !ok && tt.name != "missing jwt secret" {
				t.Setenv("BOOKING_JWT_SECRET", "a-secret-of-sufficient-length")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
