package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnit-backend/internal/data/db"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"APP_ENV", "API_PORT", "DB_DRIVER", "DATABASE_URL", "SQLITE_PATH",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_NAME",
		"JWT_SECRET", "JWT_EXPIRES_IN", "REDIS_ADDR", "REDIS_CHANNEL", "CATALOG_CACHE_TTL",
		"CORS_ALLOWED_ORIGINS", "OTEL_ENABLED", "OTEL_SAMPLER_RATIO", "SEED_ON_START",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":3001", cfg.Addr())
	assert.Equal(t, db.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, "learnit:notifications", cfg.RedisChannel)
	assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	assert.Equal(t, "/static/avatars", cfg.AvatarURL)
	assert.NotEmpty(t, cfg.CORSOrigins)
	assert.False(t, cfg.Otel.Enabled)
	assert.False(t, cfg.SeedOnStart)
}

func TestLoadConfigProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	_, err := LoadConfig(logger.Nop())
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := LoadConfig(logger.Nop())
	require.NoError(t, err)
	assert.True(t, cfg.Production())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestLoadConfigAssemblesPostgresURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_USER", "lms")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("JWT_EXPIRES_IN", "7d")
	t.Setenv("API_PORT", "8080")

	cfg, err := LoadConfig(logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "postgres://lms:pw@db:5432/learnit?sslmode=disable", cfg.DB.DatabaseURL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, ":8080", cfg.Addr())
}
