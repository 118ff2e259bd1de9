package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/learnit-backend/internal/data/db"
	httpMW "github.com/yungbote/learnit-backend/internal/http/middleware"
	"github.com/yungbote/learnit-backend/internal/observability"
	"github.com/yungbote/learnit-backend/internal/platform/envutil"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
	"github.com/yungbote/learnit-backend/internal/realtime/bus"
)

const devJWTSecret = "learnit-dev-secret"

type Config struct {
	Env  string
	Port int

	DB db.Config

	JWTSecret    string
	JWTExpiresIn time.Duration

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisChannel    string
	CatalogCacheTTL time.Duration

	AvatarDir string
	AvatarURL string

	CORSOrigins []string
	Otel        observability.OtelConfig

	SeedOnStart bool
}

func (c Config) Production() bool { return c.Env == "production" }

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// LoadEnv reads .env when present. A missing file is not an error.
func LoadEnv(log *logger.Logger) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", "error", err)
	}
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Env:  strings.ToLower(envutil.String("APP_ENV", "development")),
		Port: envutil.Int("API_PORT", 3001),
		DB: db.Config{
			Driver:      strings.ToLower(envutil.String("DB_DRIVER", db.DriverPostgres)),
			DatabaseURL: envutil.String("DATABASE_URL", ""),
			SQLitePath:  envutil.String("SQLITE_PATH", "learnit.db"),
		},
		JWTSecret:       envutil.String("JWT_SECRET", ""),
		JWTExpiresIn:    envutil.Duration("JWT_EXPIRES_IN", 7*24*time.Hour),
		RedisAddr:       envutil.String("REDIS_ADDR", ""),
		RedisPassword:   envutil.String("REDIS_PASSWORD", ""),
		RedisDB:         envutil.Int("REDIS_DB", 0),
		RedisChannel:    envutil.String("REDIS_CHANNEL", bus.DefaultChannel),
		CatalogCacheTTL: envutil.Duration("CATALOG_CACHE_TTL", 5*time.Minute),
		AvatarDir:       envutil.String("AVATAR_DIR", "data/avatars"),
		AvatarURL:       envutil.String("AVATAR_BASE_URL", "/static/avatars"),
		CORSOrigins:     envutil.List("CORS_ALLOWED_ORIGINS", httpMW.DefaultOrigins),
		SeedOnStart:     envutil.Bool("SEED_ON_START", false),
	}
	cfg.Otel = observability.OtelConfig{
		Enabled:     envutil.Bool("OTEL_ENABLED", false),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "learnit-api"),
		Environment: cfg.Env,
		Version:     envutil.String("APP_VERSION", "dev"),
		Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
		SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1),
	}

	if cfg.DB.Driver == db.DriverPostgres && cfg.DB.DatabaseURL == "" {
		host := envutil.String("POSTGRES_HOST", "")
		if host != "" {
			cfg.DB.DatabaseURL = db.PostgresURL(
				host,
				envutil.String("POSTGRES_PORT", "5432"),
				envutil.String("POSTGRES_USER", "postgres"),
				envutil.String("POSTGRES_PASSWORD", ""),
				envutil.String("POSTGRES_NAME", "learnit"),
			)
		}
	}

	if cfg.JWTSecret == "" {
		if cfg.Production() {
			return Config{}, fmt.Errorf("JWT_SECRET is required in production")
		}
		log.Warn("JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devJWTSecret
	}
	return cfg, nil
}
