package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/learnit-backend/internal/data/db"
	"github.com/yungbote/learnit-backend/internal/data/repos"
	"github.com/yungbote/learnit-backend/internal/data/seed"
	"github.com/yungbote/learnit-backend/internal/http"
	"github.com/yungbote/learnit-backend/internal/http/response"
	"github.com/yungbote/learnit-backend/internal/observability"
	"github.com/yungbote/learnit-backend/internal/platform/cache"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
	"github.com/yungbote/learnit-backend/internal/realtime"
	"github.com/yungbote/learnit-backend/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Repos    repos.Set
	Services Services
	Hub      *realtime.SSEHub
	Bus      bus.Bus
	Router   *gin.Engine

	redis        *goredis.Client
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// Open connects and migrates the database. The CLI uses it directly for
// migrate, seed, and create-admin.
func Open(cfg Config, log *logger.Logger) (*db.Service, error) {
	svc, err := db.Open(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		_ = svc.Close()
		return nil, err
	}
	return svc, nil
}

func New(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	response.ExposeDetail(!cfg.Production())
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	database, err := Open(cfg, log)
	if err != nil {
		return nil, err
	}
	theDB := database.DB()

	hub := realtime.NewSSEHub(log)
	reposet := repos.NewSet(theDB, log)

	var (
		rdb *goredis.Client
		b   bus.Bus
		c   cache.Cache
	)
	if cfg.RedisAddr != "" {
		rdb, err = connectRedis(ctx, cfg)
		if err != nil {
			_ = database.Close()
			return nil, err
		}
		b, err = bus.NewRedisBus(rdb, cfg.RedisChannel, log)
		if err != nil {
			_ = rdb.Close()
			_ = database.Close()
			return nil, err
		}
		c = cache.NewRedis(rdb, log)
		log.Info("redis enabled", "addr", cfg.RedisAddr, "channel", cfg.RedisChannel)
	} else {
		b = bus.NewLocal(hub)
		c = cache.Nop()
	}

	serviceset, err := wireServices(theDB, log, cfg, reposet, b, c)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		_ = database.Close()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset, hub)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, handlerset, middleware)

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           database,
		Repos:        reposet,
		Services:     serviceset,
		Hub:          hub,
		Bus:          b,
		Router:       router,
		redis:        rdb,
		otelShutdown: otelShutdown,
	}, nil
}

func connectRedis(ctx context.Context, cfg Config) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Start runs the background pieces: the bus forwarder into the local hub and
// the optional startup seed.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.Bus.StartForwarder(ctx, a.Hub.Broadcast); err != nil {
		return fmt.Errorf("start bus forwarder: %w", err)
	}

	if a.Cfg.SeedOnStart {
		catalog, err := seed.Load()
		if err != nil {
			return err
		}
		res, err := seed.NewSeeder(a.DB.DB(), a.Log, a.Repos).Run(dbctx.New(ctx), catalog)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		a.Log.Info("seed complete", "tiers", res.Tiers, "modules", res.Modules, "paths", res.Paths)
	}
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("listening", "addr", a.Cfg.Addr())
	return http.NewServer(a.Router).Run(ctx, a.Cfg.Addr())
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Bus != nil {
		_ = a.Bus.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.otelShutdown(ctx)
	}
	a.Log.Sync()
}
