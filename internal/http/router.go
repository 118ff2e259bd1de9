package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/learnit-backend/internal/http/handlers"
	httpMW "github.com/yungbote/learnit-backend/internal/http/middleware"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	TracingEnabled bool
	CORSOrigins    []string

	// AvatarDir is served read-only under AvatarURL.
	AvatarDir string
	AvatarURL string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler       *httpH.HealthHandler
	AuthHandler         *httpH.AuthHandler
	UserHandler         *httpH.UserHandler
	CatalogHandler      *httpH.CatalogHandler
	ProgressHandler     *httpH.ProgressHandler
	SessionHandler      *httpH.SessionHandler
	AchievementHandler  *httpH.AchievementHandler
	NotificationHandler *httpH.NotificationHandler
	SubscriptionHandler *httpH.SubscriptionHandler
	AdminHandler        *httpH.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.AvatarDir != "" && cfg.AvatarURL != "" {
		r.Static(cfg.AvatarURL, cfg.AvatarDir)
	}

	api := r.Group("/api")

	// Public
	if cfg.AuthHandler != nil {
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
	}
	if cfg.CatalogHandler != nil {
		api.GET("/modules", cfg.CatalogHandler.ListModules)
		api.GET("/modules/:id", cfg.CatalogHandler.GetModule)
		api.GET("/modules/:id/prerequisites", cfg.CatalogHandler.Prerequisites)
		api.GET("/modules/:id/roadmap", cfg.CatalogHandler.Roadmap)
		api.GET("/learning-paths", cfg.CatalogHandler.ListPaths)
		api.GET("/learning-paths/:id", cfg.CatalogHandler.GetPath)
	}
	if cfg.SubscriptionHandler != nil {
		api.GET("/subscriptions/tiers", cfg.SubscriptionHandler.Tiers)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.AuthHandler != nil {
			protected.GET("/auth/me", cfg.AuthHandler.Me)
		}

		if cfg.UserHandler != nil {
			protected.PUT("/user/profile", cfg.UserHandler.UpdateProfile)
			protected.PUT("/user/password", cfg.UserHandler.ChangePassword)
			protected.POST("/user/avatar", cfg.UserHandler.UploadAvatar)
		}

		if cfg.ProgressHandler != nil {
			protected.POST("/progress/enroll", cfg.ProgressHandler.Enroll)
			protected.POST("/progress/complete-lesson", cfg.ProgressHandler.CompleteLesson)
			protected.GET("/progress/user", cfg.ProgressHandler.UserProgress)
			protected.GET("/progress/module/:id", cfg.ProgressHandler.ModuleProgress)
			protected.GET("/progress/lesson/:id", cfg.ProgressHandler.Lesson)
		}

		if cfg.SessionHandler != nil {
			protected.POST("/sessions/start", cfg.SessionHandler.Start)
			protected.POST("/sessions/heartbeat", cfg.SessionHandler.Heartbeat)
			protected.POST("/sessions/end", cfg.SessionHandler.End)
			protected.GET("/sessions/stats", cfg.SessionHandler.Stats)
		}

		if cfg.AchievementHandler != nil {
			protected.GET("/achievements", cfg.AchievementHandler.List)
			protected.PUT("/achievements/badge", cfg.AchievementHandler.SelectBadge)
		}

		// Realtime (SSE)
		if cfg.NotificationHandler != nil {
			protected.GET("/notifications", cfg.NotificationHandler.List)
			protected.GET("/notifications/stream", cfg.NotificationHandler.Stream)
			protected.PUT("/notifications/read-all", cfg.NotificationHandler.MarkAllRead)
			protected.PUT("/notifications/:id/read", cfg.NotificationHandler.MarkRead)
		}

		if cfg.SubscriptionHandler != nil {
			protected.GET("/subscriptions/current", cfg.SubscriptionHandler.Current)
			protected.POST("/subscriptions/subscribe", cfg.SubscriptionHandler.Subscribe)
			protected.PUT("/subscriptions/upgrade", cfg.SubscriptionHandler.Upgrade)
			protected.PUT("/subscriptions/modules", cfg.SubscriptionHandler.UpdateModules)
		}
	}

	if cfg.AdminHandler != nil && cfg.AuthMiddleware != nil {
		admin := protected.Group("/admin")
		admin.Use(cfg.AuthMiddleware.RequireAdmin())

		admin.GET("/stats", cfg.AdminHandler.Stats)
		admin.GET("/activity", cfg.AdminHandler.Activity)
		admin.GET("/user-progress", cfg.AdminHandler.UserProgress)

		admin.GET("/modules", cfg.AdminHandler.ListModules)
		admin.POST("/modules", cfg.AdminHandler.CreateModule)
		admin.GET("/modules/:id", cfg.AdminHandler.GetModule)
		admin.PUT("/modules/:id", cfg.AdminHandler.UpdateModule)
		admin.DELETE("/modules/:id", cfg.AdminHandler.DeleteModule)
		admin.POST("/modules/:id/chapters", cfg.AdminHandler.CreateChapter)

		admin.PUT("/chapters/:id", cfg.AdminHandler.UpdateChapter)
		admin.DELETE("/chapters/:id", cfg.AdminHandler.DeleteChapter)
		admin.POST("/chapters/:id/lessons", cfg.AdminHandler.CreateLesson)

		admin.PUT("/lessons/:id", cfg.AdminHandler.UpdateLesson)
		admin.DELETE("/lessons/:id", cfg.AdminHandler.DeleteLesson)

		admin.GET("/users", cfg.AdminHandler.ListUsers)
		admin.GET("/users/:id", cfg.AdminHandler.GetUser)
		admin.PUT("/users/:id/role", cfg.AdminHandler.UpdateRole)
		admin.DELETE("/users/:id", cfg.AdminHandler.DeleteUser)
	}

	return r
}
