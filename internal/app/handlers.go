package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnit-backend/internal/http"
	httpH "github.com/yungbote/learnit-backend/internal/http/handlers"
	httpMW "github.com/yungbote/learnit-backend/internal/http/middleware"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
	"github.com/yungbote/learnit-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Auth         *httpH.AuthHandler
	User         *httpH.UserHandler
	Catalog      *httpH.CatalogHandler
	Progress     *httpH.ProgressHandler
	Session      *httpH.SessionHandler
	Achievement  *httpH.AchievementHandler
	Notification *httpH.NotificationHandler
	Subscription *httpH.SubscriptionHandler
	Admin        *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, s Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(),
		Auth:         httpH.NewAuthHandler(s.Auth),
		User:         httpH.NewUserHandler(s.User),
		Catalog:      httpH.NewCatalogHandler(s.Catalog),
		Progress:     httpH.NewProgressHandler(s.Enrollment, s.Progress),
		Session:      httpH.NewSessionHandler(s.Session),
		Achievement:  httpH.NewAchievementHandler(s.Achievement),
		Notification: httpH.NewNotificationHandler(log, s.Notification, hub),
		Subscription: httpH.NewSubscriptionHandler(s.Subscription),
		Admin:        httpH.NewAdminHandler(s.Admin, s.AdminContent, s.AdminUser),
	}
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, s.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, h Handlers, mw Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:                 log,
		ServiceName:         cfg.Otel.ServiceName,
		TracingEnabled:      cfg.Otel.Enabled,
		CORSOrigins:         cfg.CORSOrigins,
		AvatarDir:           cfg.AvatarDir,
		AvatarURL:           cfg.AvatarURL,
		AuthMiddleware:      mw.Auth,
		HealthHandler:       h.Health,
		AuthHandler:         h.Auth,
		UserHandler:         h.User,
		CatalogHandler:      h.Catalog,
		ProgressHandler:     h.Progress,
		SessionHandler:      h.Session,
		AchievementHandler:  h.Achievement,
		NotificationHandler: h.Notification,
		SubscriptionHandler: h.Subscription,
		AdminHandler:        h.Admin,
	})
}
