package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/data/repos"
	"github.com/yungbote/learnit-backend/internal/platform/cache"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
	"github.com/yungbote/learnit-backend/internal/realtime/bus"
	"github.com/yungbote/learnit-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	User         services.UserService
	Avatar       services.AvatarService
	Catalog      services.CatalogService
	Enrollment   services.EnrollmentService
	Progress     services.ProgressService
	Session      services.SessionService
	Achievement  services.AchievementService
	Notification services.NotificationService
	Subscription services.SubscriptionService
	Admin        services.AdminService
	AdminContent services.AdminContentService
	AdminUser    services.AdminUserService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r repos.Set, b bus.Bus, c cache.Cache) (Services, error) {
	log.Info("Wiring services...")

	avatars, err := services.NewAvatarService(log, cfg.AvatarDir, cfg.AvatarURL)
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}

	notifications := services.NewNotificationService(db, log, r.Notification, b)
	achievements := services.NewAchievementService(db, log, r.Achievement, r.Session, r.Profile, notifications)
	subscriptions := services.NewSubscriptionService(db, log, r.Tier, r.Subscription, r.Module, achievements, notifications, c, cfg.CatalogCacheTTL)
	catalog := services.NewCatalogService(db, log, r.Module, r.Path, c, cfg.CatalogCacheTTL)

	return Services{
		Auth:         services.NewAuthService(db, log, r.User, r.Profile, subscriptions, avatars, cfg.JWTSecret, cfg.JWTExpiresIn),
		User:         services.NewUserService(db, log, r.User, r.Profile, avatars, achievements),
		Avatar:       avatars,
		Catalog:      catalog,
		Enrollment:   services.NewEnrollmentService(db, log, r.Module, r.Enrollment, r.Subscription),
		Progress:     services.NewProgressService(db, log, r.Module, r.Lesson, r.Enrollment, r.Progress, achievements, notifications),
		Session:      services.NewSessionService(db, log, r.Session, r.Lesson, r.Module, achievements),
		Achievement:  achievements,
		Notification: notifications,
		Subscription: subscriptions,
		Admin:        services.NewAdminService(db, log, r.User, r.Module, r.Lesson, r.Enrollment, r.Progress, r.Notification),
		AdminContent: services.NewAdminContentService(db, log, r.Module, r.Chapter, r.Lesson, r.Path, r.Subscription, catalog),
		AdminUser:    services.NewAdminUserService(db, log, r.User, r.Enrollment, r.Progress, r.Achievement, r.Subscription),
	}, nil
}
