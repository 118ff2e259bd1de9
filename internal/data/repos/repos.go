package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/data/repos/billing"
	"github.com/yungbote/learnit-backend/internal/data/repos/engagement"
	"github.com/yungbote/learnit-backend/internal/data/repos/learning"
	"github.com/yungbote/learnit-backend/internal/data/repos/user"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type ProfileRepo = user.ProfileRepo
type UserListFilter = user.ListFilter

type ModuleRepo = learning.ModuleRepo
type ModuleCounts = learning.ModuleCounts
type ChapterRepo = learning.ChapterRepo
type LessonRepo = learning.LessonRepo
type LessonPlacement = learning.LessonPlacement
type EnrollmentRepo = learning.EnrollmentRepo
type ProgressRepo = learning.ProgressRepo
type SessionRepo = learning.SessionRepo
type ModuleTime = learning.ModuleTime
type PathRepo = learning.PathRepo

type AchievementRepo = engagement.AchievementRepo
type NotificationRepo = engagement.NotificationRepo

type TierRepo = billing.TierRepo
type SubscriptionRepo = billing.SubscriptionRepo

// Set is every repo the services depend on.
type Set struct {
	User         UserRepo
	Profile      ProfileRepo
	Module       ModuleRepo
	Chapter      ChapterRepo
	Lesson       LessonRepo
	Enrollment   EnrollmentRepo
	Progress     ProgressRepo
	Session      SessionRepo
	Path         PathRepo
	Achievement  AchievementRepo
	Notification NotificationRepo
	Tier         TierRepo
	Subscription SubscriptionRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		User:         user.NewUserRepo(db, baseLog),
		Profile:      user.NewProfileRepo(db, baseLog),
		Module:       learning.NewModuleRepo(db, baseLog),
		Chapter:      learning.NewChapterRepo(db, baseLog),
		Lesson:       learning.NewLessonRepo(db, baseLog),
		Enrollment:   learning.NewEnrollmentRepo(db, baseLog),
		Progress:     learning.NewProgressRepo(db, baseLog),
		Session:      learning.NewSessionRepo(db, baseLog),
		Path:         learning.NewPathRepo(db, baseLog),
		Achievement:  engagement.NewAchievementRepo(db, baseLog),
		Notification: engagement.NewNotificationRepo(db, baseLog),
		Tier:         billing.NewTierRepo(db, baseLog),
		Subscription: billing.NewSubscriptionRepo(db, baseLog),
	}
}
