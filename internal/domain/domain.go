package domain

import (
	"github.com/yungbote/learnit-backend/internal/domain/billing"
	"github.com/yungbote/learnit-backend/internal/domain/engagement"
	"github.com/yungbote/learnit-backend/internal/domain/learning"
	"github.com/yungbote/learnit-backend/internal/domain/user"
)

type (
	User    = user.User
	Profile = user.Profile
	Role    = user.Role

	Module             = learning.Module
	Chapter            = learning.Chapter
	Lesson             = learning.Lesson
	Category           = learning.Category
	Difficulty         = learning.Difficulty
	LearningPath       = learning.LearningPath
	ModulePrerequisite = learning.ModulePrerequisite
	Enrollment         = learning.Enrollment
	UserProgress       = learning.UserProgress
	LearningSession    = learning.LearningSession

	Achievement      = engagement.Achievement
	AchievementType  = engagement.AchievementType
	Rarity           = engagement.Rarity
	Definition       = engagement.Definition
	AwardKey         = engagement.AwardKey
	Notification     = engagement.Notification
	NotificationType = engagement.NotificationType

	SubscriptionTier = billing.SubscriptionTier
	TierName         = billing.TierName
	UserSubscription = billing.UserSubscription
)

const (
	RoleUser  = user.RoleUser
	RoleAdmin = user.RoleAdmin

	TierBasic   = billing.TierBasic
	TierPro     = billing.TierPro
	TierPremium = billing.TierPremium
)

// AllModels is the AutoMigrate set, in creation order.
func AllModels() []any {
	return []any{
		&user.User{},
		&user.Profile{},
		&learning.Module{},
		&learning.Chapter{},
		&learning.Lesson{},
		&learning.LearningPath{},
		&learning.ModulePrerequisite{},
		&learning.Enrollment{},
		&learning.UserProgress{},
		&learning.LearningSession{},
		&engagement.Achievement{},
		&engagement.Notification{},
		&billing.SubscriptionTier{},
		&billing.UserSubscription{},
	}
}
