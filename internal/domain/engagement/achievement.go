package engagement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AchievementType is the closed set of badges a user can earn.
type AchievementType string

const (
	FirstLesson         AchievementType = "FIRST_LESSON"
	ChapterComplete     AchievementType = "CHAPTER_COMPLETE"
	ModuleComplete      AchievementType = "MODULE_COMPLETE"
	Time1H              AchievementType = "TIME_1H"
	Time5H              AchievementType = "TIME_5H"
	Time10H             AchievementType = "TIME_10H"
	Time50H             AchievementType = "TIME_50H"
	ProfileComplete     AchievementType = "PROFILE_COMPLETE"
	SubscriptionPro     AchievementType = "SUBSCRIPTION_PRO"
	SubscriptionPremium AchievementType = "SUBSCRIPTION_PREMIUM"
)

// AllAchievementTypes lists every type in display order.
var AllAchievementTypes = []AchievementType{
	FirstLesson,
	ChapterComplete,
	ModuleComplete,
	Time1H,
	Time5H,
	Time10H,
	Time50H,
	ProfileComplete,
	SubscriptionPro,
	SubscriptionPremium,
}

type Rarity string

const (
	RarityCommon    Rarity = "COMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
)

type Definition struct {
	Type        AchievementType `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Rarity      Rarity          `json:"rarity"`
}

// DefinitionOf returns the static badge definition for t.
func DefinitionOf(t AchievementType) (Definition, bool) {
	d := Definition{Type: t}
	switch t {
	case FirstLesson:
		d.Title, d.Description, d.Icon, d.Rarity = "First Steps", "Completed your first lesson", "🎯", RarityCommon
	case ChapterComplete:
		d.Title, d.Description, d.Icon, d.Rarity = "Chapter Conqueror", "Completed every lesson in a chapter", "📚", RarityCommon
	case ModuleComplete:
		d.Title, d.Description, d.Icon, d.Rarity = "Module Master", "Completed every lesson in a module", "🏆", RarityRare
	case Time1H:
		d.Title, d.Description, d.Icon, d.Rarity = "Active Learner", "Spent 1 hour learning", "⏱️", RarityCommon
	case Time5H:
		d.Title, d.Description, d.Icon, d.Rarity = "Consistent", "Spent 5 hours learning", "⌛", RarityRare
	case Time10H:
		d.Title, d.Description, d.Icon, d.Rarity = "Dedicated", "Spent 10 hours learning", "🔥", RarityEpic
	case Time50H:
		d.Title, d.Description, d.Icon, d.Rarity = "Time Master", "Spent 50 hours learning", "💎", RarityLegendary
	case ProfileComplete:
		d.Title, d.Description, d.Icon, d.Rarity = "Profile Complete", "Filled in nickname, bio and avatar", "👤", RarityCommon
	case SubscriptionPro:
		d.Title, d.Description, d.Icon, d.Rarity = "Pro Learner", "Subscribed to the PRO tier", "⭐", RarityRare
	case SubscriptionPremium:
		d.Title, d.Description, d.Icon, d.Rarity = "Premium Learner", "Subscribed to the PREMIUM tier", "👑", RarityEpic
	default:
		return Definition{}, false
	}
	return d, true
}

// Definitions returns every badge definition in display order.
func Definitions() []Definition {
	out := make([]Definition, 0, len(AllAchievementTypes))
	for _, t := range AllAchievementTypes {
		if d, ok := DefinitionOf(t); ok {
			out = append(out, d)
		}
	}
	return out
}

// Achievement is unique per (user, type, award key).
type Achievement struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID       `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_achievement_award,priority:1" json:"userId"`
	Type     AchievementType `gorm:"not null;column:type;uniqueIndex:idx_achievement_award,priority:2" json:"type"`
	AwardKey string          `gorm:"not null;column:award_key;uniqueIndex:idx_achievement_award,priority:3" json:"-"`
	Title    string          `gorm:"not null;column:title" json:"title"`
	Icon     string          `gorm:"column:icon" json:"icon"`
	Rarity   Rarity          `gorm:"column:rarity" json:"rarity"`
	Metadata datatypes.JSON  `gorm:"column:metadata" json:"metadata"`
	EarnedAt time.Time       `gorm:"not null;column:earned_at;index" json:"earnedAt"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Achievement) TableName() string { return "achievements" }

func (a *Achievement) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.EarnedAt.IsZero() {
		a.EarnedAt = time.Now().UTC()
	}
	return nil
}
