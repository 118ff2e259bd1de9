package engagement

import (
	"encoding/json"

	"github.com/google/uuid"
)

// AwardKey identifies one awardable instance. Two keys are the same award
// when Type and Instance match.
type AwardKey interface {
	Type() AchievementType
	Instance() string
	Metadata() map[string]any
}

// SingleKey is for types a user can hold at most once.
type SingleKey struct {
	T AchievementType
}

func (k SingleKey) Type() AchievementType    { return k.T }
func (k SingleKey) Instance() string         { return "" }
func (k SingleKey) Metadata() map[string]any { return nil }

type ChapterCompleteKey struct {
	ChapterID    uuid.UUID
	ChapterTitle string
	ModuleID     uuid.UUID
}

func (k ChapterCompleteKey) Type() AchievementType { return ChapterComplete }
func (k ChapterCompleteKey) Instance() string      { return "chapter:" + k.ChapterID.String() }
func (k ChapterCompleteKey) Metadata() map[string]any {
	return map[string]any{
		"chapterId":    k.ChapterID.String(),
		"chapterTitle": k.ChapterTitle,
		"moduleId":     k.ModuleID.String(),
	}
}

type ModuleCompleteKey struct {
	ModuleID    uuid.UUID
	ModuleTitle string
}

func (k ModuleCompleteKey) Type() AchievementType { return ModuleComplete }
func (k ModuleCompleteKey) Instance() string      { return "module:" + k.ModuleID.String() }
func (k ModuleCompleteKey) Metadata() map[string]any {
	return map[string]any{
		"moduleId":    k.ModuleID.String(),
		"moduleTitle": k.ModuleTitle,
	}
}

// MetadataJSON encodes k's metadata, "{}" when there is none.
func MetadataJSON(k AwardKey) []byte {
	md := k.Metadata()
	if len(md) == 0 {
		return []byte("{}")
	}
	raw, err := json.Marshal(md)
	if err != nil {
		return []byte("{}")
	}
	return raw
}

// TimeThreshold pairs a learning-minutes threshold with its badge.
type TimeThreshold struct {
	Minutes int
	Type    AchievementType
}

var TimeThresholds = []TimeThreshold{
	{Minutes: 60, Type: Time1H},
	{Minutes: 300, Type: Time5H},
	{Minutes: 600, Type: Time10H},
	{Minutes: 3000, Type: Time50H},
}

// TierAchievement maps a subscription tier name to its badge, if any.
func TierAchievement(tier string) (AchievementType, bool) {
	switch tier {
	case "PRO":
		return SubscriptionPro, true
	case "PREMIUM":
		return SubscriptionPremium, true
	}
	return "", false
}
