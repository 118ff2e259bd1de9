package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// MaxSessionSeconds bounds what a single session can contribute.
	MaxSessionSeconds = 3600
	// StaleAfter is the heartbeat liveness window.
	StaleAfter = 2 * time.Minute
)

// LearningSession tracks time on a lesson. At most one per user is active.
type LearningSession struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;column:user_id;index:idx_session_user_active,priority:1" json:"userId"`
	LessonID  uuid.UUID  `gorm:"type:uuid;not null;column:lesson_id;index" json:"lessonId"`
	ModuleID  uuid.UUID  `gorm:"type:uuid;not null;column:module_id;index" json:"moduleId"`
	StartTime time.Time  `gorm:"not null;column:start_time" json:"startTime"`
	LastPing  time.Time  `gorm:"not null;column:last_ping" json:"lastPing"`
	EndTime   *time.Time `gorm:"column:end_time" json:"endTime"`
	Duration  *int       `gorm:"column:duration" json:"duration"`
	IsActive  bool       `gorm:"not null;column:is_active;index:idx_session_user_active,priority:2" json:"isActive"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (LearningSession) TableName() string { return "learning_sessions" }

func (s *LearningSession) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ClampDuration returns end-start in whole seconds, bounded to [0, MaxSessionSeconds].
func ClampDuration(start, end time.Time) int {
	secs := int(end.Sub(start) / time.Second)
	if secs < 0 {
		return 0
	}
	if secs > MaxSessionSeconds {
		return MaxSessionSeconds
	}
	return secs
}

// IsStale reports whether the last heartbeat is older than the liveness window.
func (s *LearningSession) IsStale(now time.Time) bool {
	return now.Sub(s.LastPing) > StaleAfter
}
