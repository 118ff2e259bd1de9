package engagement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotifyLessonComplete  NotificationType = "LESSON_COMPLETE"
	NotifyChapterComplete NotificationType = "CHAPTER_COMPLETE"
	NotifyModuleComplete  NotificationType = "MODULE_COMPLETE"
	NotifyAchievement     NotificationType = "ACHIEVEMENT"
	NotifySubscription    NotificationType = "SUBSCRIPTION"
	NotifySystem          NotificationType = "SYSTEM"
)

// Notification is append-only; only Read ever changes.
type Notification struct {
	ID       uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID        `gorm:"type:uuid;not null;column:user_id;index:idx_notification_user_created,priority:1" json:"userId"`
	Type     NotificationType `gorm:"not null;column:type" json:"type"`
	Title    string           `gorm:"not null;column:title" json:"title"`
	Message  string           `gorm:"not null;column:message" json:"message"`
	Icon     string           `gorm:"column:icon" json:"icon"`
	Metadata datatypes.JSON   `gorm:"column:metadata" json:"metadata"`
	Read     bool             `gorm:"not null;column:read" json:"read"`

	CreatedAt time.Time `gorm:"not null;index:idx_notification_user_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if len(n.Metadata) == 0 {
		n.Metadata = datatypes.JSON([]byte("{}"))
	}
	return nil
}
