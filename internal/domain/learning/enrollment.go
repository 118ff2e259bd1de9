package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enrollment is unique per (user, module).
type Enrollment struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_enrollment_user_module,priority:1" json:"userId"`
	ModuleID       uuid.UUID `gorm:"type:uuid;not null;column:module_id;uniqueIndex:idx_enrollment_user_module,priority:2;index" json:"moduleId"`
	EnrolledAt     time.Time `gorm:"not null;column:enrolled_at" json:"enrolledAt"`
	LastAccessedAt time.Time `gorm:"not null;column:last_accessed_at" json:"lastAccessedAt"`

	Module *Module `gorm:"foreignKey:ModuleID" json:"module,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Enrollment) TableName() string { return "enrollments" }

func (e *Enrollment) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now().UTC()
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = now
	}
	if e.LastAccessedAt.IsZero() {
		e.LastAccessedAt = e.EnrolledAt
	}
	return nil
}

// UserProgress is unique per (user, lesson); completing again only refreshes CompletedAt.
type UserProgress struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_progress_user_lesson,priority:1" json:"userId"`
	LessonID    uuid.UUID  `gorm:"type:uuid;not null;column:lesson_id;uniqueIndex:idx_progress_user_lesson,priority:2;index" json:"lessonId"`
	Completed   bool       `gorm:"not null;column:completed" json:"completed"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (UserProgress) TableName() string { return "user_progress" }

func (p *UserProgress) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Percent is round(done*100/total), 0 for an empty set.
func Percent(done, total int) int {
	if total <= 0 || done <= 0 {
		return 0
	}
	if done > total {
		done = total
	}
	return (done*200 + total) / (2 * total)
}
