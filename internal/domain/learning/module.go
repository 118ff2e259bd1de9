package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryAndroid     Category = "ANDROID_DEV"
	CategoryIOS         Category = "IOS_DEV"
	CategoryWeb         Category = "WEB_DEV"
	CategoryFundamental Category = "FUNDAMENTAL"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryAndroid, CategoryIOS, CategoryWeb, CategoryFundamental:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "BEGINNER"
	DifficultyIntermediate Difficulty = "INTERMEDIATE"
	DifficultyAdvanced     Difficulty = "ADVANCED"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Module is a course unit. Slug is globally unique.
type Module struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string    `gorm:"not null;column:title" json:"title"`
	Slug           string    `gorm:"not null;uniqueIndex;column:slug" json:"slug"`
	Description    string    `gorm:"not null;column:description" json:"description"`
	ThumbnailURL   string    `gorm:"column:thumbnail_url" json:"thumbnailUrl"`
	Category       Category  `gorm:"not null;column:category;index" json:"category"`
	EstimatedHours int       `gorm:"not null;column:estimated_hours" json:"estimatedHours"`
	Order          int       `gorm:"not null;column:sort_order" json:"order"`
	IsPublished    bool      `gorm:"not null;column:is_published" json:"isPublished"`

	Chapters []Chapter `gorm:"foreignKey:ModuleID" json:"chapters,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Module) TableName() string { return "modules" }

func (m *Module) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Chapter order is unique within its module; gaps are allowed.
type Chapter struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID    uuid.UUID `gorm:"type:uuid;not null;column:module_id;uniqueIndex:idx_chapter_module_order,priority:1" json:"moduleId"`
	Title       string    `gorm:"not null;column:title" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Order       int       `gorm:"not null;column:sort_order;uniqueIndex:idx_chapter_module_order,priority:2" json:"order"`

	Lessons []Lesson `gorm:"foreignKey:ChapterID" json:"lessons,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Chapter) TableName() string { return "chapters" }

func (c *Chapter) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Lesson struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ChapterID        uuid.UUID  `gorm:"type:uuid;not null;column:chapter_id;uniqueIndex:idx_lesson_chapter_order,priority:1" json:"chapterId"`
	Title            string     `gorm:"not null;column:title" json:"title"`
	Content          string     `gorm:"type:text;column:content" json:"content"`
	VideoURL         string     `gorm:"column:video_url" json:"videoUrl"`
	Order            int        `gorm:"not null;column:sort_order;uniqueIndex:idx_lesson_chapter_order,priority:2" json:"order"`
	EstimatedMinutes int        `gorm:"not null;column:estimated_minutes" json:"estimatedMinutes"`
	Difficulty       Difficulty `gorm:"not null;column:difficulty" json:"difficulty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Lesson) TableName() string { return "lessons" }

func (l *Lesson) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.EstimatedMinutes <= 0 {
		l.EstimatedMinutes = DefaultLessonMinutes
	}
	if l.Difficulty == "" {
		l.Difficulty = DifficultyBeginner
	}
	return nil
}

const DefaultLessonMinutes = 15
