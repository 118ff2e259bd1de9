package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LearningPath is an ordered grouping of modules.
type LearningPath struct {
	ID          uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string                         `gorm:"not null;column:title" json:"title"`
	Slug        string                         `gorm:"not null;uniqueIndex;column:slug" json:"slug"`
	Description string                         `gorm:"column:description" json:"description"`
	ModuleIDs   datatypes.JSONSlice[uuid.UUID] `gorm:"column:module_ids" json:"moduleIds"`
	Order       int                            `gorm:"not null;column:sort_order" json:"order"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (LearningPath) TableName() string { return "learning_paths" }

func (p *LearningPath) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type ModulePrerequisite struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID       uuid.UUID `gorm:"type:uuid;not null;column:module_id;uniqueIndex:idx_prereq_pair,priority:1" json:"moduleId"`
	PrerequisiteID uuid.UUID `gorm:"type:uuid;not null;column:prerequisite_id;uniqueIndex:idx_prereq_pair,priority:2;index" json:"prerequisiteId"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (ModulePrerequisite) TableName() string { return "module_prerequisites" }

func (p *ModulePrerequisite) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
