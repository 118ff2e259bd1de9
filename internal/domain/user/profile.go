package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the 1:1 public face of a User.
type Profile struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:user_id" json:"userId"`
	Nickname      string    `gorm:"column:nickname" json:"nickname"`
	Bio           string    `gorm:"column:bio" json:"bio"`
	AvatarURL     string    `gorm:"column:avatar_url" json:"avatarUrl"`
	SelectedBadge *string   `gorm:"column:selected_badge" json:"selectedBadge"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Profile) TableName() string { return "profiles" }

func (p *Profile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Complete reports whether every user-editable field is filled in.
func (p *Profile) Complete() bool {
	if p == nil {
		return false
	}
	return strings.TrimSpace(p.Nickname) != "" &&
		strings.TrimSpace(p.Bio) != "" &&
		strings.TrimSpace(p.AvatarURL) != ""
}
