package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TierName string

const (
	TierBasic   TierName = "BASIC"
	TierPro     TierName = "PRO"
	TierPremium TierName = "PREMIUM"
)

// SubscriptionTier is static reference data. A nil ModuleLimit means unlimited.
type SubscriptionTier struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Name        TierName                    `gorm:"not null;uniqueIndex;column:name" json:"name"`
	DisplayName string                      `gorm:"not null;column:display_name" json:"displayName"`
	ModuleLimit *int                        `gorm:"column:module_limit" json:"moduleLimit"`
	Price       int                         `gorm:"not null;column:price" json:"price"`
	Features    datatypes.JSONSlice[string] `gorm:"column:features" json:"features"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (SubscriptionTier) TableName() string { return "subscription_tiers" }

func (t *SubscriptionTier) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Unlimited reports whether the tier has no module cap.
func (t *SubscriptionTier) Unlimited() bool { return t.ModuleLimit == nil }

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

// UserSubscription is 1:1 with a user. SelectedModules only matters on PRO.
type UserSubscription struct {
	ID              uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID                      `gorm:"type:uuid;not null;uniqueIndex;column:user_id" json:"userId"`
	TierID          uuid.UUID                      `gorm:"type:uuid;not null;column:tier_id;index" json:"tierId"`
	SelectedModules datatypes.JSONSlice[uuid.UUID] `gorm:"column:selected_modules" json:"selectedModules"`
	Status          Status                         `gorm:"not null;column:status" json:"status"`
	StartDate       time.Time                      `gorm:"not null;column:start_date" json:"startDate"`
	EndDate         *time.Time                     `gorm:"column:end_date" json:"endDate"`

	Tier *SubscriptionTier `gorm:"foreignKey:TierID" json:"tier,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (UserSubscription) TableName() string { return "user_subscriptions" }

func (s *UserSubscription) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = StatusActive
	}
	if s.StartDate.IsZero() {
		s.StartDate = time.Now().UTC()
	}
	if s.SelectedModules == nil {
		s.SelectedModules = datatypes.JSONSlice[uuid.UUID]{}
	}
	return nil
}

// HasModule reports whether id is in the PRO bundle.
func (s *UserSubscription) HasModule(id uuid.UUID) bool {
	for _, m := range s.SelectedModules {
		if m == id {
			return true
		}
	}
	return false
}
