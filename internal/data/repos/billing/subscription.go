package billing

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

type SubscriptionRepo interface {
	Create(dbc dbctx.Context, s *types.UserSubscription) error
	// GetByUser returns the subscription with its tier preloaded, or nil.
	GetByUser(dbc dbctx.Context, userID uuid.UUID) (*types.UserSubscription, error)
	ListWithModule(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.UserSubscription, error)
	Save(dbc dbctx.Context, s *types.UserSubscription) error
}

type subscriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	return &subscriptionRepo{db: db, log: baseLog.With("repo", "SubscriptionRepo")}
}

func (r *subscriptionRepo) Create(dbc dbctx.Context, s *types.UserSubscription) error {
	return dbc.DB(r.db).Omit("Tier").Create(s).Error
}

func (r *subscriptionRepo) GetByUser(dbc dbctx.Context, userID uuid.UUID) (*types.UserSubscription, error) {
	var row types.UserSubscription
	if err := dbc.DB(r.db).Preload("Tier").Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// ListWithModule scans PRO selections for moduleID; selections are JSON so the
// match happens here rather than in SQL.
func (r *subscriptionRepo) ListWithModule(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.UserSubscription, error) {
	var rows []*types.UserSubscription
	if err := dbc.DB(r.db).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, s := range rows {
		if s.HasModule(moduleID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *subscriptionRepo) Save(dbc dbctx.Context, s *types.UserSubscription) error {
	return dbc.DB(r.db).Omit("Tier").Save(s).Error
}
