package billing

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

type TierRepo interface {
	List(dbc dbctx.Context) ([]*types.SubscriptionTier, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SubscriptionTier, error)
	GetByName(dbc dbctx.Context, name types.TierName) (*types.SubscriptionTier, error)
	// Upsert inserts or refreshes tiers by name.
	Upsert(dbc dbctx.Context, tiers []*types.SubscriptionTier) error
}

type tierRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTierRepo(db *gorm.DB, baseLog *logger.Logger) TierRepo {
	return &tierRepo{db: db, log: baseLog.With("repo", "TierRepo")}
}

func (r *tierRepo) List(dbc dbctx.Context) ([]*types.SubscriptionTier, error) {
	var rows []*types.SubscriptionTier
	if err := dbc.DB(r.db).Order("price ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *tierRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SubscriptionTier, error) {
	var row types.SubscriptionTier
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *tierRepo) GetByName(dbc dbctx.Context, name types.TierName) (*types.SubscriptionTier, error) {
	var row types.SubscriptionTier
	if err := dbc.DB(r.db).Where("name = ?", name).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *tierRepo) Upsert(dbc dbctx.Context, tiers []*types.SubscriptionTier) error {
	if len(tiers) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "module_limit", "price", "features", "updated_at"}),
		}).
		Create(&tiers).Error
}
