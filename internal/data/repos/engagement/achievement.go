package engagement

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

type AchievementRepo interface {
	Create(dbc dbctx.Context, a *types.Achievement) error
	Exists(dbc dbctx.Context, userID uuid.UUID, t types.AchievementType, awardKey string) (bool, error)
	GetOwned(dbc dbctx.Context, userID, id uuid.UUID) (*types.Achievement, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Achievement, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return &achievementRepo{db: db, log: baseLog.With("repo", "AchievementRepo")}
}

func (r *achievementRepo) Create(dbc dbctx.Context, a *types.Achievement) error {
	return dbc.DB(r.db).Create(a).Error
}

func (r *achievementRepo) Exists(dbc dbctx.Context, userID uuid.UUID, t types.AchievementType, awardKey string) (bool, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.Achievement{}).
		Where("user_id = ? AND type = ? AND award_key = ?", userID, t, awardKey).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *achievementRepo) GetOwned(dbc dbctx.Context, userID, id uuid.UUID) (*types.Achievement, error) {
	var row types.Achievement
	if err := dbc.DB(r.db).Where("id = ? AND user_id = ?", id, userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *achievementRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Achievement, error) {
	var rows []*types.Achievement
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
