package user

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

type ProfileRepo interface {
	Ensure(dbc dbctx.Context, userID uuid.UUID, nickname string) (*types.Profile, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error)
	UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]any) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

// Ensure creates the profile if it does not exist and returns the stored row.
func (r *profileRepo) Ensure(dbc dbctx.Context, userID uuid.UUID, nickname string) (*types.Profile, error) {
	row := &types.Profile{UserID: userID, Nickname: nickname}
	if err := dbc.DB(r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByUserID(dbc, userID)
}

func (r *profileRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error) {
	var row types.Profile
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *profileRepo) UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Profile{}).Where("user_id = ?", userID).Updates(updates).Error
}
