package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

// ModuleTime is the learning time accrued on one module.
type ModuleTime struct {
	ModuleID uuid.UUID `gorm:"column:module_id" json:"moduleId"`
	Seconds  int64     `gorm:"column:seconds" json:"seconds"`
	Sessions int64     `gorm:"column:sessions" json:"sessions"`
}

type SessionRepo interface {
	Create(dbc dbctx.Context, s *types.LearningSession) error
	GetOwned(dbc dbctx.Context, userID, sessionID uuid.UUID) (*types.LearningSession, error)
	ListActive(dbc dbctx.Context, userID uuid.UUID) ([]*types.LearningSession, error)
	// ListUnfinalized returns ended sessions whose duration was never recorded.
	ListUnfinalized(dbc dbctx.Context, userID uuid.UUID) ([]*types.LearningSession, error)
	Close(dbc dbctx.Context, id uuid.UUID, end time.Time, duration int) error
	Ping(dbc dbctx.Context, id uuid.UUID, at time.Time) error
	SetDuration(dbc dbctx.Context, id uuid.UUID, duration int) error
	SumDuration(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	CountEnded(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	TimeByModule(dbc dbctx.Context, userID uuid.UUID) ([]ModuleTime, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Create(dbc dbctx.Context, s *types.LearningSession) error {
	return dbc.DB(r.db).Create(s).Error
}

func (r *sessionRepo) GetOwned(dbc dbctx.Context, userID, sessionID uuid.UUID) (*types.LearningSession, error) {
	var row types.LearningSession
	if err := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *sessionRepo) ListActive(dbc dbctx.Context, userID uuid.UUID) ([]*types.LearningSession, error) {
	var rows []*types.LearningSession
	if err := dbc.DB(r.db).
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sessionRepo) ListUnfinalized(dbc dbctx.Context, userID uuid.UUID) ([]*types.LearningSession, error) {
	var rows []*types.LearningSession
	if err := dbc.DB(r.db).
		Where("user_id = ? AND end_time IS NOT NULL AND duration IS NULL", userID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sessionRepo) Close(dbc dbctx.Context, id uuid.UUID, end time.Time, duration int) error {
	return dbc.DB(r.db).Model(&types.LearningSession{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"end_time":  end,
			"duration":  duration,
			"is_active": false,
		}).Error
}

func (r *sessionRepo) Ping(dbc dbctx.Context, id uuid.UUID, at time.Time) error {
	return dbc.DB(r.db).Model(&types.LearningSession{}).
		Where("id = ?", id).
		Update("last_ping", at).Error
}

func (r *sessionRepo) SetDuration(dbc dbctx.Context, id uuid.UUID, duration int) error {
	return dbc.DB(r.db).Model(&types.LearningSession{}).
		Where("id = ?", id).
		Update("duration", duration).Error
}

func (r *sessionRepo) SumDuration(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := dbc.DB(r.db).Model(&types.LearningSession{}).
		Where("user_id = ? AND duration IS NOT NULL", userID).
		Select("COALESCE(SUM(duration), 0)").
		Row().
		Scan(&total)
	return total, err
}

func (r *sessionRepo) CountEnded(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.LearningSession{}).
		Where("user_id = ? AND duration IS NOT NULL", userID).
		Count(&n).Error
	return n, err
}

func (r *sessionRepo) TimeByModule(dbc dbctx.Context, userID uuid.UUID) ([]ModuleTime, error) {
	var rows []ModuleTime
	if err := dbc.DB(r.db).Model(&types.LearningSession{}).
		Select("module_id, COALESCE(SUM(duration), 0) AS seconds, COUNT(*) AS sessions").
		Where("user_id = ? AND duration IS NOT NULL", userID).
		Group("module_id").
		Order("seconds DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
