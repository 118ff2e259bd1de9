package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

type EnrollmentRepo interface {
	Create(dbc dbctx.Context, e *types.Enrollment) error
	Get(dbc dbctx.Context, userID, moduleID uuid.UUID) (*types.Enrollment, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Enrollment, error)
	ListByUsers(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.Enrollment, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.Enrollment, error)
	Count(dbc dbctx.Context) (int64, error)
	Touch(dbc dbctx.Context, userID, moduleID uuid.UUID, at time.Time) error
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{db: db, log: baseLog.With("repo", "EnrollmentRepo")}
}

func (r *enrollmentRepo) Create(dbc dbctx.Context, e *types.Enrollment) error {
	return dbc.DB(r.db).Create(e).Error
}

func (r *enrollmentRepo) Get(dbc dbctx.Context, userID, moduleID uuid.UUID) (*types.Enrollment, error) {
	var row types.Enrollment
	if err := dbc.DB(r.db).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *enrollmentRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Enrollment{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// ListByUser returns the user's enrollments with their modules, newest activity first.
func (r *enrollmentRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Enrollment, error) {
	var rows []*types.Enrollment
	if err := dbc.DB(r.db).
		Preload("Module").
		Where("user_id = ?", userID).
		Order("last_accessed_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *enrollmentRepo) ListByUsers(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.Enrollment, error) {
	var rows []*types.Enrollment
	if len(userIDs) == 0 {
		return rows, nil
	}
	if err := dbc.DB(r.db).
		Preload("Module").
		Where("user_id IN ?", userIDs).
		Order("enrolled_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *enrollmentRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.Enrollment, error) {
	var rows []*types.Enrollment
	if err := dbc.DB(r.db).
		Preload("Module").
		Order("enrolled_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *enrollmentRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Enrollment{}).Count(&n).Error
	return n, err
}

func (r *enrollmentRepo) Touch(dbc dbctx.Context, userID, moduleID uuid.UUID, at time.Time) error {
	return dbc.DB(r.db).Model(&types.Enrollment{}).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		Update("last_accessed_at", at).Error
}
