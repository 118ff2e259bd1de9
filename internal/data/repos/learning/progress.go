package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

type ProgressRepo interface {
	// MarkCompleted upserts (user, lesson) to completed, refreshing completed_at.
	MarkCompleted(dbc dbctx.Context, userID, lessonID uuid.UUID, at time.Time) (*types.UserProgress, error)
	Get(dbc dbctx.Context, userID, lessonID uuid.UUID) (*types.UserProgress, error)
	CountCompleted(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	CountCompletedIn(dbc dbctx.Context, userID uuid.UUID, lessonIDs []uuid.UUID) (int64, error)
	CompletedAt(dbc dbctx.Context, userID uuid.UUID, lessonIDs []uuid.UUID) (map[uuid.UUID]*time.Time, error)
	CountAllCompleted(dbc dbctx.Context, userIDs []uuid.UUID) (int64, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) MarkCompleted(dbc dbctx.Context, userID, lessonID uuid.UUID, at time.Time) (*types.UserProgress, error) {
	row := &types.UserProgress{UserID: userID, LessonID: lessonID, Completed: true, CompletedAt: &at}
	if err := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"completed":    true,
				"completed_at": at,
				"updated_at":   at,
			}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc, userID, lessonID)
}

func (r *progressRepo) Get(dbc dbctx.Context, userID, lessonID uuid.UUID) (*types.UserProgress, error) {
	var row types.UserProgress
	if err := dbc.DB(r.db).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *progressRepo) CountCompleted(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.UserProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&n).Error
	return n, err
}

// CountCompletedIn counts distinct completed lessons of userID among lessonIDs.
func (r *progressRepo) CountCompletedIn(dbc dbctx.Context, userID uuid.UUID, lessonIDs []uuid.UUID) (int64, error) {
	if len(lessonIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := dbc.DB(r.db).Model(&types.UserProgress{}).
		Where("user_id = ? AND completed = ? AND lesson_id IN ?", userID, true, lessonIDs).
		Distinct("lesson_id").
		Count(&n).Error
	return n, err
}

func (r *progressRepo) CompletedAt(dbc dbctx.Context, userID uuid.UUID, lessonIDs []uuid.UUID) (map[uuid.UUID]*time.Time, error) {
	out := make(map[uuid.UUID]*time.Time, len(lessonIDs))
	if len(lessonIDs) == 0 {
		return out, nil
	}
	var rows []types.UserProgress
	if err := dbc.DB(r.db).
		Where("user_id = ? AND completed = ? AND lesson_id IN ?", userID, true, lessonIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].LessonID] = rows[i].CompletedAt
	}
	return out, nil
}

func (r *progressRepo) CountAllCompleted(dbc dbctx.Context, userIDs []uuid.UUID) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := dbc.DB(r.db).Model(&types.UserProgress{}).
		Where("completed = ? AND user_id IN ?", true, userIDs).
		Count(&n).Error
	return n, err
}
