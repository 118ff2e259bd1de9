package learning

import (
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

// LessonPlacement is a lesson resolved to its chapter and module.
type LessonPlacement struct {
	Lesson  *types.Lesson
	Chapter *types.Chapter
	Module  *types.Module
}

type LessonRepo interface {
	Append(dbc dbctx.Context, l *types.Lesson) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error)
	// Resolve returns nil when the lesson, its chapter or its module is gone.
	Resolve(dbc dbctx.Context, id uuid.UUID) (*LessonPlacement, error)
	IDsByChapter(dbc dbctx.Context, chapterID uuid.UUID) ([]uuid.UUID, error)
	IDsByModule(dbc dbctx.Context, moduleID uuid.UUID) ([]uuid.UUID, error)
	Count(dbc dbctx.Context) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) Append(dbc dbctx.Context, l *types.Lesson) error {
	t := dbc.DB(r.db)
	var maxOrder sql.NullInt64
	if err := t.Model(&types.Lesson{}).
		Where("chapter_id = ?", l.ChapterID).
		Select("MAX(sort_order)").
		Row().
		Scan(&maxOrder); err != nil {
		return err
	}
	l.Order = int(maxOrder.Int64) + 1
	return t.Create(l).Error
}

func (r *lessonRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	var row types.Lesson
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *lessonRepo) Resolve(dbc dbctx.Context, id uuid.UUID) (*LessonPlacement, error) {
	lesson, err := r.GetByID(dbc, id)
	if err != nil || lesson == nil {
		return nil, err
	}
	t := dbc.DB(r.db)
	var ch types.Chapter
	if err := t.Where("id = ?", lesson.ChapterID).Limit(1).Find(&ch).Error; err != nil {
		return nil, err
	}
	if ch.ID == uuid.Nil {
		return nil, nil
	}
	var m types.Module
	if err := t.Where("id = ?", ch.ModuleID).Limit(1).Find(&m).Error; err != nil {
		return nil, err
	}
	if m.ID == uuid.Nil {
		return nil, nil
	}
	return &LessonPlacement{Lesson: lesson, Chapter: &ch, Module: &m}, nil
}

func (r *lessonRepo) IDsByChapter(dbc dbctx.Context, chapterID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := dbc.DB(r.db).Model(&types.Lesson{}).
		Where("chapter_id = ?", chapterID).
		Order("sort_order ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *lessonRepo) IDsByModule(dbc dbctx.Context, moduleID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := dbc.DB(r.db).Model(&types.Lesson{}).
		Joins("JOIN chapters ON chapters.id = lessons.chapter_id").
		Where("chapters.module_id = ?", moduleID).
		Order("chapters.sort_order ASC, lessons.sort_order ASC").
		Pluck("lessons.id", &ids).Error
	return ids, err
}

func (r *lessonRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Lesson{}).Count(&n).Error
	return n, err
}

func (r *lessonRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Lesson{}).Where("id = ?", id).Updates(updates).Error
}
