package learning

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

// ModuleCounts is the per-module aggregate used by catalog and admin listings.
type ModuleCounts struct {
	ModuleID     uuid.UUID `gorm:"column:module_id"`
	ChapterCount int64     `gorm:"column:chapter_count"`
	LessonCount  int64     `gorm:"column:lesson_count"`
	StudentCount int64     `gorm:"column:student_count"`
}

type ModuleRepo interface {
	Create(dbc dbctx.Context, m *types.Module) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Module, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Module, error)
	GetWithContent(dbc dbctx.Context, id uuid.UUID) (*types.Module, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Module, error)
	SlugExists(dbc dbctx.Context, slug string, exceptID uuid.UUID) (bool, error)
	ListPublished(dbc dbctx.Context) ([]*types.Module, error)
	Search(dbc dbctx.Context, query string) ([]*types.Module, error)
	Counts(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]ModuleCounts, error)
	Count(dbc dbctx.Context) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return &moduleRepo{db: db, log: baseLog.With("repo", "ModuleRepo")}
}

func (r *moduleRepo) Create(dbc dbctx.Context, m *types.Module) error {
	return dbc.DB(r.db).Create(m).Error
}

func (r *moduleRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Module, error) {
	var row types.Module
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *moduleRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Module, error) {
	var row types.Module
	if err := dbc.DB(r.db).Where("slug = ?", slug).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// GetWithContent loads the module with chapters and lessons in display order.
func (r *moduleRepo) GetWithContent(dbc dbctx.Context, id uuid.UUID) (*types.Module, error) {
	var row types.Module
	if err := dbc.DB(r.db).
		Preload("Chapters", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Chapters.Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *moduleRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Module, error) {
	var rows []*types.Module
	if len(ids) == 0 {
		return rows, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *moduleRepo) SlugExists(dbc dbctx.Context, slug string, exceptID uuid.UUID) (bool, error) {
	var n int64
	q := dbc.DB(r.db).Model(&types.Module{}).Where("slug = ?", slug)
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *moduleRepo) ListPublished(dbc dbctx.Context) ([]*types.Module, error) {
	var rows []*types.Module
	if err := dbc.DB(r.db).
		Where("is_published = ?", true).
		Order("sort_order ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Search matches title or description case-insensitively; empty query lists all.
func (r *moduleRepo) Search(dbc dbctx.Context, query string) ([]*types.Module, error) {
	q := dbc.DB(r.db).Model(&types.Module{})
	if s := strings.ToLower(strings.TrimSpace(query)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	var rows []*types.Module
	if err := q.Order("sort_order ASC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *moduleRepo) Counts(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]ModuleCounts, error) {
	out := make(map[uuid.UUID]ModuleCounts, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	for _, id := range ids {
		out[id] = ModuleCounts{ModuleID: id}
	}

	type row struct {
		ModuleID uuid.UUID `gorm:"column:module_id"`
		N        int64     `gorm:"column:n"`
	}
	var chapters, lessons, students []row
	t := dbc.DB(r.db)
	if err := t.Model(&types.Chapter{}).
		Select("module_id, COUNT(*) AS n").
		Where("module_id IN ?", ids).
		Group("module_id").
		Scan(&chapters).Error; err != nil {
		return nil, err
	}
	if err := t.Model(&types.Lesson{}).
		Select("chapters.module_id AS module_id, COUNT(lessons.id) AS n").
		Joins("JOIN chapters ON chapters.id = lessons.chapter_id").
		Where("chapters.module_id IN ?", ids).
		Group("chapters.module_id").
		Scan(&lessons).Error; err != nil {
		return nil, err
	}
	if err := t.Model(&types.Enrollment{}).
		Select("module_id, COUNT(*) AS n").
		Where("module_id IN ?", ids).
		Group("module_id").
		Scan(&students).Error; err != nil {
		return nil, err
	}
	for _, c := range chapters {
		mc := out[c.ModuleID]
		mc.ChapterCount = c.N
		out[c.ModuleID] = mc
	}
	for _, c := range lessons {
		mc := out[c.ModuleID]
		mc.LessonCount = c.N
		out[c.ModuleID] = mc
	}
	for _, c := range students {
		mc := out[c.ModuleID]
		mc.StudentCount = c.N
		out[c.ModuleID] = mc
	}
	return out, nil
}

func (r *moduleRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Module{}).Count(&n).Error
	return n, err
}

func (r *moduleRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Module{}).Where("id = ?", id).Updates(updates).Error
}
