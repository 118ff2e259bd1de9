package learning

import (
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

type ChapterRepo interface {
	// Append creates c at the end of its module (order = max+1).
	Append(dbc dbctx.Context, c *types.Chapter) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Chapter, error)
	ListByModule(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.Chapter, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
}

type chapterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChapterRepo(db *gorm.DB, baseLog *logger.Logger) ChapterRepo {
	return &chapterRepo{db: db, log: baseLog.With("repo", "ChapterRepo")}
}

func (r *chapterRepo) Append(dbc dbctx.Context, c *types.Chapter) error {
	t := dbc.DB(r.db)
	var maxOrder sql.NullInt64
	if err := t.Model(&types.Chapter{}).
		Where("module_id = ?", c.ModuleID).
		Select("MAX(sort_order)").
		Row().
		Scan(&maxOrder); err != nil {
		return err
	}
	c.Order = int(maxOrder.Int64) + 1
	return t.Create(c).Error
}

func (r *chapterRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Chapter, error) {
	var row types.Chapter
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *chapterRepo) ListByModule(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.Chapter, error) {
	var rows []*types.Chapter
	if err := dbc.DB(r.db).
		Where("module_id = ?", moduleID).
		Order("sort_order ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *chapterRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Chapter{}).Where("id = ?", id).Updates(updates).Error
}
