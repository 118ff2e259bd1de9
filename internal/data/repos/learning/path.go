package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

type PathRepo interface {
	Create(dbc dbctx.Context, p *types.LearningPath) error
	List(dbc dbctx.Context) ([]*types.LearningPath, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningPath, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.LearningPath, error)
	// Containing returns the paths whose module list includes moduleID.
	Containing(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.LearningPath, error)
	Save(dbc dbctx.Context, p *types.LearningPath) error
	AddPrerequisite(dbc dbctx.Context, moduleID, prerequisiteID uuid.UUID) error
	Prerequisites(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.Module, error)
}

type pathRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPathRepo(db *gorm.DB, baseLog *logger.Logger) PathRepo {
	return &pathRepo{db: db, log: baseLog.With("repo", "PathRepo")}
}

func (r *pathRepo) Create(dbc dbctx.Context, p *types.LearningPath) error {
	return dbc.DB(r.db).Create(p).Error
}

func (r *pathRepo) List(dbc dbctx.Context) ([]*types.LearningPath, error) {
	var rows []*types.LearningPath
	if err := dbc.DB(r.db).Order("sort_order ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *pathRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningPath, error) {
	var row types.LearningPath
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *pathRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.LearningPath, error) {
	var row types.LearningPath
	if err := dbc.DB(r.db).Where("slug = ?", slug).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// Containing filters in memory; module lists are JSON and the path table is small.
func (r *pathRepo) Containing(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.LearningPath, error) {
	all, err := r.List(dbc)
	if err != nil {
		return nil, err
	}
	var out []*types.LearningPath
	for _, p := range all {
		for _, id := range p.ModuleIDs {
			if id == moduleID {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (r *pathRepo) Save(dbc dbctx.Context, p *types.LearningPath) error {
	return dbc.DB(r.db).Save(p).Error
}

func (r *pathRepo) AddPrerequisite(dbc dbctx.Context, moduleID, prerequisiteID uuid.UUID) error {
	return dbc.DB(r.db).Create(&types.ModulePrerequisite{ModuleID: moduleID, PrerequisiteID: prerequisiteID}).Error
}

func (r *pathRepo) Prerequisites(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.Module, error) {
	var rows []*types.Module
	if err := dbc.DB(r.db).
		Joins("JOIN module_prerequisites ON module_prerequisites.prerequisite_id = modules.id").
		Where("module_prerequisites.module_id = ?", moduleID).
		Order("modules.sort_order ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
