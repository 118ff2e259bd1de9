package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/data/repos"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
	"github.com/yungbote/learnit-backend/internal/platform/cache"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

const modulesCacheKey = cache.PrefixCatalog + "modules"

// ModuleCard is a module as listed in the catalog.
type ModuleCard struct {
	*types.Module
	ChapterCount int64 `json:"chapterCount"`
	LessonCount  int64 `json:"lessonCount"`
	StudentCount int64 `json:"studentCount"`
}

type PathView struct {
	*types.LearningPath
	ModuleDetails []*types.Module `json:"moduleDetails"`
}

type RoadmapEntry struct {
	PathID    uuid.UUID     `json:"pathId"`
	PathTitle string        `json:"pathTitle"`
	PathSlug  string        `json:"pathSlug"`
	Position  int           `json:"position"`
	Total     int           `json:"total"`
	Previous  *types.Module `json:"previous"`
	Next      *types.Module `json:"next"`
}

type CatalogService interface {
	ListModules(ctx context.Context) ([]ModuleCard, error)
	GetModule(ctx context.Context, id uuid.UUID) (*ModuleCard, error)
	ListPaths(ctx context.Context) ([]PathView, error)
	GetPath(ctx context.Context, id uuid.UUID) (*PathView, error)
	Prerequisites(ctx context.Context, moduleID uuid.UUID) ([]*types.Module, error)
	Roadmap(ctx context.Context, moduleID uuid.UUID) ([]RoadmapEntry, error)
	// Invalidate drops cached catalog listings after content changes.
	Invalidate(ctx context.Context)
}

type catalogService struct {
	db       *gorm.DB
	log      *logger.Logger
	modules  repos.ModuleRepo
	paths    repos.PathRepo
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewCatalogService(
	db *gorm.DB,
	baseLog *logger.Logger,
	modules repos.ModuleRepo,
	paths repos.PathRepo,
	c cache.Cache,
	cacheTTL time.Duration,
) CatalogService {
	if c == nil {
		c = cache.Nop()
	}
	return &catalogService{
		db:       db,
		log:      baseLog.With("service", "CatalogService"),
		modules:  modules,
		paths:    paths,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

func (s *catalogService) ListModules(ctx context.Context) ([]ModuleCard, error) {
	cards, err := cache.GetOrLoad(ctx, s.cache, s.log, modulesCacheKey, s.cacheTTL, func(ctx context.Context) ([]ModuleCard, error) {
		dbc := dbctx.New(ctx)
		mods, err := s.modules.ListPublished(dbc)
		if err != nil {
			return nil, err
		}
		return s.cards(dbc, mods)
	})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return cards, nil
}

func (s *catalogService) GetModule(ctx context.Context, id uuid.UUID) (*ModuleCard, error) {
	dbc := dbctx.New(ctx)
	m, err := s.modules.GetWithContent(dbc, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if m == nil || !m.IsPublished {
		return nil, apierr.NotFound(apierr.CodeModuleNotFound, "module not found")
	}
	cards, err := s.cards(dbc, []*types.Module{m})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return &cards[0], nil
}

func (s *catalogService) cards(dbc dbctx.Context, mods []*types.Module) ([]ModuleCard, error) {
	ids := make([]uuid.UUID, 0, len(mods))
	for _, m := range mods {
		ids = append(ids, m.ID)
	}
	counts, err := s.modules.Counts(dbc, ids)
	if err != nil {
		return nil, err
	}
	out := make([]ModuleCard, 0, len(mods))
	for _, m := range mods {
		c := counts[m.ID]
		out = append(out, ModuleCard{
			Module:       m,
			ChapterCount: c.ChapterCount,
			LessonCount:  c.LessonCount,
			StudentCount: c.StudentCount,
		})
	}
	return out, nil
}

func (s *catalogService) ListPaths(ctx context.Context) ([]PathView, error) {
	dbc := dbctx.New(ctx)
	paths, err := s.paths.List(dbc)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	out := make([]PathView, 0, len(paths))
	for _, p := range paths {
		v, err := s.pathView(dbc, p)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *catalogService) GetPath(ctx context.Context, id uuid.UUID) (*PathView, error) {
	dbc := dbctx.New(ctx)
	p, err := s.paths.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if p == nil {
		return nil, apierr.NotFound("", "learning path not found")
	}
	v, err := s.pathView(dbc, p)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return v, nil
}

// pathView resolves the path's modules in path order, skipping deleted ones.
func (s *catalogService) pathView(dbc dbctx.Context, p *types.LearningPath) (*PathView, error) {
	mods, err := s.modules.GetByIDs(dbc, p.ModuleIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.Module, len(mods))
	for _, m := range mods {
		byID[m.ID] = m
	}
	details := make([]*types.Module, 0, len(p.ModuleIDs))
	for _, id := range p.ModuleIDs {
		if m, ok := byID[id]; ok {
			details = append(details, m)
		}
	}
	return &PathView{LearningPath: p, ModuleDetails: details}, nil
}

func (s *catalogService) Prerequisites(ctx context.Context, moduleID uuid.UUID) ([]*types.Module, error) {
	dbc := dbctx.New(ctx)
	m, err := s.modules.GetByID(dbc, moduleID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if m == nil {
		return nil, apierr.NotFound(apierr.CodeModuleNotFound, "module not found")
	}
	pre, err := s.paths.Prerequisites(dbc, moduleID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if pre == nil {
		pre = []*types.Module{}
	}
	return pre, nil
}

func (s *catalogService) Roadmap(ctx context.Context, moduleID uuid.UUID) ([]RoadmapEntry, error) {
	dbc := dbctx.New(ctx)
	m, err := s.modules.GetByID(dbc, moduleID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if m == nil {
		return nil, apierr.NotFound(apierr.CodeModuleNotFound, "module not found")
	}
	paths, err := s.paths.Containing(dbc, moduleID)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	out := make([]RoadmapEntry, 0, len(paths))
	for _, p := range paths {
		v, err := s.pathView(dbc, p)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		entry := RoadmapEntry{PathID: p.ID, PathTitle: p.Title, PathSlug: p.Slug, Total: len(v.ModuleDetails)}
		for i, pm := range v.ModuleDetails {
			if pm.ID != moduleID {
				continue
			}
			entry.Position = i + 1
			if i > 0 {
				entry.Previous = v.ModuleDetails[i-1]
			}
			if i+1 < len(v.ModuleDetails) {
				entry.Next = v.ModuleDetails[i+1]
			}
			break
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *catalogService) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, modulesCacheKey); err != nil {
		s.log.Warn("catalog cache invalidation failed", "error", err)
	}
}
