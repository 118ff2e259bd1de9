package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/data/cascade"
	"github.com/yungbote/learnit-backend/internal/data/db"
	"github.com/yungbote/learnit-backend/internal/data/repos"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/domain/learning"
	"github.com/yungbote/learnit-backend/internal/pkg/pointers"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

type ModuleInput struct {
	Title          string `json:"title" validate:"required,min=3,max=100"`
	Slug           string `json:"slug" validate:"omitempty,max=120"`
	Description    string `json:"description" validate:"required"`
	ThumbnailURL   string `json:"thumbnailUrl"`
	Category       string `json:"category" validate:"required,oneof=ANDROID_DEV IOS_DEV WEB_DEV FUNDAMENTAL"`
	EstimatedHours int    `json:"estimatedHours" validate:"min=1"`
	Order          int    `json:"order" validate:"min=0"`
	IsPublished    *bool  `json:"isPublished"`
}

// ModulePatch is a partial update; nil fields are left alone.
type ModulePatch struct {
	Title          *string `json:"title" validate:"omitempty,min=3,max=100"`
	Slug           *string `json:"slug" validate:"omitempty,min=1,max=120"`
	Description    *string `json:"description" validate:"omitempty,min=1"`
	ThumbnailURL   *string `json:"thumbnailUrl"`
	Category       *string `json:"category" validate:"omitempty,oneof=ANDROID_DEV IOS_DEV WEB_DEV FUNDAMENTAL"`
	EstimatedHours *int    `json:"estimatedHours" validate:"omitempty,min=1"`
	Order          *int    `json:"order" validate:"omitempty,min=0"`
	IsPublished    *bool   `json:"isPublished"`
}

type ChapterInput struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Order       *int    `json:"order" validate:"omitempty,min=1"`
}

type LessonInput struct {
	Title            *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content          *string `json:"content"`
	VideoURL         *string `json:"videoUrl"`
	EstimatedMinutes *int    `json:"estimatedMinutes" validate:"omitempty,min=1"`
	Difficulty       *string `json:"difficulty" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Order            *int    `json:"order" validate:"omitempty,min=1"`
}

type AdminContentService interface {
	ListModules(ctx context.Context, search string) ([]ModuleCard, error)
	GetModule(ctx context.Context, id uuid.UUID) (*ModuleCard, error)
	CreateModule(ctx context.Context, in ModuleInput) (*types.Module, error)
	UpdateModule(ctx context.Context, id uuid.UUID, in ModulePatch) (*types.Module, error)
	DeleteModule(ctx context.Context, id uuid.UUID) (cascade.Result, error)

	CreateChapter(ctx context.Context, moduleID uuid.UUID, in ChapterInput) (*types.Chapter, error)
	UpdateChapter(ctx context.Context, id uuid.UUID, in ChapterInput) (*types.Chapter, error)
	DeleteChapter(ctx context.Context, id uuid.UUID) (cascade.Result, error)

	CreateLesson(ctx context.Context, chapterID uuid.UUID, in LessonInput) (*types.Lesson, error)
	UpdateLesson(ctx context.Context, id uuid.UUID, in LessonInput) (*types.Lesson, error)
	DeleteLesson(ctx context.Context, id uuid.UUID) (cascade.Result, error)
}

type adminContentService struct {
	db            *gorm.DB
	log           *logger.Logger
	modules       repos.ModuleRepo
	chapters      repos.ChapterRepo
	lessons       repos.LessonRepo
	paths         repos.PathRepo
	subscriptions repos.SubscriptionRepo
	catalog       CatalogService
	graph         *cascade.Graph
	now           func() time.Time
}

func NewAdminContentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	modules repos.ModuleRepo,
	chapters repos.ChapterRepo,
	lessons repos.LessonRepo,
	paths repos.PathRepo,
	subscriptions repos.SubscriptionRepo,
	catalog CatalogService,
) AdminContentService {
	return &adminContentService{
		db:            db,
		log:           baseLog.With("service", "AdminContentService"),
		modules:       modules,
		chapters:      chapters,
		lessons:       lessons,
		paths:         paths,
		subscriptions: subscriptions,
		catalog:       catalog,
		graph:         cascade.Ownership(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *adminContentService) ListModules(ctx context.Context, search string) ([]ModuleCard, error) {
	dbc := dbctx.New(ctx)
	mods, err := s.modules.Search(dbc, search)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	cards, err := s.cards(dbc, mods)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return cards, nil
}

func (s *adminContentService) GetModule(ctx context.Context, id uuid.UUID) (*ModuleCard, error) {
	dbc := dbctx.New(ctx)
	m, err := s.modules.GetWithContent(dbc, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if m == nil {
		return nil, apierr.NotFound(apierr.CodeModuleNotFound, "module not found")
	}
	cards, err := s.cards(dbc, []*types.Module{m})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return &cards[0], nil
}

func (s *adminContentService) cards(dbc dbctx.Context, mods []*types.Module) ([]ModuleCard, error) {
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
		out = append(out, ModuleCard{Module: m, ChapterCount: c.ChapterCount, LessonCount: c.LessonCount, StudentCount: c.StudentCount})
	}
	return out, nil
}

func (s *adminContentService) CreateModule(ctx context.Context, in ModuleInput) (*types.Module, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.check(in); err != nil {
		return nil, err
	}
	slug := slugify(in.Slug)
	if slug == "" {
		slug = s.generateSlug(in.Title)
	}

	dbc := dbctx.New(ctx)
	taken, err := s.modules.SlugExists(dbc, slug, uuid.Nil)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if taken {
		return nil, apierr.Conflict(apierr.CodeSlugTaken, "slug %q is already in use", slug)
	}

	m := &types.Module{
		Title:          in.Title,
		Slug:           slug,
		Description:    in.Description,
		ThumbnailURL:   in.ThumbnailURL,
		Category:       learning.Category(in.Category),
		EstimatedHours: in.EstimatedHours,
		Order:          in.Order,
		IsPublished:    in.IsPublished == nil || *in.IsPublished,
	}
	if err := s.modules.Create(dbc, m); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Conflict(apierr.CodeSlugTaken, "slug %q is already in use", slug)
		}
		return nil, apierr.Internal(err)
	}
	s.log.Info("Module created", "module_id", m.ID, "slug", m.Slug)
	s.catalog.Invalidate(ctx)
	return m, nil
}

func (s *adminContentService) UpdateModule(ctx context.Context, id uuid.UUID, in ModulePatch) (*types.Module, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	m, err := s.modules.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if m == nil {
		return nil, apierr.NotFound(apierr.CodeModuleNotFound, "module not found")
	}

	updates := map[string]any{}
	if in.Title != nil {
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Slug != nil {
		slug := slugify(*in.Slug)
		if slug == "" {
			return nil, apierr.Validation("", "slug must contain letters or digits")
		}
		taken, err := s.modules.SlugExists(dbc, slug, id)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		if taken {
			return nil, apierr.Conflict(apierr.CodeSlugTaken, "slug %q is already in use", slug)
		}
		updates["slug"] = slug
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.ThumbnailURL != nil {
		updates["thumbnail_url"] = *in.ThumbnailURL
	}
	if in.Category != nil {
		updates["category"] = *in.Category
	}
	if in.EstimatedHours != nil {
		updates["estimated_hours"] = *in.EstimatedHours
	}
	if in.Order != nil {
		updates["sort_order"] = *in.Order
	}
	if in.IsPublished != nil {
		updates["is_published"] = *in.IsPublished
	}
	if err := s.modules.UpdateFields(dbc, id, updates); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Conflict(apierr.CodeSlugTaken, "slug is already in use")
		}
		return nil, apierr.Internal(err)
	}
	s.catalog.Invalidate(ctx)

	m, err = s.modules.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return m, nil
}

// DeleteModule removes the module with everything it owns, and drops it from
// learning paths and PRO bundles, in one transaction.
func (s *adminContentService) DeleteModule(ctx context.Context, id uuid.UUID) (cascade.Result, error) {
	var res cascade.Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx).WithTx(tx)
		var err error
		res, err = s.graph.Delete(tx, cascade.Module, []uuid.UUID{id})
		if err != nil {
			return err
		}

		paths, err := s.paths.Containing(dbc, id)
		if err != nil {
			return err
		}
		for _, p := range paths {
			p.ModuleIDs = without(p.ModuleIDs, id)
			if err := s.paths.Save(dbc, p); err != nil {
				return fmt.Errorf("scrub path %s: %w", p.ID, err)
			}
		}

		subs, err := s.subscriptions.ListWithModule(dbc, id)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			sub.SelectedModules = without(sub.SelectedModules, id)
			if err := s.subscriptions.Save(dbc, sub); err != nil {
				return fmt.Errorf("scrub subscription %s: %w", sub.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.deleteErr(err, apierr.CodeModuleNotFound, "module not found")
	}
	s.log.Info("Module deleted", "module_id", id, "rows", res)
	s.catalog.Invalidate(ctx)
	return res, nil
}

func (s *adminContentService) CreateChapter(ctx context.Context, moduleID uuid.UUID, in ChapterInput) (*types.Chapter, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, apierr.Validation("", "title is required")
	}
	dbc := dbctx.New(ctx)
	m, err := s.modules.GetByID(dbc, moduleID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if m == nil {
		return nil, apierr.NotFound(apierr.CodeModuleNotFound, "module not found")
	}
	c := &types.Chapter{
		ModuleID:    moduleID,
		Title:       strings.TrimSpace(*in.Title),
		Description: strings.TrimSpace(pointers.Deref(in.Description, "")),
	}
	if err := s.chapters.Append(dbc, c); err != nil {
		return nil, apierr.Internal(err)
	}
	s.catalog.Invalidate(ctx)
	return c, nil
}

func (s *adminContentService) UpdateChapter(ctx context.Context, id uuid.UUID, in ChapterInput) (*types.Chapter, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	c, err := s.chapters.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if c == nil {
		return nil, apierr.NotFound("", "chapter not found")
	}
	updates := map[string]any{}
	if in.Title != nil {
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Order != nil {
		updates["sort_order"] = *in.Order
	}
	if err := s.chapters.UpdateFields(dbc, id, updates); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Conflict("", "another chapter already has order %d", *in.Order)
		}
		return nil, apierr.Internal(err)
	}
	s.catalog.Invalidate(ctx)
	c, err = s.chapters.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return c, nil
}

func (s *adminContentService) DeleteChapter(ctx context.Context, id uuid.UUID) (cascade.Result, error) {
	var res cascade.Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = s.graph.Delete(tx, cascade.Chapter, []uuid.UUID{id})
		return err
	})
	if err != nil {
		return nil, s.deleteErr(err, "", "chapter not found")
	}
	s.log.Info("Chapter deleted", "chapter_id", id, "rows", res)
	s.catalog.Invalidate(ctx)
	return res, nil
}

func (s *adminContentService) CreateLesson(ctx context.Context, chapterID uuid.UUID, in LessonInput) (*types.Lesson, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, apierr.Validation("", "title is required")
	}
	dbc := dbctx.New(ctx)
	c, err := s.chapters.GetByID(dbc, chapterID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if c == nil {
		return nil, apierr.NotFound("", "chapter not found")
	}
	l := &types.Lesson{
		ChapterID:        chapterID,
		Title:            strings.TrimSpace(*in.Title),
		Content:          pointers.Deref(in.Content, ""),
		VideoURL:         strings.TrimSpace(pointers.Deref(in.VideoURL, "")),
		EstimatedMinutes: pointers.Deref(in.EstimatedMinutes, learning.DefaultLessonMinutes),
		Difficulty:       learning.Difficulty(pointers.Deref(in.Difficulty, string(learning.DifficultyBeginner))),
	}
	if err := s.lessons.Append(dbc, l); err != nil {
		return nil, apierr.Internal(err)
	}
	s.catalog.Invalidate(ctx)
	return l, nil
}

func (s *adminContentService) UpdateLesson(ctx context.Context, id uuid.UUID, in LessonInput) (*types.Lesson, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	l, err := s.lessons.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if l == nil {
		return nil, apierr.NotFound(apierr.CodeLessonNotFound, "lesson not found")
	}
	updates := map[string]any{}
	if in.Title != nil {
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		updates["content"] = *in.Content
	}
	if in.VideoURL != nil {
		updates["video_url"] = strings.TrimSpace(*in.VideoURL)
	}
	if in.EstimatedMinutes != nil {
		updates["estimated_minutes"] = *in.EstimatedMinutes
	}
	if in.Difficulty != nil {
		updates["difficulty"] = *in.Difficulty
	}
	if in.Order != nil {
		updates["sort_order"] = *in.Order
	}
	if err := s.lessons.UpdateFields(dbc, id, updates); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Conflict("", "another lesson already has order %d", *in.Order)
		}
		return nil, apierr.Internal(err)
	}
	s.catalog.Invalidate(ctx)
	l, err = s.lessons.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return l, nil
}

func (s *adminContentService) DeleteLesson(ctx context.Context, id uuid.UUID) (cascade.Result, error) {
	var res cascade.Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = s.graph.Delete(tx, cascade.Lesson, []uuid.UUID{id})
		return err
	})
	if err != nil {
		return nil, s.deleteErr(err, apierr.CodeLessonNotFound, "lesson not found")
	}
	s.log.Info("Lesson deleted", "lesson_id", id, "rows", res)
	s.catalog.Invalidate(ctx)
	return res, nil
}

func (s *adminContentService) deleteErr(err error, code, msg string) error {
	if errors.Is(err, cascade.ErrRootNotFound) {
		return apierr.NotFound(code, "%s", msg)
	}
	return wrapErr(err)
}

func (s *adminContentService) check(in any) error {
	return validationErr(validate.Struct(in))
}

func (s *adminContentService) generateSlug(title string) string {
	base := slugify(title)
	if base == "" {
		base = "module"
	}
	return base + "-" + strconv.FormatInt(s.now().UnixMilli(), 36)
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(s, "-")
}

func without[S ~[]uuid.UUID](ids S, drop uuid.UUID) S {
	out := make(S, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
