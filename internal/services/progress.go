package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/data/repos"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/domain/engagement"
	"github.com/yungbote/learnit-backend/internal/domain/learning"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

const progressFanOut = 4

type ModuleSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`
}

type ProgressTotals struct {
	TotalLessons       int `json:"totalLessons"`
	CompletedLessons   int `json:"completedLessons"`
	ProgressPercentage int `json:"progressPercentage"`
}

func newTotals(done, total int) ProgressTotals {
	return ProgressTotals{
		TotalLessons:       total,
		CompletedLessons:   done,
		ProgressPercentage: learning.Percent(done, total),
	}
}

type LessonStatus struct {
	ID               uuid.UUID        `json:"id"`
	Title            string           `json:"title"`
	Order            int              `json:"order"`
	EstimatedMinutes int              `json:"estimatedMinutes"`
	Difficulty       types.Difficulty `json:"difficulty"`
	Completed        bool             `json:"completed"`
	CompletedAt      *time.Time       `json:"completedAt"`
	IsActive         bool             `json:"isActive"`
}

type ChapterOutline struct {
	ID      uuid.UUID      `json:"id"`
	Title   string         `json:"title"`
	Order   int            `json:"order"`
	Lessons []LessonStatus `json:"lessons"`
}

type ChapterRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type Navigation struct {
	Previous *LessonStatus `json:"previous"`
	Next     *LessonStatus `json:"next"`
}

type LessonView struct {
	Lesson     *types.Lesson    `json:"lesson"`
	Chapter    ChapterRef       `json:"chapter"`
	Module     ModuleSummary    `json:"module"`
	Progress   ProgressTotals   `json:"progress"`
	Chapters   []ChapterOutline `json:"chapters"`
	Navigation Navigation       `json:"navigation"`
}

type ModuleProgressView struct {
	Module ModuleSummary `json:"module"`
	ProgressTotals
	Chapters []ChapterOutline `json:"chapters"`
}

type EnrollmentProgress struct {
	ModuleID       uuid.UUID `json:"moduleId"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	EnrolledAt     time.Time `json:"enrolledAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
	ProgressTotals
}

type ProgressService interface {
	CompleteLesson(ctx context.Context, userID, lessonID uuid.UUID) (*types.UserProgress, error)
	GetLesson(ctx context.Context, userID, lessonID uuid.UUID) (*LessonView, error)
	GetUserProgress(ctx context.Context, userID uuid.UUID) ([]EnrollmentProgress, error)
	GetModuleProgress(ctx context.Context, userID, moduleID uuid.UUID) (*ModuleProgressView, error)
}

type progressService struct {
	db            *gorm.DB
	log           *logger.Logger
	modules       repos.ModuleRepo
	lessons       repos.LessonRepo
	enrollments   repos.EnrollmentRepo
	progress      repos.ProgressRepo
	achievements  AchievementService
	notifications NotificationService
	now           func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	modules repos.ModuleRepo,
	lessons repos.LessonRepo,
	enrollments repos.EnrollmentRepo,
	progress repos.ProgressRepo,
	achievements AchievementService,
	notifications NotificationService,
) ProgressService {
	return &progressService{
		db:            db,
		log:           baseLog.With("service", "ProgressService"),
		modules:       modules,
		lessons:       lessons,
		enrollments:   enrollments,
		progress:      progress,
		achievements:  achievements,
		notifications: notifications,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *progressService) CompleteLesson(ctx context.Context, userID, lessonID uuid.UUID) (*types.UserProgress, error) {
	if lessonID == uuid.Nil {
		return nil, apierr.Validation("", "lessonId is required")
	}
	dbc := dbctx.New(ctx)

	placement, err := s.lessons.Resolve(dbc, lessonID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if placement == nil {
		return nil, apierr.NotFound(apierr.CodeLessonNotFound, "lesson not found")
	}
	moduleID := placement.Module.ID

	enrollment, err := s.enrollments.Get(dbc, userID, moduleID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if enrollment == nil {
		return nil, apierr.Forbidden(apierr.CodeNotEnrolled, "you must enroll in the module first")
	}

	now := s.now()
	row, err := s.progress.MarkCompleted(dbc, userID, lessonID, now)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if err := s.enrollments.Touch(dbc, userID, moduleID, now); err != nil {
		s.log.Warn("touch enrollment failed", "user_id", userID, "module_id", moduleID, "error", err)
	}

	s.afterCompletion(ctx, userID, placement)
	return row, nil
}

// afterCompletion runs the best-effort side effects of a completed lesson.
// Nothing here can fail the request.
func (s *progressService) afterCompletion(ctx context.Context, userID uuid.UUID, p *repos.LessonPlacement) {
	dbc := dbctx.New(ctx)
	lesson, chapter, module := p.Lesson, p.Chapter, p.Module

	if n, err := s.progress.CountCompleted(dbc, userID); err != nil {
		s.log.Warn("count completed failed", "user_id", userID, "error", err)
	} else if n >= 1 {
		_, _ = s.achievements.Award(ctx, userID, engagement.SingleKey{T: engagement.FirstLesson})
	}

	s.notifications.Create(ctx, userID, NotificationInput{
		Type:    engagement.NotifyLessonComplete,
		Title:   "Lesson complete: " + lesson.Title,
		Message: `You finished the lesson "` + lesson.Title + `"`,
		Icon:    iconLessonComplete,
		Metadata: map[string]any{
			"lessonId":  lesson.ID.String(),
			"chapterId": chapter.ID.String(),
			"moduleId":  module.ID.String(),
		},
	})

	if s.allDone(dbc, userID, func() ([]uuid.UUID, error) { return s.lessons.IDsByChapter(dbc, chapter.ID) }) {
		a, _ := s.achievements.Award(ctx, userID, engagement.ChapterCompleteKey{
			ChapterID:    chapter.ID,
			ChapterTitle: chapter.Title,
			ModuleID:     module.ID,
		})
		if a != nil {
			s.notifications.Create(ctx, userID, NotificationInput{
				Type:     engagement.NotifyChapterComplete,
				Title:    "Chapter complete: " + chapter.Title,
				Message:  `You finished the chapter "` + chapter.Title + `"`,
				Icon:     iconChapterComplete,
				Metadata: map[string]any{"chapterId": chapter.ID.String(), "moduleId": module.ID.String()},
			})
		}
	}

	if s.allDone(dbc, userID, func() ([]uuid.UUID, error) { return s.lessons.IDsByModule(dbc, module.ID) }) {
		a, _ := s.achievements.Award(ctx, userID, engagement.ModuleCompleteKey{
			ModuleID:    module.ID,
			ModuleTitle: module.Title,
		})
		if a != nil {
			s.notifications.Create(ctx, userID, NotificationInput{
				Type:     engagement.NotifyModuleComplete,
				Title:    "Module complete: " + module.Title,
				Message:  `Congratulations! You finished the module "` + module.Title + `"`,
				Icon:     iconModuleComplete,
				Metadata: map[string]any{"moduleId": module.ID.String()},
			})
		}
	}
}

// allDone recounts a lesson set for userID. An empty set is never done.
func (s *progressService) allDone(dbc dbctx.Context, userID uuid.UUID, ids func() ([]uuid.UUID, error)) bool {
	lessonIDs, err := ids()
	if err != nil {
		s.log.Warn("recount lesson lookup failed", "user_id", userID, "error", err)
		return false
	}
	if len(lessonIDs) == 0 {
		return false
	}
	done, err := s.progress.CountCompletedIn(dbc, userID, lessonIDs)
	if err != nil {
		s.log.Warn("recount failed", "user_id", userID, "error", err)
		return false
	}
	return int(done) == len(lessonIDs)
}

func (s *progressService) GetLesson(ctx context.Context, userID, lessonID uuid.UUID) (*LessonView, error) {
	dbc := dbctx.New(ctx)
	placement, err := s.lessons.Resolve(dbc, lessonID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if placement == nil {
		return nil, apierr.NotFound(apierr.CodeLessonNotFound, "lesson not found")
	}
	moduleID := placement.Module.ID

	enrollment, err := s.enrollments.Get(dbc, userID, moduleID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if enrollment == nil {
		return nil, apierr.Forbidden(apierr.CodeNotEnrolled, "you must enroll in the module to access lessons")
	}

	module, err := s.modules.GetWithContent(dbc, moduleID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if module == nil {
		return nil, apierr.NotFound(apierr.CodeModuleNotFound, "module not found")
	}
	chapters, totals, err := s.outline(dbc, userID, module, lessonID)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	var flat []*LessonStatus
	for ci := range chapters {
		for li := range chapters[ci].Lessons {
			flat = append(flat, &chapters[ci].Lessons[li])
		}
	}
	var nav Navigation
	for i, l := range flat {
		if l.ID != lessonID {
			continue
		}
		if i > 0 {
			nav.Previous = flat[i-1]
		}
		if i < len(flat)-1 {
			nav.Next = flat[i+1]
		}
		break
	}

	if err := s.enrollments.Touch(dbc, userID, moduleID, s.now()); err != nil {
		s.log.Warn("touch enrollment failed", "user_id", userID, "module_id", moduleID, "error", err)
	}

	return &LessonView{
		Lesson:     placement.Lesson,
		Chapter:    ChapterRef{ID: placement.Chapter.ID, Title: placement.Chapter.Title},
		Module:     summarize(module),
		Progress:   totals,
		Chapters:   chapters,
		Navigation: nav,
	}, nil
}

func (s *progressService) GetModuleProgress(ctx context.Context, userID, moduleID uuid.UUID) (*ModuleProgressView, error) {
	dbc := dbctx.New(ctx)
	module, err := s.modules.GetWithContent(dbc, moduleID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if module == nil {
		return nil, apierr.NotFound(apierr.CodeModuleNotFound, "module not found")
	}
	enrollment, err := s.enrollments.Get(dbc, userID, moduleID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if enrollment == nil {
		return nil, apierr.Forbidden(apierr.CodeNotEnrolled, "not enrolled in this module")
	}
	chapters, totals, err := s.outline(dbc, userID, module, uuid.Nil)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return &ModuleProgressView{Module: summarize(module), ProgressTotals: totals, Chapters: chapters}, nil
}

// outline builds the ordered chapter/lesson tree for module with the user's
// completion state. module must be loaded with content.
func (s *progressService) outline(dbc dbctx.Context, userID uuid.UUID, module *types.Module, active uuid.UUID) ([]ChapterOutline, ProgressTotals, error) {
	var ids []uuid.UUID
	for _, ch := range module.Chapters {
		for _, l := range ch.Lessons {
			ids = append(ids, l.ID)
		}
	}
	completed, err := s.progress.CompletedAt(dbc, userID, ids)
	if err != nil {
		return nil, ProgressTotals{}, err
	}

	chapters := make([]ChapterOutline, 0, len(module.Chapters))
	done := 0
	for _, ch := range module.Chapters {
		co := ChapterOutline{ID: ch.ID, Title: ch.Title, Order: ch.Order, Lessons: make([]LessonStatus, 0, len(ch.Lessons))}
		for _, l := range ch.Lessons {
			at, ok := completed[l.ID]
			if ok {
				done++
			}
			co.Lessons = append(co.Lessons, LessonStatus{
				ID:               l.ID,
				Title:            l.Title,
				Order:            l.Order,
				EstimatedMinutes: l.EstimatedMinutes,
				Difficulty:       l.Difficulty,
				Completed:        ok,
				CompletedAt:      at,
				IsActive:         l.ID == active,
			})
		}
		chapters = append(chapters, co)
	}
	return chapters, newTotals(done, len(ids)), nil
}

func (s *progressService) GetUserProgress(ctx context.Context, userID uuid.UUID) ([]EnrollmentProgress, error) {
	dbc := dbctx.New(ctx)
	enrollments, err := s.enrollments.ListByUser(dbc, userID)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	out := make([]EnrollmentProgress, len(enrollments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(progressFanOut)
	for i, e := range enrollments {
		g.Go(func() error {
			inner := dbctx.New(gctx)
			ids, err := s.lessons.IDsByModule(inner, e.ModuleID)
			if err != nil {
				return err
			}
			done, err := s.progress.CountCompletedIn(inner, userID, ids)
			if err != nil {
				return err
			}
			ep := EnrollmentProgress{
				ModuleID:       e.ModuleID,
				EnrolledAt:     e.EnrolledAt,
				LastAccessedAt: e.LastAccessedAt,
				ProgressTotals: newTotals(int(done), len(ids)),
			}
			if e.Module != nil {
				ep.Title, ep.Slug = e.Module.Title, e.Module.Slug
			}
			out[i] = ep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apierr.Internal(err)
	}
	return out, nil
}

func summarize(m *types.Module) ModuleSummary {
	return ModuleSummary{ID: m.ID, Title: m.Title, Slug: m.Slug}
}
