package services

import (
	"context"
	"math"
	"sort"
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

const (
	activityLimit        = 10
	defaultProgressLimit = 10
)

type DashboardStats struct {
	TotalStudents    int64 `json:"totalStudents"`
	ActiveModules    int64 `json:"activeModules"`
	TotalEnrollments int64 `json:"totalEnrollments"`
	TotalLessons     int64 `json:"totalLessons"`
	AvgCompletion    int   `json:"avgCompletion"`
}

type Activity struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Icon        string    `json:"icon"`
}

type StudentProgress struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	AvatarURL        string    `json:"avatarUrl"`
	ProgressPercent  int       `json:"progressPercent"`
	CompletedLessons int64     `json:"completedLessons"`
	TotalLessons     int64     `json:"totalLessons"`
	EnrolledModules  int       `json:"enrolledModules"`
}

type AdminService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	RecentActivity(ctx context.Context) ([]Activity, error)
	UserProgress(ctx context.Context, limit int) ([]StudentProgress, error)
}

type adminService struct {
	db            *gorm.DB
	log           *logger.Logger
	users         repos.UserRepo
	modules       repos.ModuleRepo
	lessons       repos.LessonRepo
	enrollments   repos.EnrollmentRepo
	progress      repos.ProgressRepo
	notifications repos.NotificationRepo
}

func NewAdminService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users repos.UserRepo,
	modules repos.ModuleRepo,
	lessons repos.LessonRepo,
	enrollments repos.EnrollmentRepo,
	progress repos.ProgressRepo,
	notifications repos.NotificationRepo,
) AdminService {
	return &adminService{
		db:            db,
		log:           baseLog.With("service", "AdminService"),
		users:         users,
		modules:       modules,
		lessons:       lessons,
		enrollments:   enrollments,
		progress:      progress,
		notifications: notifications,
	}
}

func (s *adminService) Stats(ctx context.Context) (*DashboardStats, error) {
	var (
		out       DashboardStats
		completed int64
	)
	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.New(gctx)

	g.Go(func() error {
		students, err := s.users.ListByRole(dbc, types.RoleUser)
		if err != nil {
			return err
		}
		out.TotalStudents = int64(len(students))
		ids := make([]uuid.UUID, 0, len(students))
		for _, u := range students {
			ids = append(ids, u.ID)
		}
		completed, err = s.progress.CountAllCompleted(dbc, ids)
		return err
	})
	g.Go(func() (err error) {
		out.ActiveModules, err = s.modules.Count(dbc)
		return err
	})
	g.Go(func() (err error) {
		out.TotalEnrollments, err = s.enrollments.Count(dbc)
		return err
	})
	g.Go(func() (err error) {
		out.TotalLessons, err = s.lessons.Count(dbc)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apierr.Internal(err)
	}

	out.AvgCompletion = averageCompletion(completed, out.TotalStudents, out.TotalLessons)
	return &out, nil
}

// averageCompletion is completed/(students*lessons) as a whole percentage,
// capped at 100 and 0 when there is nothing to complete.
func averageCompletion(completed, students, lessons int64) int {
	denom := students * lessons
	if denom <= 0 {
		return 0
	}
	pct := int(math.Round(float64(completed) / float64(denom) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

func (s *adminService) RecentActivity(ctx context.Context) ([]Activity, error) {
	dbc := dbctx.New(ctx)
	notes, err := s.notifications.ListRecent(dbc, activityLimit)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	users, err := s.users.ListRecent(dbc, activityLimit/2)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	enrolls, err := s.enrollments.ListRecent(dbc, activityLimit/2)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	names := map[uuid.UUID]string{}
	name := func(id uuid.UUID) string {
		if n, ok := names[id]; ok {
			return n
		}
		n := "User"
		if u, err := s.users.GetByIDWithProfile(dbc, id); err == nil && u != nil {
			n = displayName(u)
		}
		names[id] = n
		return n
	}

	out := make([]Activity, 0, len(notes)+len(users)+len(enrolls))
	for _, n := range notes {
		icon := "notifications"
		switch n.Type {
		case engagement.NotifyModuleComplete:
			icon = "check"
		case engagement.NotifyAchievement:
			icon = "military_tech"
		}
		out = append(out, Activity{
			ID:          n.ID.String(),
			Type:        string(n.Type),
			Title:       n.Title,
			Description: name(n.UserID) + ": " + n.Message,
			Timestamp:   n.CreatedAt,
			Icon:        icon,
		})
	}
	for _, u := range users {
		out = append(out, Activity{
			ID:          "user-" + u.ID.String(),
			Type:        "NEW_USER",
			Title:       "New Registration",
			Description: name(u.ID) + " joined the platform",
			Timestamp:   u.CreatedAt,
			Icon:        "person_add",
		})
	}
	for _, e := range enrolls {
		title := "a module"
		if e.Module != nil {
			title = e.Module.Title
		}
		out = append(out, Activity{
			ID:          "enrollment-" + e.ID.String(),
			Type:        "ENROLLMENT",
			Title:       "New Enrollment",
			Description: name(e.UserID) + " enrolled in " + title,
			Timestamp:   e.EnrolledAt,
			Icon:        "school",
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > activityLimit {
		out = out[:activityLimit]
	}
	return out, nil
}

func (s *adminService) UserProgress(ctx context.Context, limit int) ([]StudentProgress, error) {
	if limit <= 0 {
		limit = defaultProgressLimit
	}
	dbc := dbctx.New(ctx)
	students, _, err := s.users.List(dbc, repos.UserListFilter{Role: types.RoleUser, Page: 1, Limit: limit})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	ids := make([]uuid.UUID, 0, len(students))
	for _, u := range students {
		ids = append(ids, u.ID)
	}
	enrolls, err := s.enrollments.ListByUsers(dbc, ids)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	byUser := map[uuid.UUID][]uuid.UUID{}
	var moduleIDs []uuid.UUID
	for _, e := range enrolls {
		byUser[e.UserID] = append(byUser[e.UserID], e.ModuleID)
		moduleIDs = append(moduleIDs, e.ModuleID)
	}
	counts, err := s.modules.Counts(dbc, dedupe(moduleIDs))
	if err != nil {
		return nil, apierr.Internal(err)
	}

	out := make([]StudentProgress, 0, len(students))
	for _, u := range students {
		var total int64
		for _, mid := range byUser[u.ID] {
			total += counts[mid].LessonCount
		}
		done, err := s.progress.CountCompleted(dbc, u.ID)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		row := StudentProgress{
			ID:               u.ID,
			Name:             displayName(u),
			Email:            u.Email,
			ProgressPercent:  learning.Percent(int(done), int(total)),
			CompletedLessons: done,
			TotalLessons:     total,
			EnrolledModules:  len(byUser[u.ID]),
		}
		if u.Profile != nil {
			row.AvatarURL = u.Profile.AvatarURL
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProgressPercent > out[j].ProgressPercent })
	return out, nil
}

func displayName(u *types.User) string {
	if u.Profile != nil && u.Profile.Nickname != "" {
		return u.Profile.Nickname
	}
	return u.Username
}
