package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/data/db"
	"github.com/yungbote/learnit-backend/internal/data/repos"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/domain/learning"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

type HeartbeatResult struct {
	SessionActive bool `json:"sessionActive,omitempty"`
	SessionEnded  bool `json:"sessionEnded,omitempty"`
	Duration      *int `json:"duration,omitempty"`
}

type ModuleTimeStat struct {
	ModuleID uuid.UUID `json:"moduleId"`
	Title    string    `json:"title"`
	Seconds  int64     `json:"seconds"`
	Sessions int64     `json:"sessions"`
}

type SessionStats struct {
	TotalSeconds int64            `json:"totalSeconds"`
	TotalMinutes int64            `json:"totalMinutes"`
	TotalHours   float64          `json:"totalHours"`
	SessionCount int64            `json:"sessionCount"`
	ByModule     []ModuleTimeStat `json:"byModule"`
}

type SessionService interface {
	Start(ctx context.Context, userID, lessonID, moduleID uuid.UUID) (*types.LearningSession, error)
	Heartbeat(ctx context.Context, userID, sessionID uuid.UUID) (*HeartbeatResult, error)
	End(ctx context.Context, userID, sessionID uuid.UUID) (int, error)
	Stats(ctx context.Context, userID uuid.UUID) (*SessionStats, error)
}

type sessionService struct {
	db           *gorm.DB
	log          *logger.Logger
	sessions     repos.SessionRepo
	lessons      repos.LessonRepo
	modules      repos.ModuleRepo
	achievements AchievementService
	now          func() time.Time
}

func NewSessionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sessions repos.SessionRepo,
	lessons repos.LessonRepo,
	modules repos.ModuleRepo,
	achievements AchievementService,
) SessionService {
	return &sessionService{
		db:           db,
		log:          baseLog.With("service", "SessionService"),
		sessions:     sessions,
		lessons:      lessons,
		modules:      modules,
		achievements: achievements,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Start closes whatever the user still has open, backfills missing durations,
// and opens a new active session, all in one transaction.
func (s *sessionService) Start(ctx context.Context, userID, lessonID, moduleID uuid.UUID) (*types.LearningSession, error) {
	if lessonID == uuid.Nil {
		return nil, apierr.Validation("", "lessonId is required")
	}
	placement, err := s.lessons.Resolve(dbctx.New(ctx), lessonID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if placement == nil {
		return nil, apierr.NotFound(apierr.CodeLessonNotFound, "lesson not found")
	}
	if moduleID == uuid.Nil {
		moduleID = placement.Module.ID
	} else if moduleID != placement.Module.ID {
		return nil, apierr.Validation("", "lesson does not belong to module")
	}

	now := s.now()
	var (
		created   *types.LearningSession
		finalized int
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx).WithTx(tx)

		active, err := s.sessions.ListActive(dbc, userID)
		if err != nil {
			return err
		}
		for _, a := range active {
			if err := s.sessions.Close(dbc, a.ID, now, learning.ClampDuration(a.StartTime, now)); err != nil {
				return err
			}
			finalized++
		}

		pending, err := s.sessions.ListUnfinalized(dbc, userID)
		if err != nil {
			return err
		}
		for _, p := range pending {
			if err := s.sessions.SetDuration(dbc, p.ID, learning.ClampDuration(p.StartTime, *p.EndTime)); err != nil {
				return err
			}
			finalized++
		}

		row := &types.LearningSession{
			UserID:    userID,
			LessonID:  lessonID,
			ModuleID:  moduleID,
			StartTime: now,
			LastPing:  now,
			IsActive:  true,
		}
		if err := s.sessions.Create(dbc, row); err != nil {
			return err
		}
		created = row
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Conflict("", "another session was started concurrently")
		}
		return nil, wrapErr(err)
	}
	s.log.Debug("Session started", "user_id", userID, "session_id", created.ID, "finalized", finalized)
	if finalized > 0 {
		s.achievements.CheckTimeAchievements(ctx, userID)
	}
	return created, nil
}

func (s *sessionService) Heartbeat(ctx context.Context, userID, sessionID uuid.UUID) (*HeartbeatResult, error) {
	dbc := dbctx.New(ctx)
	sess, err := s.sessions.GetOwned(dbc, userID, sessionID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if sess == nil || !sess.IsActive {
		return nil, apierr.NotFound(apierr.CodeSessionNotFound, "session not found")
	}

	now := s.now()
	if sess.IsStale(now) {
		d := learning.ClampDuration(sess.StartTime, sess.LastPing)
		if err := s.sessions.Close(dbc, sess.ID, sess.LastPing, d); err != nil {
			return nil, apierr.Internal(err)
		}
		s.achievements.CheckTimeAchievements(ctx, userID)
		return &HeartbeatResult{SessionEnded: true, Duration: &d}, nil
	}

	if err := s.sessions.Ping(dbc, sess.ID, now); err != nil {
		return nil, apierr.Internal(err)
	}
	return &HeartbeatResult{SessionActive: true}, nil
}

// End closes an owned session and returns its clamped duration in seconds.
func (s *sessionService) End(ctx context.Context, userID, sessionID uuid.UUID) (int, error) {
	dbc := dbctx.New(ctx)
	sess, err := s.sessions.GetOwned(dbc, userID, sessionID)
	if err != nil {
		return 0, apierr.Internal(err)
	}
	if sess == nil {
		return 0, apierr.NotFound(apierr.CodeSessionNotFound, "session not found")
	}

	now := s.now()
	d := learning.ClampDuration(sess.StartTime, now)
	if err := s.sessions.Close(dbc, sess.ID, now, d); err != nil {
		return 0, apierr.Internal(err)
	}
	s.achievements.CheckTimeAchievements(ctx, userID)
	return d, nil
}

func (s *sessionService) Stats(ctx context.Context, userID uuid.UUID) (*SessionStats, error) {
	dbc := dbctx.New(ctx)
	total, err := s.sessions.SumDuration(dbc, userID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	count, err := s.sessions.CountEnded(dbc, userID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	per, err := s.sessions.TimeByModule(dbc, userID)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	ids := make([]uuid.UUID, 0, len(per))
	for _, p := range per {
		ids = append(ids, p.ModuleID)
	}
	mods, err := s.modules.GetByIDs(dbc, ids)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	titles := make(map[uuid.UUID]string, len(mods))
	for _, m := range mods {
		titles[m.ID] = m.Title
	}

	byModule := make([]ModuleTimeStat, 0, len(per))
	for _, p := range per {
		byModule = append(byModule, ModuleTimeStat{
			ModuleID: p.ModuleID,
			Title:    titles[p.ModuleID],
			Seconds:  p.Seconds,
			Sessions: p.Sessions,
		})
	}
	return &SessionStats{
		TotalSeconds: total,
		TotalMinutes: total / 60,
		TotalHours:   math.Round(float64(total)/360) / 10,
		SessionCount: count,
		ByModule:     byModule,
	}, nil
}
