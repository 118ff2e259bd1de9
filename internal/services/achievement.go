package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/data/db"
	"github.com/yungbote/learnit-backend/internal/data/repos"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/domain/engagement"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

type AchievementList struct {
	Achievements         []*types.Achievement `json:"achievements"`
	TotalLearningMinutes int64                `json:"totalLearningMinutes"`
	AvailableBadges      []types.Definition   `json:"availableBadges"`
}

type AchievementService interface {
	// Award grants key to userID once. It returns nil when the award is
	// already held, unknown, or could not be stored.
	Award(ctx context.Context, userID uuid.UUID, key types.AwardKey) (*types.Achievement, error)
	CheckTimeAchievements(ctx context.Context, userID uuid.UUID) []*types.Achievement
	CheckProfileComplete(ctx context.Context, userID uuid.UUID) *types.Achievement
	List(ctx context.Context, userID uuid.UUID) (*AchievementList, error)
	SelectBadge(ctx context.Context, userID, achievementID uuid.UUID) (*types.Achievement, error)
}

type achievementService struct {
	db            *gorm.DB
	log           *logger.Logger
	achievements  repos.AchievementRepo
	sessions      repos.SessionRepo
	profiles      repos.ProfileRepo
	notifications NotificationService
}

func NewAchievementService(
	db *gorm.DB,
	baseLog *logger.Logger,
	achievements repos.AchievementRepo,
	sessions repos.SessionRepo,
	profiles repos.ProfileRepo,
	notifications NotificationService,
) AchievementService {
	return &achievementService{
		db:            db,
		log:           baseLog.With("service", "AchievementService"),
		achievements:  achievements,
		sessions:      sessions,
		profiles:      profiles,
		notifications: notifications,
	}
}

func (s *achievementService) Award(ctx context.Context, userID uuid.UUID, key types.AwardKey) (*types.Achievement, error) {
	if key == nil {
		return nil, nil
	}
	def, ok := engagement.DefinitionOf(key.Type())
	if !ok {
		s.log.Warn("award skipped; unknown achievement type", "type", key.Type())
		return nil, nil
	}
	dbc := dbctx.New(ctx)

	held, err := s.achievements.Exists(dbc, userID, key.Type(), key.Instance())
	if err != nil {
		s.log.Error("award lookup failed", "user_id", userID, "type", key.Type(), "error", err)
		return nil, nil
	}
	if held {
		return nil, nil
	}

	a := &types.Achievement{
		UserID:   userID,
		Type:     key.Type(),
		AwardKey: key.Instance(),
		Title:    def.Title,
		Icon:     def.Icon,
		Rarity:   def.Rarity,
		Metadata: datatypes.JSON(engagement.MetadataJSON(key)),
	}
	if err := s.achievements.Create(dbc, a); err != nil {
		if db.IsUniqueViolation(err) {
			// lost a race with a concurrent award of the same key
			return nil, nil
		}
		s.log.Error("award insert failed", "user_id", userID, "type", key.Type(), "error", err)
		return nil, nil
	}
	s.log.Info("Achievement awarded", "user_id", userID, "type", a.Type, "award_key", a.AwardKey)

	if s.notifications != nil {
		s.notifications.Create(ctx, userID, NotificationInput{
			Type:     engagement.NotifyAchievement,
			Title:    "Achievement Unlocked: " + def.Title,
			Message:  def.Description,
			Icon:     def.Icon,
			Metadata: map[string]any{"achievementId": a.ID.String(), "type": string(a.Type)},
		})
	}
	return a, nil
}

func (s *achievementService) CheckTimeAchievements(ctx context.Context, userID uuid.UUID) []*types.Achievement {
	total, err := s.sessions.SumDuration(dbctx.New(ctx), userID)
	if err != nil {
		s.log.Warn("time achievement check failed", "user_id", userID, "error", err)
		return nil
	}
	minutes := int(total / 60)

	var out []*types.Achievement
	for _, th := range engagement.TimeThresholds {
		if minutes < th.Minutes {
			break
		}
		a, _ := s.Award(ctx, userID, engagement.SingleKey{T: th.Type})
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

func (s *achievementService) CheckProfileComplete(ctx context.Context, userID uuid.UUID) *types.Achievement {
	p, err := s.profiles.GetByUserID(dbctx.New(ctx), userID)
	if err != nil {
		s.log.Warn("profile check failed", "user_id", userID, "error", err)
		return nil
	}
	if !p.Complete() {
		return nil
	}
	a, _ := s.Award(ctx, userID, engagement.SingleKey{T: engagement.ProfileComplete})
	return a
}

func (s *achievementService) List(ctx context.Context, userID uuid.UUID) (*AchievementList, error) {
	dbc := dbctx.New(ctx)
	rows, err := s.achievements.ListByUser(dbc, userID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	total, err := s.sessions.SumDuration(dbc, userID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if rows == nil {
		rows = []*types.Achievement{}
	}
	return &AchievementList{
		Achievements:         rows,
		TotalLearningMinutes: total / 60,
		AvailableBadges:      engagement.Definitions(),
	}, nil
}

func (s *achievementService) SelectBadge(ctx context.Context, userID, achievementID uuid.UUID) (*types.Achievement, error) {
	if achievementID == uuid.Nil {
		return nil, apierr.Validation("", "achievementId is required")
	}
	var selected *types.Achievement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx).WithTx(tx)
		a, err := s.achievements.GetOwned(dbc, userID, achievementID)
		if err != nil {
			return err
		}
		if a == nil {
			return apierr.NotFound("", "achievement not found")
		}
		if _, err := s.profiles.Ensure(dbc, userID, ""); err != nil {
			return err
		}
		if err := s.profiles.UpdateFields(dbc, userID, map[string]any{"selected_badge": string(a.Type)}); err != nil {
			return err
		}
		selected = a
		return nil
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return selected, nil
}
