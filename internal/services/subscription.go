package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/data/repos"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/domain/billing"
	"github.com/yungbote/learnit-backend/internal/domain/engagement"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
	"github.com/yungbote/learnit-backend/internal/platform/cache"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

const tiersCacheKey = cache.PrefixTiers + "all"

type SubscriptionService interface {
	ListTiers(ctx context.Context) ([]*types.SubscriptionTier, error)
	// Current returns the user's subscription, provisioning BASIC when none exists.
	Current(ctx context.Context, userID uuid.UUID) (*types.UserSubscription, error)
	Subscribe(ctx context.Context, userID, tierID uuid.UUID, selected []uuid.UUID) (*types.UserSubscription, error)
	Upgrade(ctx context.Context, userID, tierID uuid.UUID, selected []uuid.UUID) (*types.UserSubscription, error)
	UpdateSelectedModules(ctx context.Context, userID uuid.UUID, selected []uuid.UUID) (*types.UserSubscription, error)
	EnsureBasic(dbc dbctx.Context, userID uuid.UUID) (*types.UserSubscription, error)
}

type subscriptionService struct {
	db            *gorm.DB
	log           *logger.Logger
	tiers         repos.TierRepo
	subscriptions repos.SubscriptionRepo
	modules       repos.ModuleRepo
	achievements  AchievementService
	notifications NotificationService
	cache         cache.Cache
	cacheTTL      time.Duration
	now           func() time.Time
}

func NewSubscriptionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tiers repos.TierRepo,
	subscriptions repos.SubscriptionRepo,
	modules repos.ModuleRepo,
	achievements AchievementService,
	notifications NotificationService,
	c cache.Cache,
	cacheTTL time.Duration,
) SubscriptionService {
	if c == nil {
		c = cache.Nop()
	}
	return &subscriptionService{
		db:            db,
		log:           baseLog.With("service", "SubscriptionService"),
		tiers:         tiers,
		subscriptions: subscriptions,
		modules:       modules,
		achievements:  achievements,
		notifications: notifications,
		cache:         c,
		cacheTTL:      cacheTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *subscriptionService) ListTiers(ctx context.Context) ([]*types.SubscriptionTier, error) {
	tiers, err := cache.GetOrLoad(ctx, s.cache, s.log, tiersCacheKey, s.cacheTTL, func(ctx context.Context) ([]*types.SubscriptionTier, error) {
		return s.tiers.List(dbctx.New(ctx))
	})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return tiers, nil
}

func (s *subscriptionService) Current(ctx context.Context, userID uuid.UUID) (*types.UserSubscription, error) {
	dbc := dbctx.New(ctx)
	sub, err := s.subscriptions.GetByUser(dbc, userID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if sub != nil {
		return sub, nil
	}
	sub, err = s.EnsureBasic(dbc, userID)
	if err != nil {
		return nil, wrapErr(err)
	}
	return sub, nil
}

// EnsureBasic gives userID a BASIC subscription unless one already exists.
// It runs on whatever transaction dbc carries.
func (s *subscriptionService) EnsureBasic(dbc dbctx.Context, userID uuid.UUID) (*types.UserSubscription, error) {
	existing, err := s.subscriptions.GetByUser(dbc, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	basic, err := s.tiers.GetByName(dbc, types.TierBasic)
	if err != nil {
		return nil, err
	}
	if basic == nil {
		return nil, fmt.Errorf("tier %s is not seeded", types.TierBasic)
	}
	sub := &types.UserSubscription{
		UserID:    userID,
		TierID:    basic.ID,
		Status:    billing.StatusActive,
		StartDate: s.now(),
	}
	if err := s.subscriptions.Create(dbc, sub); err != nil {
		return nil, err
	}
	sub.Tier = basic
	return sub, nil
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID, tierID uuid.UUID, selected []uuid.UUID) (*types.UserSubscription, error) {
	if tierID == uuid.Nil {
		return nil, apierr.Validation("", "tierId is required")
	}
	var out *types.UserSubscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx).WithTx(tx)
		tier, err := s.tiers.GetByID(dbc, tierID)
		if err != nil {
			return err
		}
		if tier == nil {
			return apierr.NotFound("", "subscription tier not found")
		}
		if err := s.validateSelection(dbc, tier, selected); err != nil {
			return err
		}

		sub, err := s.subscriptions.GetByUser(dbc, userID)
		if err != nil {
			return err
		}
		if sub == nil {
			sub = &types.UserSubscription{UserID: userID}
		}
		s.apply(sub, tier, selected)
		if sub.ID == uuid.Nil {
			err = s.subscriptions.Create(dbc, sub)
		} else {
			err = s.subscriptions.Save(dbc, sub)
		}
		if err != nil {
			return err
		}
		out = sub
		return nil
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	s.afterTierChange(ctx, userID, out.Tier, "Subscription activated")
	return out, nil
}

func (s *subscriptionService) Upgrade(ctx context.Context, userID, tierID uuid.UUID, selected []uuid.UUID) (*types.UserSubscription, error) {
	if tierID == uuid.Nil {
		return nil, apierr.Validation("", "tierId is required")
	}
	var out *types.UserSubscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx).WithTx(tx)
		sub, err := s.subscriptions.GetByUser(dbc, userID)
		if err != nil {
			return err
		}
		if sub == nil {
			return apierr.NotFound(apierr.CodeNoSubscription, "no active subscription")
		}
		tier, err := s.tiers.GetByID(dbc, tierID)
		if err != nil {
			return err
		}
		if tier == nil {
			return apierr.NotFound("", "subscription tier not found")
		}
		if err := s.validateSelection(dbc, tier, selected); err != nil {
			return err
		}
		s.apply(sub, tier, selected)
		if err := s.subscriptions.Save(dbc, sub); err != nil {
			return err
		}
		out = sub
		return nil
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	s.afterTierChange(ctx, userID, out.Tier, "Subscription upgraded")
	return out, nil
}

func (s *subscriptionService) UpdateSelectedModules(ctx context.Context, userID uuid.UUID, selected []uuid.UUID) (*types.UserSubscription, error) {
	var out *types.UserSubscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx).WithTx(tx)
		sub, err := s.subscriptions.GetByUser(dbc, userID)
		if err != nil {
			return err
		}
		if sub == nil || sub.Tier == nil || sub.Tier.Name != types.TierPro {
			return apierr.Forbidden(apierr.CodeNotProTier, "module selection is only available on the PRO tier")
		}
		if err := s.checkBundle(dbc, sub.Tier, dedupe(selected)); err != nil {
			return err
		}
		sub.SelectedModules = datatypes.JSONSlice[uuid.UUID](dedupe(selected))
		if err := s.subscriptions.Save(dbc, sub); err != nil {
			return err
		}
		out = sub
		return nil
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return out, nil
}

// validateSelection enforces the PRO bundle rules for a new plan. Other tiers ignore selected.
func (s *subscriptionService) validateSelection(dbc dbctx.Context, tier *types.SubscriptionTier, selected []uuid.UUID) error {
	if tier.Name != types.TierPro {
		return nil
	}
	ids := dedupe(selected)
	if len(ids) == 0 {
		return apierr.Validation(apierr.CodeInvalidModuleSelection, "select at least one module for the PRO tier")
	}
	return s.checkBundle(dbc, tier, ids)
}

// checkBundle applies the module limit and requires every id to exist.
// An empty bundle is valid.
func (s *subscriptionService) checkBundle(dbc dbctx.Context, tier *types.SubscriptionTier, ids []uuid.UUID) error {
	if tier.ModuleLimit != nil && len(ids) > *tier.ModuleLimit {
		return apierr.Validation(apierr.CodeInvalidModuleSelection, "the PRO tier allows at most %d modules", *tier.ModuleLimit)
	}
	if len(ids) == 0 {
		return nil
	}
	found, err := s.modules.GetByIDs(dbc, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return apierr.Validation(apierr.CodeInvalidModuleSelection, "one or more selected modules do not exist")
	}
	return nil
}

func (s *subscriptionService) apply(sub *types.UserSubscription, tier *types.SubscriptionTier, selected []uuid.UUID) {
	sub.TierID = tier.ID
	sub.Tier = tier
	sub.Status = billing.StatusActive
	sub.StartDate = s.now()
	sub.EndDate = nil
	if tier.Name == types.TierPro {
		sub.SelectedModules = datatypes.JSONSlice[uuid.UUID](dedupe(selected))
	} else {
		sub.SelectedModules = datatypes.JSONSlice[uuid.UUID]{}
	}
}

func (s *subscriptionService) afterTierChange(ctx context.Context, userID uuid.UUID, tier *types.SubscriptionTier, title string) {
	if tier == nil {
		return
	}
	if t, ok := engagement.TierAchievement(string(tier.Name)); ok {
		_, _ = s.achievements.Award(ctx, userID, engagement.SingleKey{T: t})
	}
	if s.notifications != nil {
		s.notifications.Create(ctx, userID, NotificationInput{
			Type:     engagement.NotifySubscription,
			Title:    title,
			Message:  "You are now on the " + tier.DisplayName + " plan.",
			Icon:     iconSubscription,
			Metadata: map[string]any{"tierId": tier.ID.String(), "tier": string(tier.Name)},
		})
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
