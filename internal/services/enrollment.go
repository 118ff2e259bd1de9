package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/data/db"
	"github.com/yungbote/learnit-backend/internal/data/repos"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

type EnrollmentService interface {
	Enroll(ctx context.Context, userID, moduleID uuid.UUID) (*types.Enrollment, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.Enrollment, error)
}

type enrollmentService struct {
	db            *gorm.DB
	log           *logger.Logger
	modules       repos.ModuleRepo
	enrollments   repos.EnrollmentRepo
	subscriptions repos.SubscriptionRepo
	now           func() time.Time
}

func NewEnrollmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	modules repos.ModuleRepo,
	enrollments repos.EnrollmentRepo,
	subscriptions repos.SubscriptionRepo,
) EnrollmentService {
	return &enrollmentService{
		db:            db,
		log:           baseLog.With("service", "EnrollmentService"),
		modules:       modules,
		enrollments:   enrollments,
		subscriptions: subscriptions,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, userID, moduleID uuid.UUID) (*types.Enrollment, error) {
	if moduleID == uuid.Nil {
		return nil, apierr.Validation("", "moduleId is required")
	}
	dbc := dbctx.New(ctx)

	module, err := s.modules.GetByID(dbc, moduleID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if module == nil {
		return nil, apierr.NotFound(apierr.CodeModuleNotFound, "module not found")
	}

	existing, err := s.enrollments.Get(dbc, userID, moduleID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if existing != nil {
		return nil, apierr.Conflict(apierr.CodeAlreadyEnrolled, "already enrolled in this module")
	}

	sub, err := s.subscriptions.GetByUser(dbc, userID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if sub == nil || sub.Tier == nil {
		return nil, apierr.Forbidden(apierr.CodeNoSubscription, "no subscription found")
	}

	count, err := s.enrollments.CountByUser(dbc, userID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if err := checkQuota(sub, moduleID, count); err != nil {
		return nil, err
	}

	now := s.now()
	e := &types.Enrollment{
		UserID:         userID,
		ModuleID:       moduleID,
		EnrolledAt:     now,
		LastAccessedAt: now,
	}
	if err := s.enrollments.Create(dbc, e); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Conflict(apierr.CodeAlreadyEnrolled, "already enrolled in this module")
		}
		return nil, apierr.Internal(err)
	}
	s.log.Info("Enrolled", "user_id", userID, "module_id", moduleID, "tier", sub.Tier.Name)
	return e, nil
}

// checkQuota applies the tier rules. On PRO the bundle check runs before the
// count check so an out-of-bundle module is reported as such even at the limit.
func checkQuota(sub *types.UserSubscription, moduleID uuid.UUID, enrolled int64) error {
	tier := sub.Tier
	switch tier.Name {
	case types.TierBasic:
		if tier.ModuleLimit != nil && enrolled >= int64(*tier.ModuleLimit) {
			return apierr.Forbidden(apierr.CodeQuotaExceeded, "basic tier allows only %d module(s)", *tier.ModuleLimit)
		}
	case types.TierPro:
		if !sub.HasModule(moduleID) {
			return apierr.Forbidden(apierr.CodeModuleNotInBundle, "module is not in your pro bundle")
		}
		if tier.ModuleLimit != nil && enrolled >= int64(*tier.ModuleLimit) {
			return apierr.Forbidden(apierr.CodeQuotaExceeded, "pro tier allows at most %d modules", *tier.ModuleLimit)
		}
	}
	return nil
}

func (s *enrollmentService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.Enrollment, error) {
	rows, err := s.enrollments.ListByUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if rows == nil {
		rows = []*types.Enrollment{}
	}
	return rows, nil
}
