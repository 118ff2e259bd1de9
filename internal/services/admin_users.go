package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/data/cascade"
	"github.com/yungbote/learnit-backend/internal/data/repos"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

const defaultPageSize = 20

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type UserPage struct {
	Users      []*types.User `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

type UserDetails struct {
	*types.User
	Subscription *types.UserSubscription `json:"subscription,omitempty"`
	Enrollments  []*types.Enrollment     `json:"enrollments"`
	Achievements []*types.Achievement    `json:"achievements"`
	Completed    int64                   `json:"completedLessons"`
}

type AdminUserService interface {
	List(ctx context.Context, f repos.UserListFilter) (*UserPage, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDetails, error)
	UpdateRole(ctx context.Context, actorID, id uuid.UUID, role types.Role) (*types.User, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) (cascade.Result, error)
}

type adminUserService struct {
	db            *gorm.DB
	log           *logger.Logger
	users         repos.UserRepo
	enrollments   repos.EnrollmentRepo
	progress      repos.ProgressRepo
	achievements  repos.AchievementRepo
	subscriptions repos.SubscriptionRepo
	graph         *cascade.Graph
}

func NewAdminUserService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users repos.UserRepo,
	enrollments repos.EnrollmentRepo,
	progress repos.ProgressRepo,
	achievements repos.AchievementRepo,
	subscriptions repos.SubscriptionRepo,
) AdminUserService {
	return &adminUserService{
		db:            db,
		log:           baseLog.With("service", "AdminUserService"),
		users:         users,
		enrollments:   enrollments,
		progress:      progress,
		achievements:  achievements,
		subscriptions: subscriptions,
		graph:         cascade.Ownership(),
	}
}

func (s *adminUserService) List(ctx context.Context, f repos.UserListFilter) (*UserPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Role != "" && !f.Role.Valid() {
		return nil, apierr.Validation("", "role must be USER or ADMIN")
	}
	rows, total, err := s.users.List(dbctx.New(ctx), f)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if rows == nil {
		rows = []*types.User{}
	}
	return &UserPage{
		Users: rows,
		Pagination: Pagination{
			Page:       f.Page,
			Limit:      f.Limit,
			Total:      total,
			TotalPages: int((total + int64(f.Limit) - 1) / int64(f.Limit)),
		},
	}, nil
}

func (s *adminUserService) Get(ctx context.Context, id uuid.UUID) (*UserDetails, error) {
	dbc := dbctx.New(ctx)
	u, err := s.users.GetByIDWithProfile(dbc, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if u == nil {
		return nil, apierr.NotFound("", "user not found")
	}
	out := &UserDetails{User: u}
	if out.Subscription, err = s.subscriptions.GetByUser(dbc, id); err != nil {
		return nil, apierr.Internal(err)
	}
	if out.Enrollments, err = s.enrollments.ListByUser(dbc, id); err != nil {
		return nil, apierr.Internal(err)
	}
	if out.Achievements, err = s.achievements.ListByUser(dbc, id); err != nil {
		return nil, apierr.Internal(err)
	}
	if out.Completed, err = s.progress.CountCompleted(dbc, id); err != nil {
		return nil, apierr.Internal(err)
	}
	return out, nil
}

func (s *adminUserService) UpdateRole(ctx context.Context, actorID, id uuid.UUID, role types.Role) (*types.User, error) {
	if !role.Valid() {
		return nil, apierr.Validation("", "role must be USER or ADMIN")
	}
	if actorID == id {
		return nil, apierr.Forbidden(apierr.CodeSelfAction, "you cannot change your own role")
	}
	dbc := dbctx.New(ctx)
	u, err := s.users.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if u == nil {
		return nil, apierr.NotFound("", "user not found")
	}
	if err := s.users.UpdateFields(dbc, id, map[string]any{"role": role}); err != nil {
		return nil, apierr.Internal(err)
	}
	s.log.Info("User role changed", "user_id", id, "role", role, "actor_id", actorID)
	u.Role = role
	return u, nil
}

func (s *adminUserService) Delete(ctx context.Context, actorID, id uuid.UUID) (cascade.Result, error) {
	if actorID == id {
		return nil, apierr.Forbidden(apierr.CodeSelfAction, "you cannot delete your own account")
	}
	var res cascade.Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = s.graph.Delete(tx, cascade.User, []uuid.UUID{id})
		return err
	})
	if err != nil {
		if errors.Is(err, cascade.ErrRootNotFound) {
			return nil, apierr.NotFound("", "user not found")
		}
		return nil, wrapErr(err)
	}
	s.log.Info("User deleted", "user_id", id, "rows", res, "actor_id", actorID)
	return res, nil
}
