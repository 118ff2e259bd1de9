package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/data/db"
	"github.com/yungbote/learnit-backend/internal/data/repos"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

// ProfileUpdate is a partial update; nil fields are left alone.
type ProfileUpdate struct {
	Nickname *string `json:"nickname"`
	Email    *string `json:"email"`
	Bio      *string `json:"bio"`
}

type UserService interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*types.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
	UploadAvatar(ctx context.Context, userID uuid.UUID, raw []byte) (*types.User, error)
}

type userService struct {
	db           *gorm.DB
	log          *logger.Logger
	users        repos.UserRepo
	profiles     repos.ProfileRepo
	avatars      AvatarService
	achievements AchievementService
}

func NewUserService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users repos.UserRepo,
	profiles repos.ProfileRepo,
	avatars AvatarService,
	achievements AchievementService,
) UserService {
	return &userService{
		db:           db,
		log:          baseLog.With("service", "UserService"),
		users:        users,
		profiles:     profiles,
		avatars:      avatars,
		achievements: achievements,
	}
}

func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*types.User, error) {
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx).WithTx(tx)
		if in.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*in.Email))
			if err := checkVar("email", email, "required,email"); err != nil {
				return err
			}
			taken, err := us.users.EmailExists(dbc, email, userID)
			if err != nil {
				return err
			}
			if taken {
				return apierr.Conflict(apierr.CodeEmailTaken, "email is already registered")
			}
			if err := us.users.UpdateFields(dbc, userID, map[string]any{"email": email}); err != nil {
				return err
			}
		}

		if _, err := us.profiles.Ensure(dbc, userID, ""); err != nil {
			return err
		}
		updates := map[string]any{}
		if in.Nickname != nil {
			updates["nickname"] = strings.TrimSpace(*in.Nickname)
		}
		if in.Bio != nil {
			updates["bio"] = strings.TrimSpace(*in.Bio)
		}
		return us.profiles.UpdateFields(dbc, userID, updates)
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Conflict(apierr.CodeEmailTaken, "email is already registered")
		}
		return nil, wrapErr(err)
	}

	us.achievements.CheckProfileComplete(ctx, userID)
	return us.load(ctx, userID)
}

func (us *userService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if current == "" || next == "" {
		return apierr.Validation("", "current and new password are required")
	}
	if err := checkVar("newPassword", next, "min=6"); err != nil {
		return err
	}
	dbc := dbctx.New(ctx)
	user, err := us.users.GetByID(dbc, userID)
	if err != nil {
		return apierr.Internal(err)
	}
	if user == nil {
		return apierr.NotFound("", "user not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return apierr.Auth(apierr.CodeInvalidCredentials, "current password is incorrect")
	}
	hash, err := hashPassword(next)
	if err != nil {
		return apierr.Internal(err)
	}
	if err := us.users.UpdateFields(dbc, userID, map[string]any{"password": hash}); err != nil {
		return apierr.Internal(err)
	}
	us.log.Info("Password changed", "user_id", userID)
	return nil
}

func (us *userService) UploadAvatar(ctx context.Context, userID uuid.UUID, raw []byte) (*types.User, error) {
	if len(raw) == 0 {
		return nil, apierr.Validation("", "avatar file is required")
	}
	url, err := us.avatars.Upload(ctx, userID, raw)
	if err != nil {
		return nil, apierr.Validation("", "could not process image: %v", err)
	}
	dbc := dbctx.New(ctx)
	if _, err := us.profiles.Ensure(dbc, userID, ""); err != nil {
		return nil, apierr.Internal(err)
	}
	if err := us.profiles.UpdateFields(dbc, userID, map[string]any{"avatar_url": url}); err != nil {
		return nil, apierr.Internal(err)
	}

	us.achievements.CheckProfileComplete(ctx, userID)
	return us.load(ctx, userID)
}

func (us *userService) load(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := us.users.GetByIDWithProfile(dbctx.New(ctx), userID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if user == nil {
		return nil, apierr.NotFound("", "user not found")
	}
	return user, nil
}
