package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
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

// JWTClaims is what every access token carries.
type JWTClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,min=3,max=30"`
	Password string `validate:"required,min=6"`
	Nickname string
}

type AuthResult struct {
	Token string      `json:"token"`
	User  *types.User `json:"user"`
}

// Account is a user with the pieces the client needs on load.
type Account struct {
	*types.User
	Subscription *types.UserSubscription `json:"subscription,omitempty"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, userID uuid.UUID) (*Account, error)
	ParseToken(tokenString string) (*JWTClaims, error)
	// CreateAdmin provisions an ADMIN account, or promotes an existing one by email.
	CreateAdmin(ctx context.Context, in RegisterInput) (*types.User, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	users         repos.UserRepo
	profiles      repos.ProfileRepo
	subscriptions SubscriptionService
	avatars       AvatarService
	jwtSecretKey  string
	accessTTL     time.Duration
	now           func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users repos.UserRepo,
	profiles repos.ProfileRepo,
	subscriptions SubscriptionService,
	avatars AvatarService,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           baseLog.With("service", "AuthService"),
		users:         users,
		profiles:      profiles,
		subscriptions: subscriptions,
		avatars:       avatars,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in = normalizeRegistration(in)
	if err := validateRegistration(in); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	user := &types.User{
		Email:    in.Email,
		Username: in.Username,
		Password: hash,
		Role:     types.RoleUser,
	}
	if err := as.createAccount(ctx, user, in.Nickname); err != nil {
		return nil, err
	}
	as.log.Info("User registered", "user_id", user.ID)

	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (as *authService) CreateAdmin(ctx context.Context, in RegisterInput) (*types.User, error) {
	in = normalizeRegistration(in)
	existing, err := as.users.GetByEmail(dbctx.New(ctx), in.Email)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if existing != nil {
		if err := as.users.UpdateFields(dbctx.New(ctx), existing.ID, map[string]any{"role": types.RoleAdmin}); err != nil {
			return nil, apierr.Internal(err)
		}
		existing.Role = types.RoleAdmin
		return existing, nil
	}

	if err := validateRegistration(in); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	user := &types.User{Email: in.Email, Username: in.Username, Password: hash, Role: types.RoleAdmin}
	if err := as.createAccount(ctx, user, in.Nickname); err != nil {
		return nil, err
	}
	return user, nil
}

// createAccount inserts user, profile and a BASIC subscription together.
// The avatar is rendered afterwards and never fails the call.
func (as *authService) createAccount(ctx context.Context, user *types.User, nickname string) error {
	if nickname == "" {
		nickname = user.Username
	}
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx).WithTx(tx)
		if taken, err := as.users.EmailExists(dbc, user.Email, uuid.Nil); err != nil {
			return err
		} else if taken {
			return apierr.Conflict(apierr.CodeEmailTaken, "email is already registered")
		}
		if taken, err := as.users.UsernameExists(dbc, user.Username); err != nil {
			return err
		} else if taken {
			return apierr.Conflict(apierr.CodeUsernameTaken, "username is already taken")
		}
		if err := as.users.Create(dbc, user); err != nil {
			return err
		}
		profile, err := as.profiles.Ensure(dbc, user.ID, nickname)
		if err != nil {
			return err
		}
		user.Profile = profile
		if _, err := as.subscriptions.EnsureBasic(dbc, user.ID); err != nil {
			return fmt.Errorf("provision subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return apierr.Conflict("", "account already exists")
		}
		return wrapErr(err)
	}

	if as.avatars != nil {
		url, err := as.avatars.Generate(ctx, user.ID, nickname)
		if err != nil {
			as.log.Warn("initials avatar failed (ignored)", "user_id", user.ID, "error", err)
			return nil
		}
		if err := as.profiles.UpdateFields(dbctx.New(ctx), user.ID, map[string]any{"avatar_url": url}); err != nil {
			as.log.Warn("store avatar url failed (ignored)", "user_id", user.ID, "error", err)
			return nil
		}
		user.Profile.AvatarURL = url
	}
	return nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apierr.Validation("", "email and password are required")
	}
	dbc := dbctx.New(ctx)
	user, err := as.users.GetByEmail(dbc, email)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if user == nil {
		return nil, apierr.Auth(apierr.CodeInvalidCredentials, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apierr.Auth(apierr.CodeInvalidCredentials, "invalid email or password")
	}

	full, err := as.users.GetByIDWithProfile(dbc, user.ID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if full != nil {
		user = full
	}
	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (as *authService) Me(ctx context.Context, userID uuid.UUID) (*Account, error) {
	user, err := as.users.GetByIDWithProfile(dbctx.New(ctx), userID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if user == nil {
		return nil, apierr.NotFound("", "user not found")
	}
	sub, err := as.subscriptions.Current(ctx, userID)
	if err != nil {
		as.log.Warn("load subscription failed", "user_id", userID, "error", err)
	}
	return &Account{User: user, Subscription: sub}, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := as.now()
	claims := JWTClaims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) ParseToken(tokenString string) (*JWTClaims, error) {
	if tokenString == "" {
		return nil, apierr.Auth("", "missing token")
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apierr.Auth("", "token expired")
		}
		return nil, apierr.Auth("", "invalid token")
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return nil, apierr.Auth("", "invalid or expired token")
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, apierr.Auth("", "invalid user id in token")
	}
	return claims, nil
}

func normalizeRegistration(in RegisterInput) RegisterInput {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.Nickname = strings.TrimSpace(in.Nickname)
	return in
}

func validateRegistration(in RegisterInput) error {
	return validationErr(validate.Struct(in))
}

func hashPassword(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}
