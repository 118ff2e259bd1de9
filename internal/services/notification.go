package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/data/repos"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
	"github.com/yungbote/learnit-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
	"github.com/yungbote/learnit-backend/internal/realtime"
	"github.com/yungbote/learnit-backend/internal/realtime/bus"
)

const notificationListLimit = 50

type NotificationInput struct {
	Type     types.NotificationType
	Title    string
	Message  string
	Icon     string
	Metadata map[string]any
}

type NotificationList struct {
	Notifications []*types.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
}

type NotificationService interface {
	// Create persists and publishes a notification. Failures are logged and
	// reported as nil; callers never fail because a notification did.
	Create(ctx context.Context, userID uuid.UUID, in NotificationInput) *types.Notification
	List(ctx context.Context, userID uuid.UUID) (*NotificationList, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.NotificationRepo
	bus  bus.Bus
}

func NewNotificationService(db *gorm.DB, baseLog *logger.Logger, repo repos.NotificationRepo, b bus.Bus) NotificationService {
	return &notificationService{
		db:   db,
		log:  baseLog.With("service", "NotificationService"),
		repo: repo,
		bus:  b,
	}
}

func (s *notificationService) Create(ctx context.Context, userID uuid.UUID, in NotificationInput) *types.Notification {
	n := &types.Notification{
		UserID:  userID,
		Type:    in.Type,
		Title:   in.Title,
		Message: in.Message,
		Icon:    in.Icon,
	}
	if len(in.Metadata) > 0 {
		raw, err := json.Marshal(in.Metadata)
		if err != nil {
			s.log.Warn("notification metadata not encodable; dropping it", "type", in.Type, "error", err)
		} else {
			n.Metadata = datatypes.JSON(raw)
		}
	}
	if err := s.repo.Create(dbctx.New(ctx), n); err != nil {
		s.log.Error("create notification failed", append(ctxutil.LogFields(ctx), "user_id", userID, "type", in.Type, "error", err)...)
		return nil
	}
	s.publish(ctx, n)
	return n
}

func (s *notificationService) publish(ctx context.Context, n *types.Notification) {
	if s.bus == nil {
		return
	}
	msg := realtime.SSEMessage{
		Channel: realtime.UserChannel(n.UserID),
		Event:   realtime.SSEEventNotification,
		Data:    n,
	}
	if err := s.bus.Publish(ctx, msg); err != nil {
		s.log.Warn("publish notification failed", "user_id", n.UserID, "error", err)
	}
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID) (*NotificationList, error) {
	dbc := dbctx.New(ctx)
	rows, err := s.repo.ListByUser(dbc, userID, notificationListLimit)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	unread, err := s.repo.CountUnread(dbc, userID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if rows == nil {
		rows = []*types.Notification{}
	}
	return &NotificationList{Notifications: rows, UnreadCount: unread}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.repo.MarkRead(dbctx.New(ctx), userID, id)
	if err != nil {
		return apierr.Internal(err)
	}
	if !ok {
		return apierr.NotFound("", "notification not found")
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllRead(dbctx.New(ctx), userID)
	if err != nil {
		return 0, apierr.Internal(err)
	}
	return n, nil
}

// notifyIcon values used by the learning flow.
const (
	iconLessonComplete  = "check_circle"
	iconChapterComplete = "menu_book"
	iconModuleComplete  = "emoji_events"
	iconSubscription    = "workspace_premium"
)
