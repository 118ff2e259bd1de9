package engagement

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

type NotificationRepo interface {
	Create(dbc dbctx.Context, n *types.Notification) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Notification, error)
	ListByType(dbc dbctx.Context, userID uuid.UUID, t types.NotificationType) ([]*types.Notification, error)
	CountUnread(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	// MarkRead returns false when no notification with id belongs to userID.
	MarkRead(dbc dbctx.Context, userID, id uuid.UUID) (bool, error)
	MarkAllRead(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.Notification, error)
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return &notificationRepo{db: db, log: baseLog.With("repo", "NotificationRepo")}
}

func (r *notificationRepo) Create(dbc dbctx.Context, n *types.Notification) error {
	return dbc.DB(r.db).Create(n).Error
}

func (r *notificationRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Notification, error) {
	var rows []*types.Notification
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *notificationRepo) ListByType(dbc dbctx.Context, userID uuid.UUID, t types.NotificationType) ([]*types.Notification, error) {
	var rows []*types.Notification
	if err := dbc.DB(r.db).
		Where("user_id = ? AND type = ?", userID, t).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *notificationRepo) CountUnread(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&n).Error
	return n, err
}

func (r *notificationRepo) MarkRead(dbc dbctx.Context, userID, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).Model(&types.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *notificationRepo) MarkAllRead(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).Model(&types.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.Notification, error) {
	var rows []*types.Notification
	if err := dbc.DB(r.db).Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
