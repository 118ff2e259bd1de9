package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnit-backend/internal/http/response"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
	"github.com/yungbote/learnit-backend/internal/realtime"
	"github.com/yungbote/learnit-backend/internal/services"
)

type NotificationHandler struct {
	log           *logger.Logger
	notifications services.NotificationService
	hub           *realtime.SSEHub
}

func NewNotificationHandler(log *logger.Logger, notifications services.NotificationService, hub *realtime.SSEHub) *NotificationHandler {
	return &NotificationHandler{
		log:           log.With("handler", "NotificationHandler"),
		notifications: notifications,
		hub:           hub,
	}
}

// GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.notifications.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, list)
}

// GET /api/notifications/stream
// Server-sent events on the caller's channel until the client disconnects.
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	client := h.hub.NewSSEClient(userID)
	h.hub.AddChannel(client, realtime.UserChannel(userID))
	h.log.Debug("SSE stream open", "user_id", userID, "client_id", client.ID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Debug("SSE stream closed", "user_id", userID, "client_id", client.ID)
}

// PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), userID, id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Notification marked as read"})
}

// PUT /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	n, err := h.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "All notifications marked as read", "updated": n})
}
