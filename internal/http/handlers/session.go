package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/learnit-backend/internal/http/response"
	"github.com/yungbote/learnit-backend/internal/services"
)

type SessionHandler struct {
	sessions services.SessionService
}

func NewSessionHandler(sessions services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// POST /api/sessions/start
// body: { "lessonId": "...", "moduleId"?: "..." }
func (h *SessionHandler) Start(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		LessonID uuid.UUID `json:"lessonId"`
		ModuleID uuid.UUID `json:"moduleId"`
	}
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.sessions.Start(c.Request.Context(), userID, req.LessonID, req.ModuleID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"session": s})
}

type sessionRef struct {
	SessionID uuid.UUID `json:"sessionId"`
}

// POST /api/sessions/heartbeat
func (h *SessionHandler) Heartbeat(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req sessionRef
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.sessions.Heartbeat(c.Request.Context(), userID, req.SessionID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if res.SessionEnded {
		response.RespondOK(c, gin.H{
			"sessionEnded": true,
			"duration":     res.Duration,
			"message":      "Session was stale and has been ended",
		})
		return
	}
	response.RespondOK(c, res)
}

// POST /api/sessions/end
func (h *SessionHandler) End(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req sessionRef
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.sessions.End(c.Request.Context(), userID, req.SessionID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Session ended", "duration": d})
}

// GET /api/sessions/stats
func (h *SessionHandler) Stats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := h.sessions.Stats(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, stats)
}
