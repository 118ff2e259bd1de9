package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/learnit-backend/internal/http/response"
	"github.com/yungbote/learnit-backend/internal/services"
)

type AchievementHandler struct {
	achievements services.AchievementService
}

func NewAchievementHandler(achievements services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievements: achievements}
}

// GET /api/achievements
func (h *AchievementHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.achievements.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, list)
}

// PUT /api/achievements/badge
// body: { "achievementId": "..." }
func (h *AchievementHandler) SelectBadge(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		AchievementID uuid.UUID `json:"achievementId"`
	}
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.achievements.SelectBadge(c.Request.Context(), userID, req.AchievementID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Badge updated", "selectedBadge": a})
}
