package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/learnit-backend/internal/http/response"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
	"github.com/yungbote/learnit-backend/internal/services"
)

type SubscriptionHandler struct {
	subscriptions services.SubscriptionService
}

func NewSubscriptionHandler(subscriptions services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

type tierChangeRequest struct {
	TierID          uuid.UUID   `json:"tierId"`
	SelectedModules []uuid.UUID `json:"selectedModules"`
}

// GET /api/subscriptions/tiers
func (h *SubscriptionHandler) Tiers(c *gin.Context) {
	tiers, err := h.subscriptions.ListTiers(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tiers": tiers})
}

// GET /api/subscriptions/current
func (h *SubscriptionHandler) Current(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sub, err := h.subscriptions.Current(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"subscription": sub})
}

// POST /api/subscriptions/subscribe
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req tierChangeRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.subscriptions.Subscribe(c.Request.Context(), userID, req.TierID, req.SelectedModules)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Subscription activated", "subscription": sub})
}

// PUT /api/subscriptions/upgrade
func (h *SubscriptionHandler) Upgrade(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req tierChangeRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.subscriptions.Upgrade(c.Request.Context(), userID, req.TierID, req.SelectedModules)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Subscription upgraded", "subscription": sub})
}

// PUT /api/subscriptions/modules
func (h *SubscriptionHandler) UpdateModules(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		SelectedModules *[]uuid.UUID `json:"selectedModules"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.SelectedModules == nil {
		response.RespondAPIError(c, apierr.Validation(apierr.CodeInvalidModuleSelection, "selectedModules is required"))
		return
	}
	sub, err := h.subscriptions.UpdateSelectedModules(c.Request.Context(), userID, *req.SelectedModules)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Selected modules updated", "subscription": sub})
}
