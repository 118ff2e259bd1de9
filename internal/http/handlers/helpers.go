package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/learnit-backend/internal/http/response"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
	"github.com/yungbote/learnit-backend/internal/platform/ctxutil"
)

// currentUser returns the authenticated caller, writing a 401 when absent.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondAPIError(c, apierr.Auth("", "not authenticated"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

// pathUUID parses a uuid route param, writing a 400 when malformed.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondAPIError(c, apierr.Validation("", "invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the body into dst, writing a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.BadRequest(c, err)
		return false
	}
	return true
}
