package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/learnit-backend/internal/domain/user"
	"github.com/yungbote/learnit-backend/internal/http/response"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
	"github.com/yungbote/learnit-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
	"github.com/yungbote/learnit-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// RequireAuth verifies the bearer token and attaches the caller as
// ctxutil.RequestData. The token may also come from ?token= for EventSource
// clients that cannot set headers.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			response.RespondAPIError(c, apierr.Auth("", "missing or invalid token"))
			return
		}
		claims, err := am.authService.ParseToken(tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			response.RespondAPIError(c, err)
			return
		}
		userID, _ := uuid.Parse(claims.UserID)
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			UserID:      userID,
			Email:       claims.Email,
			Role:        claims.Role,
			TokenString: tokenString,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil || rd.UserID == uuid.Nil {
			response.RespondAPIError(c, apierr.Auth("", "not authenticated"))
			return
		}
		if user.Role(rd.Role) != user.RoleAdmin {
			response.RespondAPIError(c, apierr.Forbidden("", "admin access required"))
			return
		}
		c.Next()
	}
}

func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
