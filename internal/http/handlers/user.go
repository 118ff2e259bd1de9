package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnit-backend/internal/http/response"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
	"github.com/yungbote/learnit-backend/internal/services"
)

const maxAvatarBytes = 5 << 20

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// PUT /api/user/profile
// body: { "nickname"?, "email"?, "bio"? }
func (uh *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}
	u, err := uh.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Profile updated", "user": u})
}

// PUT /api/user/password
func (uh *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := uh.userService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Password changed"})
}

// POST /api/user/avatar (multipart, field "avatar")
func (uh *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.RespondAPIError(c, apierr.Validation("", "avatar file is required"))
		return
	}
	if fh.Size > maxAvatarBytes {
		response.RespondAPIError(c, apierr.Validation("", "avatar must be at most 5MB"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondAPIError(c, apierr.Validation("", "could not read avatar"))
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxAvatarBytes+1))
	if err != nil {
		response.RespondAPIError(c, apierr.Validation("", "could not read avatar"))
		return
	}
	u, err := uh.userService.UploadAvatar(c.Request.Context(), userID, raw)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Avatar updated", "user": u})
}
