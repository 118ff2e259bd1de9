package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/learnit-backend/internal/http/response"
	"github.com/yungbote/learnit-backend/internal/services"
)

type ProgressHandler struct {
	enrollments services.EnrollmentService
	progress    services.ProgressService
}

func NewProgressHandler(enrollments services.EnrollmentService, progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{enrollments: enrollments, progress: progress}
}

// POST /api/progress/enroll
// body: { "moduleId": "..." }
func (h *ProgressHandler) Enroll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		ModuleID uuid.UUID `json:"moduleId"`
	}
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.enrollments.Enroll(c.Request.Context(), userID, req.ModuleID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"message": "Successfully enrolled in module", "enrollment": e})
}

// POST /api/progress/complete-lesson
// body: { "lessonId": "..." }
func (h *ProgressHandler) CompleteLesson(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		LessonID uuid.UUID `json:"lessonId"`
	}
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.progress.CompleteLesson(c.Request.Context(), userID, req.LessonID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Lesson marked as completed", "progress": p})
}

// GET /api/progress/user
func (h *ProgressHandler) UserProgress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	rows, err := h.progress.GetUserProgress(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": rows})
}

// GET /api/progress/module/:id
func (h *ProgressHandler) ModuleProgress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	moduleID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	view, err := h.progress.GetModuleProgress(c.Request.Context(), userID, moduleID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/progress/lesson/:id
func (h *ProgressHandler) Lesson(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	lessonID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	view, err := h.progress.GetLesson(c.Request.Context(), userID, lessonID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}
