package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnit-backend/internal/data/repos"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/http/response"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
	"github.com/yungbote/learnit-backend/internal/services"
)

type AdminHandler struct {
	admin   services.AdminService
	content services.AdminContentService
	users   services.AdminUserService
}

func NewAdminHandler(admin services.AdminService, content services.AdminContentService, users services.AdminUserService) *AdminHandler {
	return &AdminHandler{admin: admin, content: content, users: users}
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/admin/activity
func (h *AdminHandler) Activity(c *gin.Context) {
	rows, err := h.admin.RecentActivity(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"activities": rows})
}

// GET /api/admin/user-progress?limit=
func (h *AdminHandler) UserProgress(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	rows, err := h.admin.UserProgress(c.Request.Context(), limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": rows})
}

// GET /api/admin/modules?search=
func (h *AdminHandler) ListModules(c *gin.Context) {
	mods, err := h.content.ListModules(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"modules": mods})
}

// GET /api/admin/modules/:id
func (h *AdminHandler) GetModule(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	m, err := h.content.GetModule(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"module": m})
}

// POST /api/admin/modules
func (h *AdminHandler) CreateModule(c *gin.Context) {
	var req services.ModuleInput
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.content.CreateModule(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"module": m, "message": "Module created successfully"})
}

// PUT /api/admin/modules/:id
func (h *AdminHandler) UpdateModule(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.ModulePatch
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.content.UpdateModule(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"module": m, "message": "Module updated successfully"})
}

// DELETE /api/admin/modules/:id
func (h *AdminHandler) DeleteModule(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	res, err := h.content.DeleteModule(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Module deleted successfully", "deleted": res})
}

// POST /api/admin/modules/:id/chapters
func (h *AdminHandler) CreateChapter(c *gin.Context) {
	moduleID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.ChapterInput
	if !bindJSON(c, &req) {
		return
	}
	ch, err := h.content.CreateChapter(c.Request.Context(), moduleID, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"chapter": ch, "message": "Chapter created successfully"})
}

// PUT /api/admin/chapters/:id
func (h *AdminHandler) UpdateChapter(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.ChapterInput
	if !bindJSON(c, &req) {
		return
	}
	ch, err := h.content.UpdateChapter(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"chapter": ch, "message": "Chapter updated successfully"})
}

// DELETE /api/admin/chapters/:id
func (h *AdminHandler) DeleteChapter(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	res, err := h.content.DeleteChapter(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Chapter deleted successfully", "deleted": res})
}

// POST /api/admin/chapters/:id/lessons
func (h *AdminHandler) CreateLesson(c *gin.Context) {
	chapterID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.LessonInput
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.content.CreateLesson(c.Request.Context(), chapterID, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"lesson": l, "message": "Lesson created successfully"})
}

// PUT /api/admin/lessons/:id
func (h *AdminHandler) UpdateLesson(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.LessonInput
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.content.UpdateLesson(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lesson": l, "message": "Lesson updated successfully"})
}

// DELETE /api/admin/lessons/:id
func (h *AdminHandler) DeleteLesson(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	res, err := h.content.DeleteLesson(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Lesson deleted successfully", "deleted": res})
}

// GET /api/admin/users?search=&role=&page=&limit=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, ok := queryInt(c, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	out, err := h.users.List(c.Request.Context(), repos.UserListFilter{
		Search: c.Query("search"),
		Role:   types.Role(c.Query("role")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/admin/users/:id
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}

// PUT /api/admin/users/:id/role
// body: { "role": "USER" | "ADMIN" }
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Role types.Role `json:"role" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.UpdateRole(c.Request.Context(), actorID, id, req.Role)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u, "message": "Role updated successfully"})
}

// DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	res, err := h.users.Delete(c.Request.Context(), actorID, id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "User deleted successfully", "deleted": res})
}

// queryInt reads an optional non-negative integer query param; 0 when absent.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		response.RespondAPIError(c, apierr.Validation("", "%s must be a non-negative integer", name))
		return 0, false
	}
	return n, true
}
