package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnit-backend/internal/http/response"
	"github.com/yungbote/learnit-backend/internal/services"
)

type CatalogHandler struct {
	catalog services.CatalogService
}

func NewCatalogHandler(catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /api/modules
func (h *CatalogHandler) ListModules(c *gin.Context) {
	mods, err := h.catalog.ListModules(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"modules": mods})
}

// GET /api/modules/:id
func (h *CatalogHandler) GetModule(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	m, err := h.catalog.GetModule(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"module": m})
}

// GET /api/modules/:id/prerequisites
func (h *CatalogHandler) Prerequisites(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	pre, err := h.catalog.Prerequisites(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"prerequisites": pre})
}

// GET /api/modules/:id/roadmap
func (h *CatalogHandler) Roadmap(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	entries, err := h.catalog.Roadmap(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"roadmap": entries})
}

// GET /api/learning-paths
func (h *CatalogHandler) ListPaths(c *gin.Context) {
	paths, err := h.catalog.ListPaths(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"paths": paths})
}

// GET /api/learning-paths/:id
func (h *CatalogHandler) GetPath(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog.GetPath(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"path": p})
}
