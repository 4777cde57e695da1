package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/internal/service"
)

type ProjectHandler struct {
	projects *service.ProjectService
	logger   *zap.Logger
}

func NewProjectHandler(projects *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// List handles GET /api/projects. Clients only see their own projects.
func (h *ProjectHandler) List(c *gin.Context) {
	f, err := service.ParseProjectFilter(c.Query("status"), c.Query("priority"), "")
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	projects, err := h.projects.ListFor(c.Request.Context(), CurrentUser(c), f)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// AdminList handles GET /api/admin/projects.
func (h *ProjectHandler) AdminList(c *gin.Context) {
	f, err := service.ParseProjectFilter(c.Query("status"), c.Query("priority"), c.Query("clientId"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	projects, err := h.projects.List(c.Request.Context(), f)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// Get handles GET /api/projects/:id for the owning client or an admin.
func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.projects.GetFor(c.Request.Context(), CurrentUser(c), c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) AdminGet(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	var in service.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, h.logger, err)
		return
	}
	p, err := h.projects.CreateFor(c.Request.Context(), CurrentUser(c), in)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	h.logger.Info("project-created",
		zap.String("project_id", p.ID.Hex()),
		zap.String("client_id", p.ClientID.Hex()),
	)
	c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandler) AdminCreate(c *gin.Context) {
	var in service.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, h.logger, err)
		return
	}
	p, err := h.projects.Create(c.Request.Context(), in)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	h.logger.Info("project-created",
		zap.String("project_id", p.ID.Hex()),
		zap.String("client_id", p.ClientID.Hex()),
	)
	c.JSON(http.StatusCreated, p)
}

// Update handles PUT on a project. Admin only.
func (h *ProjectHandler) Update(c *gin.Context) {
	var patch service.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badBody(c, h.logger, err)
		return
	}
	p, err := h.projects.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE on a project. Admin only.
func (h *ProjectHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.projects.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	h.logger.Info("project-deleted", zap.String("project_id", id))
	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}
