package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mayurgeek/devota-backend/internal/service"
)

type ProjectHandler interface {
	CheckAccess(c *gin.Context)
	ListProjects(c *gin.Context)
	CreateProject(c *gin.Context)
	BlockProject(c *gin.Context)
	UnblockProject(c *gin.Context)
}

type projectHandler struct {
	projectService service.ProjectService
	logger         *zap.Logger
}

func NewProjectHandler(projectService service.ProjectService, logger *zap.Logger) ProjectHandler {
	return &projectHandler{projectService: projectService, logger: logger}
}

type CreateProjectRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Status    string `json:"status"`
}

type ProjectIDRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
}

const (
	msgProjectIDRequired = "Project ID is required"
	msgProjectNotFound   = "Project not found"
	msgInvalidStatus     = "Status must be either allowed or blocked"
)

// CheckAccess handles GET /check-access?projectId=&name=&status=. It is public.
func (h *projectHandler) CheckAccess(c *gin.Context) {
	projectID := c.Query("projectId")
	if projectID == "" {
		badRequest(c, msgProjectIDRequired)
		return
	}

	decision, err := h.projectService.CheckAccess(c.Request.Context(), projectID, c.Query("name"), c.Query("status"))
	if err != nil {
		AbortWithError(c, h.logger, err, messages{service.ErrValidation: msgInvalidStatus})
		return
	}

	message := "Access denied"
	if decision.Allowed {
		message = "Access granted"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"allowed": decision.Allowed,
		"message": message,
	})
}

func (h *projectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projectService.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, h.logger, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "projects": projects})
}

func (h *projectHandler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Project ID and name are required")
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), req.ProjectID, req.Name, req.Status)
	if err != nil {
		AbortWithError(c, h.logger, err, messages{
			service.ErrValidation: msgInvalidStatus,
			service.ErrConflict:   "Project ID already in use",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "project": project})
}

func (h *projectHandler) BlockProject(c *gin.Context) {
	h.setStatus(c, h.projectService.Block, "Project blocked successfully")
}

func (h *projectHandler) UnblockProject(c *gin.Context) {
	h.setStatus(c, h.projectService.Unblock, "Project unblocked successfully")
}

func (h *projectHandler) setStatus(c *gin.Context, apply func(ctx context.Context, projectID string) error, success string) {
	var req ProjectIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgProjectIDRequired)
		return
	}

	if err := apply(c.Request.Context(), req.ProjectID); err != nil {
		AbortWithError(c, h.logger, err, messages{
			service.ErrValidation: msgProjectIDRequired,
			service.ErrNotFound:   msgProjectNotFound,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": success})
}
