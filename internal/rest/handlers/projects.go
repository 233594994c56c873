package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/auth"
	projectsform "github.com/nhle/taskboard/internal/rest/forms/projects"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/pkg/rest/response"
)

// Project serves the project resource, its membership, and its analytics.
type Project struct {
	log       *logrus.Logger
	projects  *service.ProjectService
	analytics *service.AnalyticsService
}

func NewProjectHandler(projects *service.ProjectService, analytics *service.AnalyticsService, log *logrus.Logger) *Project {
	return &Project{log: log, projects: projects, analytics: analytics}
}

func (h *Project) EnrichRoutes(router gin.IRouter) {
	projectRoutes := router.Group("/projects")
	projectRoutes.GET("", h.listProjectsAction)
	projectRoutes.POST("", h.createProjectAction)
	projectRoutes.GET("/:projectID", h.getProjectAction)
	projectRoutes.PUT("/:projectID", h.updateProjectAction)
	projectRoutes.DELETE("/:projectID", h.deleteProjectAction)
	projectRoutes.POST("/:projectID/members", h.addMemberAction)
	projectRoutes.DELETE("/:projectID/members/:userID", h.removeMemberAction)
	projectRoutes.GET("/:projectID/analytics", h.analyticsAction)
}

func (h *Project) listProjectsAction(c *gin.Context) {
	includeArchived := c.Query("archived") == "true"

	projects, err := h.projects.List(c.Request.Context(), auth.CurrentUser(c), includeArchived)
	if err != nil {
		h.log.WithField("operation", "handlers.Project.listProjectsAction").WithError(err).Error("failed to list projects")
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *Project) getProjectAction(c *gin.Context) {
	project, err := h.projects.Get(c.Request.Context(), auth.CurrentUser(c), c.Param("projectID"))
	if err != nil {
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Project) createProjectAction(c *gin.Context) {
	const op = "handlers.Project.createProjectAction"
	log := h.log.WithField("operation", op)

	form := projectsform.NewCreateProjectForm()
	if verr, ok := form.ParseAndValidate(c); !ok {
		response.HandleError(verr, c)
		return
	}

	project, err := h.projects.Create(c.Request.Context(), auth.CurrentUser(c), form.Input)
	if err != nil {
		log.WithError(err).Error("failed to create project")
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *Project) updateProjectAction(c *gin.Context) {
	const op = "handlers.Project.updateProjectAction"
	log := h.log.WithField("operation", op)

	form := projectsform.NewUpdateProjectForm()
	if verr, ok := form.ParseAndValidate(c); !ok {
		response.HandleError(verr, c)
		return
	}

	project, err := h.projects.Update(c.Request.Context(), auth.CurrentUser(c), c.Param("projectID"), form.Changes)
	if err != nil {
		log.WithError(err).Error("failed to update project")
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Project) deleteProjectAction(c *gin.Context) {
	const op = "handlers.Project.deleteProjectAction"
	log := h.log.WithField("operation", op)

	if err := h.projects.Delete(c.Request.Context(), auth.CurrentUser(c), c.Param("projectID")); err != nil {
		log.WithError(err).Error("failed to delete project")
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Project) addMemberAction(c *gin.Context) {
	const op = "handlers.Project.addMemberAction"
	log := h.log.WithField("operation", op)

	form := projectsform.NewAddMemberForm()
	if verr, ok := form.ParseAndValidate(c); !ok {
		response.HandleError(verr, c)
		return
	}

	project, err := h.projects.AddMember(c.Request.Context(), auth.CurrentUser(c), c.Param("projectID"), form.UserID, form.Role)
	if err != nil {
		log.WithError(err).Error("failed to add member")
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Project) removeMemberAction(c *gin.Context) {
	const op = "handlers.Project.removeMemberAction"
	log := h.log.WithField("operation", op)

	project, err := h.projects.RemoveMember(c.Request.Context(), auth.CurrentUser(c), c.Param("projectID"), c.Param("userID"))
	if err != nil {
		log.WithError(err).Error("failed to remove member")
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Project) analyticsAction(c *gin.Context) {
	analytics, err := h.analytics.Project(c.Request.Context(), auth.CurrentUser(c), c.Param("projectID"))
	if err != nil {
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusOK, analytics)
}
