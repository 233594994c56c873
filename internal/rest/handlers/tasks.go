package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/auth"
	tasksform "github.com/nhle/taskboard/internal/rest/forms/tasks"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/pkg/rest/response"
)

// Task serves the task resource and the cross-project dashboard.
type Task struct {
	log       *logrus.Logger
	tasks     *service.TaskService
	analytics *service.AnalyticsService
}

func NewTaskHandler(tasks *service.TaskService, analytics *service.AnalyticsService, log *logrus.Logger) *Task {
	return &Task{log: log, tasks: tasks, analytics: analytics}
}

func (h *Task) EnrichRoutes(router gin.IRouter) {
	taskRoutes := router.Group("/tasks")
	taskRoutes.GET("", h.listTasksAction)
	taskRoutes.GET("/analytics/dashboard", h.dashboardAction)
	taskRoutes.POST("", h.createTaskAction)
	taskRoutes.GET("/:taskID", h.getTaskAction)
	taskRoutes.PUT("/:taskID", h.updateTaskAction)
	taskRoutes.DELETE("/:taskID", h.deleteTaskAction)
	taskRoutes.POST("/:taskID/comments", h.addCommentAction)
	taskRoutes.POST("/:taskID/subtasks", h.addSubtaskAction)
	taskRoutes.PUT("/:taskID/subtasks/:subtaskID/toggle", h.toggleSubtaskAction)
	taskRoutes.POST("/:taskID/dependencies", h.addDependencyAction)
	taskRoutes.POST("/:taskID/time-entries", h.addTimeEntryAction)
	taskRoutes.PUT("/:taskID/watch", h.watchAction)
	taskRoutes.DELETE("/:taskID/watch", h.unwatchAction)
}

// pagination is the list envelope metadata.
type pagination struct {
	Current int  `json:"current"`
	Pages   int  `json:"pages"`
	Total   int  `json:"total"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

func (h *Task) listTasksAction(c *gin.Context) {
	actor := auth.CurrentUser(c)

	opts := service.ListTasksOptions{
		Status:     queryString(c, "status"),
		Priority:   queryString(c, "priority"),
		ProjectID:  queryString(c, "project"),
		AssigneeID: queryString(c, "assignee"),
		Query:      queryString(c, "search"),
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 20),
	}

	tasks, total, err := h.tasks.List(c.Request.Context(), actor, opts)
	if err != nil {
		h.log.WithField("operation", "handlers.Task.listTasksAction").WithError(err).Error("failed to list tasks")
		response.HandleError(response.ResolveError(err), c)
		return
	}

	limit := opts.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	pages := (total + limit - 1) / limit

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"pagination": pagination{
			Current: page,
			Pages:   pages,
			Total:   total,
			HasNext: page < pages,
			HasPrev: page > 1,
		},
	})
}

func (h *Task) getTaskAction(c *gin.Context) {
	task, err := h.tasks.Get(c.Request.Context(), auth.CurrentUser(c), c.Param("taskID"))
	if err != nil {
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Task) createTaskAction(c *gin.Context) {
	const op = "handlers.Task.createTaskAction"
	log := h.log.WithField("operation", op)

	form := tasksform.NewCreateTaskForm()
	if verr, ok := form.ParseAndValidate(c); !ok {
		response.HandleError(verr, c)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), auth.CurrentUser(c), form.Input)
	if err != nil {
		log.WithError(err).Error("failed to create task")
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Task) updateTaskAction(c *gin.Context) {
	const op = "handlers.Task.updateTaskAction"
	log := h.log.WithField("operation", op)

	form := tasksform.NewUpdateTaskForm()
	if verr, ok := form.ParseAndValidate(c); !ok {
		response.HandleError(verr, c)
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), auth.CurrentUser(c), c.Param("taskID"), form.Changes)
	if err != nil {
		log.WithError(err).Error("failed to update task")
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Task) deleteTaskAction(c *gin.Context) {
	const op = "handlers.Task.deleteTaskAction"
	log := h.log.WithField("operation", op)

	if err := h.tasks.Delete(c.Request.Context(), auth.CurrentUser(c), c.Param("taskID")); err != nil {
		log.WithError(err).Error("failed to delete task")
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Task) addCommentAction(c *gin.Context) {
	form := tasksform.NewAddCommentForm()
	if verr, ok := form.ParseAndValidate(c); !ok {
		response.HandleError(verr, c)
		return
	}

	comment, err := h.tasks.AddComment(c.Request.Context(), auth.CurrentUser(c), c.Param("taskID"), form.Content)
	if err != nil {
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Task) addSubtaskAction(c *gin.Context) {
	form := tasksform.NewAddSubtaskForm()
	if verr, ok := form.ParseAndValidate(c); !ok {
		response.HandleError(verr, c)
		return
	}

	subtask, err := h.tasks.AddSubtask(c.Request.Context(), auth.CurrentUser(c), c.Param("taskID"), form.Title)
	if err != nil {
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusCreated, subtask)
}

func (h *Task) toggleSubtaskAction(c *gin.Context) {
	err := h.tasks.ToggleSubtask(c.Request.Context(), auth.CurrentUser(c), c.Param("taskID"), c.Param("subtaskID"))
	if err != nil {
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Task) addDependencyAction(c *gin.Context) {
	form := tasksform.NewAddDependencyForm()
	if verr, ok := form.ParseAndValidate(c); !ok {
		response.HandleError(verr, c)
		return
	}

	dep, err := h.tasks.AddDependency(c.Request.Context(), auth.CurrentUser(c), c.Param("taskID"), form.OtherTaskID, form.Relation)
	if err != nil {
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusCreated, dep)
}

func (h *Task) addTimeEntryAction(c *gin.Context) {
	form := tasksform.NewAddTimeEntryForm()
	if verr, ok := form.ParseAndValidate(c); !ok {
		response.HandleError(verr, c)
		return
	}

	entry, err := h.tasks.AddTimeEntry(c.Request.Context(), auth.CurrentUser(c), c.Param("taskID"), form.Entry)
	if err != nil {
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Task) watchAction(c *gin.Context) {
	if err := h.tasks.Watch(c.Request.Context(), auth.CurrentUser(c), c.Param("taskID")); err != nil {
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Task) unwatchAction(c *gin.Context) {
	if err := h.tasks.Unwatch(c.Request.Context(), auth.CurrentUser(c), c.Param("taskID")); err != nil {
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Task) dashboardAction(c *gin.Context) {
	const op = "handlers.Task.dashboardAction"
	log := h.log.WithField("operation", op)

	dashboard, err := h.analytics.Dashboard(c.Request.Context(), auth.CurrentUser(c))
	if err != nil {
		log.WithError(err).Error("failed to build dashboard")
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// queryString returns a pointer to a non-empty query value, or nil.
func queryString(c *gin.Context, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}

// queryInt parses an integer query value, falling back to def.
func queryInt(c *gin.Context, key string, def int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
