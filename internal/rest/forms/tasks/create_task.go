package tasks

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/rest/forms"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/pkg/rest/response"
)

type CreateTaskRequest struct {
	ProjectID      string        `json:"project_id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Priority       string        `json:"priority"`
	AssigneeID     *string       `json:"assignee_id"`
	DueDate        *time.Time    `json:"due_date"`
	EstimatedHours float64       `json:"estimated_hours"`
	Labels         []model.Label `json:"labels"`
}

// CreateTaskForm parses a task creation request. Required: project_id, title.
type CreateTaskForm struct {
	Input service.CreateTaskInput
}

func NewCreateTaskForm() *CreateTaskForm {
	return &CreateTaskForm{}
}

func (f *CreateTaskForm) ParseAndValidate(c *gin.Context) (response.Error, bool) {
	var request CreateTaskRequest
	if verr, ok := forms.DecodeJSON(c, &request); !ok {
		return verr, false
	}

	errors := make(map[string]string)
	if request.ProjectID == "" {
		errors["project_id"] = forms.MissedValue
	}
	if request.Title == "" {
		errors["title"] = forms.MissedValue
	}
	if len(errors) > 0 {
		return response.NewValidationError(errors), false
	}

	f.Input = service.CreateTaskInput{
		ProjectID:      request.ProjectID,
		Title:          request.Title,
		Description:    request.Description,
		Priority:       request.Priority,
		AssigneeID:     request.AssigneeID,
		DueDate:        request.DueDate,
		EstimatedHours: request.EstimatedHours,
		Labels:         request.Labels,
	}
	return response.Error{}, true
}
