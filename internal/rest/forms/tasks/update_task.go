package tasks

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/rest/forms"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/pkg/rest/response"
)

type UpdateTaskRequest struct {
	Title          *string        `json:"title"`
	Description    *string        `json:"description"`
	Status         *string        `json:"status"`
	Priority       *string        `json:"priority"`
	AssigneeID     *string        `json:"assignee_id"`
	DueDate        *time.Time     `json:"due_date"`
	EstimatedHours *float64       `json:"estimated_hours"`
	ActualHours    *float64       `json:"actual_hours"`
	Progress       *int           `json:"progress"`
	Labels         *[]model.Label `json:"labels"`
	Archived       *bool          `json:"archived"`
}

// UpdateTaskForm parses a partial task update. Absent fields stay untouched;
// constraint checks happen in the service so every violation reports at once.
type UpdateTaskForm struct {
	Changes service.TaskChanges
}

func NewUpdateTaskForm() *UpdateTaskForm {
	return &UpdateTaskForm{}
}

func (f *UpdateTaskForm) ParseAndValidate(c *gin.Context) (response.Error, bool) {
	var request UpdateTaskRequest
	if verr, ok := forms.DecodeJSON(c, &request); !ok {
		return verr, false
	}

	f.Changes = service.TaskChanges{
		Title:          request.Title,
		Description:    request.Description,
		Status:         request.Status,
		Priority:       request.Priority,
		AssigneeID:     request.AssigneeID,
		DueDate:        request.DueDate,
		EstimatedHours: request.EstimatedHours,
		ActualHours:    request.ActualHours,
		Progress:       request.Progress,
		Labels:         request.Labels,
		Archived:       request.Archived,
	}
	return response.Error{}, true
}
