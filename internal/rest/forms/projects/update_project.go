package projects

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/rest/forms"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/pkg/rest/response"
)

type UpdateProjectRequest struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Status      *string       `json:"status"`
	Priority    *string       `json:"priority"`
	Tags        *[]string     `json:"tags"`
	Color       *string       `json:"color"`
	Budget      *model.Budget `json:"budget"`
	Progress    *int          `json:"progress"`
	Archived    *bool         `json:"archived"`
	Deadline    *time.Time    `json:"deadline"`
}

// UpdateProjectForm parses a partial project update.
type UpdateProjectForm struct {
	Changes service.ProjectChanges
}

func NewUpdateProjectForm() *UpdateProjectForm {
	return &UpdateProjectForm{}
}

func (f *UpdateProjectForm) ParseAndValidate(c *gin.Context) (response.Error, bool) {
	var request UpdateProjectRequest
	if verr, ok := forms.DecodeJSON(c, &request); !ok {
		return verr, false
	}

	f.Changes = service.ProjectChanges{
		Name:        request.Name,
		Description: request.Description,
		Status:      request.Status,
		Priority:    request.Priority,
		Tags:        request.Tags,
		Color:       request.Color,
		Budget:      request.Budget,
		Progress:    request.Progress,
		Archived:    request.Archived,
		Deadline:    request.Deadline,
	}
	return response.Error{}, true
}
