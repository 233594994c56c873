package projects

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/rest/forms"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/pkg/rest/response"
)

type CreateProjectRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	Tags        []string     `json:"tags"`
	Color       string       `json:"color"`
	Budget      model.Budget `json:"budget"`
	Deadline    *time.Time   `json:"deadline"`
}

// CreateProjectForm parses a project creation request. Required: name.
type CreateProjectForm struct {
	Input service.CreateProjectInput
}

func NewCreateProjectForm() *CreateProjectForm {
	return &CreateProjectForm{}
}

func (f *CreateProjectForm) ParseAndValidate(c *gin.Context) (response.Error, bool) {
	var request CreateProjectRequest
	if verr, ok := forms.DecodeJSON(c, &request); !ok {
		return verr, false
	}

	if request.Name == "" {
		return response.NewValidationError(map[string]string{
			"name": forms.MissedValue,
		}), false
	}

	f.Input = service.CreateProjectInput{
		Name:        request.Name,
		Description: request.Description,
		Status:      request.Status,
		Priority:    request.Priority,
		Tags:        request.Tags,
		Color:       request.Color,
		Budget:      request.Budget,
		Deadline:    request.Deadline,
	}
	return response.Error{}, true
}
