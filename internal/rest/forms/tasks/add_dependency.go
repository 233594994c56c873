package tasks

import (
	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/rest/forms"
	"github.com/nhle/taskboard/pkg/rest/response"
)

type AddDependencyRequest struct {
	OtherTaskID string `json:"other_task_id"`
	Relation    string `json:"relation"`
}

// AddDependencyForm parses a dependency body. Required: other_task_id.
type AddDependencyForm struct {
	OtherTaskID string
	Relation    string
}

func NewAddDependencyForm() *AddDependencyForm {
	return &AddDependencyForm{}
}

func (f *AddDependencyForm) ParseAndValidate(c *gin.Context) (response.Error, bool) {
	var request AddDependencyRequest
	if verr, ok := forms.DecodeJSON(c, &request); !ok {
		return verr, false
	}

	if request.OtherTaskID == "" {
		return response.NewValidationError(map[string]string{
			"other_task_id": forms.MissedValue,
		}), false
	}

	f.OtherTaskID = request.OtherTaskID
	f.Relation = request.Relation
	if f.Relation == "" {
		f.Relation = "relates-to"
	}
	return response.Error{}, true
}
