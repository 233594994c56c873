package tasks

import (
	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/rest/forms"
	"github.com/nhle/taskboard/pkg/rest/response"
)

type AddSubtaskRequest struct {
	Title string `json:"title"`
}

// AddSubtaskForm parses a subtask body. Required: title.
type AddSubtaskForm struct {
	Title string
}

func NewAddSubtaskForm() *AddSubtaskForm {
	return &AddSubtaskForm{}
}

func (f *AddSubtaskForm) ParseAndValidate(c *gin.Context) (response.Error, bool) {
	var request AddSubtaskRequest
	if verr, ok := forms.DecodeJSON(c, &request); !ok {
		return verr, false
	}

	if request.Title == "" {
		return response.NewValidationError(map[string]string{
			"title": forms.MissedValue,
		}), false
	}

	f.Title = request.Title
	return response.Error{}, true
}
