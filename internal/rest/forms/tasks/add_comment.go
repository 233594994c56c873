package tasks

import (
	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/rest/forms"
	"github.com/nhle/taskboard/pkg/rest/response"
)

type AddCommentRequest struct {
	Content string `json:"content"`
}

// AddCommentForm parses a comment body. Required: content.
type AddCommentForm struct {
	Content string
}

func NewAddCommentForm() *AddCommentForm {
	return &AddCommentForm{}
}

func (f *AddCommentForm) ParseAndValidate(c *gin.Context) (response.Error, bool) {
	var request AddCommentRequest
	if verr, ok := forms.DecodeJSON(c, &request); !ok {
		return verr, false
	}

	if request.Content == "" {
		return response.NewValidationError(map[string]string{
			"content": forms.MissedValue,
		}), false
	}

	f.Content = request.Content
	return response.Error{}, true
}
