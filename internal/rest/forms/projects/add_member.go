package projects

import (
	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/rest/forms"
	"github.com/nhle/taskboard/pkg/rest/response"
)

type AddMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// AddMemberForm parses a membership body. Required: user_id. Role defaults
// to "member" in the service when absent.
type AddMemberForm struct {
	UserID string
	Role   string
}

func NewAddMemberForm() *AddMemberForm {
	return &AddMemberForm{}
}

func (f *AddMemberForm) ParseAndValidate(c *gin.Context) (response.Error, bool) {
	var request AddMemberRequest
	if verr, ok := forms.DecodeJSON(c, &request); !ok {
		return verr, false
	}

	if request.UserID == "" {
		return response.NewValidationError(map[string]string{
			"user_id": forms.MissedValue,
		}), false
	}

	f.UserID = request.UserID
	f.Role = request.Role
	return response.Error{}, true
}
