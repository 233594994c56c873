package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/rest/forms"
	"github.com/nhle/taskboard/pkg/rest/response"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginForm parses a login request. Required: email, password.
type LoginForm struct {
	Email    string
	Password string
}

func NewLoginForm() *LoginForm {
	return &LoginForm{}
}

func (f *LoginForm) ParseAndValidate(c *gin.Context) (response.Error, bool) {
	var request LoginRequest
	if verr, ok := forms.DecodeJSON(c, &request); !ok {
		return verr, false
	}

	errors := make(map[string]string)
	if request.Email == "" {
		errors["email"] = forms.MissedValue
	}
	if request.Password == "" {
		errors["password"] = forms.MissedValue
	}
	if len(errors) > 0 {
		return response.NewValidationError(errors), false
	}

	f.Email = request.Email
	f.Password = request.Password
	return response.Error{}, true
}
