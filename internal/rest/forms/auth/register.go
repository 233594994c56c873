package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/rest/forms"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/pkg/rest/response"
)

type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// RegisterForm parses a registration request. Required: email, password, name.
type RegisterForm struct {
	Input service.RegisterInput
}

func NewRegisterForm() *RegisterForm {
	return &RegisterForm{}
}

func (f *RegisterForm) ParseAndValidate(c *gin.Context) (response.Error, bool) {
	var request RegisterRequest
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
	if request.Name == "" {
		errors["name"] = forms.MissedValue
	}
	if len(errors) > 0 {
		return response.NewValidationError(errors), false
	}

	f.Input = service.RegisterInput{
		Email:      request.Email,
		Password:   request.Password,
		Name:       request.Name,
		Role:       request.Role,
		Department: request.Department,
	}
	return response.Error{}, true
}
