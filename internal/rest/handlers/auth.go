package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	authform "github.com/nhle/taskboard/internal/rest/forms/auth"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/pkg/rest/response"
)

// Auth serves registration and login.
type Auth struct {
	log   *logrus.Logger
	users *service.UserService
}

func NewAuthHandler(users *service.UserService, log *logrus.Logger) *Auth {
	return &Auth{log: log, users: users}
}

func (h *Auth) EnrichRoutes(router gin.IRouter) {
	authRoutes := router.Group("/auth")
	authRoutes.POST("/register", h.registerAction)
	authRoutes.POST("/login", h.loginAction)
}

func (h *Auth) registerAction(c *gin.Context) {
	const op = "handlers.Auth.registerAction"
	log := h.log.WithField("operation", op)

	form := authform.NewRegisterForm()
	if verr, ok := form.ParseAndValidate(c); !ok {
		response.HandleError(verr, c)
		return
	}

	user, token, err := h.users.Register(c.Request.Context(), form.Input)
	if err != nil {
		log.WithError(err).Error("failed to register user")
		response.HandleError(response.ResolveError(err), c)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

func (h *Auth) loginAction(c *gin.Context) {
	const op = "handlers.Auth.loginAction"
	log := h.log.WithField("operation", op)

	form := authform.NewLoginForm()
	if verr, ok := form.ParseAndValidate(c); !ok {
		response.HandleError(verr, c)
		return
	}

	user, token, err := h.users.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		log.WithError(err).Warn("failed login attempt")
		var denied *service.AccessDeniedError
		if errors.As(err, &denied) {
			// Bad credentials are an authentication failure, not authorization.
			response.HandleError(response.NewUnauthorizedError(), c)
			return
		}
		response.HandleError(response.ResolveError(err), c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}
