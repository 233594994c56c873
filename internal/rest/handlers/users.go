package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/auth"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/pkg/rest/response"
)

// User serves user lookups and the caller's personal statistics.
type User struct {
	log       *logrus.Logger
	users     *service.UserService
	analytics *service.AnalyticsService
}

func NewUserHandler(users *service.UserService, analytics *service.AnalyticsService, log *logrus.Logger) *User {
	return &User{log: log, users: users, analytics: analytics}
}

func (h *User) EnrichRoutes(router gin.IRouter) {
	userRoutes := router.Group("/users")
	userRoutes.GET("", h.listUsersAction)
	userRoutes.GET("/me/stats", h.myStatsAction)
	userRoutes.GET("/:userID", h.getUserAction)
}

func (h *User) listUsersAction(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.log.WithField("operation", "handlers.User.listUsersAction").WithError(err).Error("failed to list users")
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *User) getUserAction(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("userID"))
	if err != nil {
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *User) myStatsAction(c *gin.Context) {
	stats, err := h.analytics.UserStats(c.Request.Context(), auth.CurrentUser(c))
	if err != nil {
		h.log.WithField("operation", "handlers.User.myStatsAction").WithError(err).Error("failed to build user stats")
		response.HandleError(response.ResolveError(err), c)
		return
	}
	c.JSON(http.StatusOK, stats)
}
