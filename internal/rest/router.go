// Package rest assembles the gin engine: public auth routes, the
// JWT-protected API surface, and the websocket event stream.
package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/auth"
	"github.com/nhle/taskboard/internal/events"
	"github.com/nhle/taskboard/internal/rest/handlers"
	"github.com/nhle/taskboard/internal/service"
)

// Services bundles the service layer for router construction.
type Services struct {
	Users     *service.UserService
	Projects  *service.ProjectService
	Tasks     *service.TaskService
	Analytics *service.AnalyticsService
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(svcs Services, tokens *auth.Manager, hub *events.Hub, log *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	handlers.NewAuthHandler(svcs.Users, log).EnrichRoutes(router)

	api := router.Group("/api")
	api.Use(auth.Middleware(tokens))

	handlers.NewTaskHandler(svcs.Tasks, svcs.Analytics, log).EnrichRoutes(api)
	handlers.NewProjectHandler(svcs.Projects, svcs.Analytics, log).EnrichRoutes(api)
	handlers.NewUserHandler(svcs.Users, svcs.Analytics, log).EnrichRoutes(api)
	handlers.NewEventsHandler(svcs.Projects, hub, log).EnrichRoutes(api)

	return router
}
