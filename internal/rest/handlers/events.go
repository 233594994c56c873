package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/auth"
	"github.com/nhle/taskboard/internal/events"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/pkg/rest/response"
)

// Events streams project lifecycle events over a websocket. The caller's
// project access is checked before the channel subscription is created.
type Events struct {
	log      *logrus.Logger
	projects *service.ProjectService
	hub      *events.Hub
	upgrader websocket.Upgrader
}

func NewEventsHandler(projects *service.ProjectService, hub *events.Hub, log *logrus.Logger) *Events {
	return &Events{
		log:      log,
		projects: projects,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Events) EnrichRoutes(router gin.IRouter) {
	router.GET("/projects/:projectID/events", h.subscribeAction)
}

func (h *Events) subscribeAction(c *gin.Context) {
	const op = "handlers.Events.subscribeAction"
	log := h.log.WithField("operation", op)

	projectID := c.Param("projectID")
	if _, err := h.projects.Get(c.Request.Context(), auth.CurrentUser(c), projectID); err != nil {
		response.HandleError(response.ResolveError(err), c)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Error("websocket upgrade failed")
		return
	}

	sub := h.hub.Subscribe(projectID)
	defer sub.Close()
	defer conn.Close()

	// Drain the read side so close frames are processed; subscribers never
	// send meaningful data.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sub.Close()
				return
			}
		}
	}()

	for event := range sub.C {
		if err := conn.WriteJSON(event); err != nil {
			log.WithError(err).Debug("dropping disconnected subscriber")
			return
		}
	}
}
