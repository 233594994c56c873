// Package events implements the project-scoped lifecycle event relay: a
// publish/subscribe hub keyed by project id. Delivery is fire-and-forget and
// at-most-once; a subscriber that falls behind or disconnects simply misses
// events. The hub knows nothing about transports.
package events

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/model"
)

// subscriberBuffer bounds how far a subscriber may lag before events are
// dropped rather than blocking the publisher.
const subscriberBuffer = 16

// Subscription is one subscriber's membership in a project channel.
// Events arrive on C until Close is called.
type Subscription struct {
	C chan model.Event

	hub       *Hub
	projectID string
	once      sync.Once
}

// Close removes the subscription from the hub and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s)
		close(s.C)
	})
}

// Hub fans lifecycle events out to subscribers grouped by project id.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
	log  *logrus.Entry
}

// NewHub builds an empty hub.
func NewHub(log *logrus.Entry) *Hub {
	return &Hub{
		subs: make(map[string]map[*Subscription]struct{}),
		log:  log,
	}
}

// Subscribe joins the project's channel and returns the subscription.
func (h *Hub) Subscribe(projectID string) *Subscription {
	sub := &Subscription{
		C:         make(chan model.Event, subscriberBuffer),
		hub:       h,
		projectID: projectID,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[projectID] == nil {
		h.subs[projectID] = make(map[*Subscription]struct{})
	}
	h.subs[projectID][sub] = struct{}{}
	return sub
}

// Publish delivers the event to every current subscriber of the project's
// channel. A full subscriber buffer drops the event for that subscriber.
func (h *Hub) Publish(projectID, event string, payload any) {
	e := model.Event{ProjectID: projectID, Name: event, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[projectID] {
		select {
		case sub.C <- e:
		default:
			h.log.WithFields(logrus.Fields{
				"project_id": projectID,
				"event":      event,
			}).Warn("dropping event for slow subscriber")
		}
	}
}

// SubscriberCount returns the number of subscribers on a project's channel.
func (h *Hub) SubscriberCount(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[projectID])
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.projectID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.projectID)
		}
	}
}
