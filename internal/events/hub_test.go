package events

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestHub() *Hub {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewHub(logrus.NewEntry(log))
}

func TestPublishFanOut(t *testing.T) {
	hub := newTestHub()

	first := hub.Subscribe("p1")
	second := hub.Subscribe("p1")
	other := hub.Subscribe("p2")
	defer first.Close()
	defer second.Close()
	defer other.Close()

	hub.Publish("p1", "task-created", map[string]string{"id": "t1"})

	for i, sub := range []*Subscription{first, second} {
		select {
		case event := <-sub.C:
			if event.ProjectID != "p1" || event.Name != "task-created" {
				t.Errorf("subscriber %d got %+v", i, event)
			}
		default:
			t.Errorf("subscriber %d received nothing", i)
		}
	}

	select {
	case event := <-other.C:
		t.Errorf("p2 subscriber received p1 event %+v", event)
	default:
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	hub := newTestHub()
	sub := hub.Subscribe("p1")
	defer sub.Close()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish("p1", "task-updated", nil)
	}

	if got := len(sub.C); got != subscriberBuffer {
		t.Errorf("buffered = %d, want %d with overflow dropped", got, subscriberBuffer)
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	hub := newTestHub()
	sub := hub.Subscribe("p1")

	if got := hub.SubscriberCount("p1"); got != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", got)
	}

	sub.Close()

	if got := hub.SubscriberCount("p1"); got != 0 {
		t.Errorf("SubscriberCount after Close = %d, want 0", got)
	}

	// Publishing to a closed subscription must not panic.
	hub.Publish("p1", "task-updated", nil)

	// C is closed; reads drain and then report closed.
	if _, ok := <-sub.C; ok {
		t.Error("read from closed subscription channel succeeded")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	hub := newTestHub()
	sub := hub.Subscribe("p1")

	sub.Close()
	sub.Close()
}
