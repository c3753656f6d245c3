package events_test

import (
	"testing"

	"github.com/YasNanNan2/FutariNote/internal/events"
)

func TestHub_PublishReachesMatchingGroup(t *testing.T) {
	hub := events.NewHub()

	chA, cancelA := hub.Subscribe("group-a")
	defer cancelA()
	chB, cancelB := hub.Subscribe("group-b")
	defer cancelB()

	hub.Publish(events.Event{Type: events.EventTaskCreated, GroupID: "group-a"})

	select {
	case event := <-chA:
		if event.Type != events.EventTaskCreated {
			t.Errorf("type = %s, want task_created", event.Type)
		}
	default:
		t.Fatal("group-a subscriber got nothing")
	}

	select {
	case event := <-chB:
		t.Errorf("group-b subscriber received %v", event)
	default:
	}
}

func TestHub_CancelRemovesSubscriber(t *testing.T) {
	hub := events.NewHub()

	_, cancel := hub.Subscribe("group-a")
	if hub.SubscriberCount("group-a") != 1 {
		t.Fatalf("subscriber count = %d, want 1", hub.SubscriberCount("group-a"))
	}

	cancel()
	if hub.SubscriberCount("group-a") != 0 {
		t.Errorf("subscriber count after cancel = %d, want 0", hub.SubscriberCount("group-a"))
	}

	// Double cancel must not panic or close twice.
	cancel()
}

func TestHub_SlowSubscriberDropsEvents(t *testing.T) {
	hub := events.NewHub()

	ch, cancel := hub.Subscribe("group-a")
	defer cancel()

	// Overflow the buffer; Publish must never block.
	for i := 0; i < 100; i++ {
		hub.Publish(events.Event{Type: events.EventStampSent, GroupID: "group-a"})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	if received == 0 || received >= 100 {
		t.Errorf("received = %d, want a buffered subset", received)
	}
}
