// Package events provides in-process fan-out of change notifications to
// connected clients, scoped by group.
package events

import "sync"

type EventType string

const (
	EventTaskCreated   EventType = "task_created"
	EventTaskUpdated   EventType = "task_updated"
	EventTaskCompleted EventType = "task_completed"
	EventTaskDeleted   EventType = "task_deleted"
	EventGoalCreated   EventType = "goal_created"
	EventGoalUpdated   EventType = "goal_updated"
	EventGoalDeleted   EventType = "goal_deleted"
	EventStampSent     EventType = "stamp_sent"
	EventMemberJoined  EventType = "member_joined"
	EventMemberLeft    EventType = "member_left"
)

type Event struct {
	Type    EventType   `json:"type"`
	GroupID string      `json:"groupId"`
	Payload interface{} `json:"payload,omitempty"`
}

type subscriber struct {
	groupID string
	ch      chan Event
}

// Hub fans events out to subscribers of the matching group. Publish never
// blocks: a subscriber whose buffer is full misses the event and is expected
// to refetch on reconnect.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	buffer      int
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*subscriber]struct{}),
		buffer:      16,
	}
}

// Subscribe registers a listener for one group. The returned cancel function
// must be called when the listener goes away.
func (hub *Hub) Subscribe(groupID string) (<-chan Event, func()) {
	sub := &subscriber{
		groupID: groupID,
		ch:      make(chan Event, hub.buffer),
	}

	hub.mu.Lock()
	hub.subscribers[sub] = struct{}{}
	hub.mu.Unlock()

	cancel := func() {
		hub.mu.Lock()
		if _, ok := hub.subscribers[sub]; ok {
			delete(hub.subscribers, sub)
			close(sub.ch)
		}
		hub.mu.Unlock()
	}
	return sub.ch, cancel
}

func (hub *Hub) Publish(event Event) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for sub := range hub.subscribers {
		if sub.groupID != event.GroupID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// slow subscriber, drop
		}
	}
}

// SubscriberCount reports how many listeners a group currently has. Used by
// tests and metrics.
func (hub *Hub) SubscriberCount(groupID string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	count := 0
	for sub := range hub.subscribers {
		if sub.groupID == groupID {
			count++
		}
	}
	return count
}
