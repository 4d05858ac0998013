// Package events is the in-process message bus between the progression
// engine and its listeners.
package events

import (
	"context"
	"time"
)

// EventType names a domain event.
type EventType string

const (
	// TaskChanged fires when the active task is selected.
	TaskChanged EventType = "task:changed"
	// TaskLevelChanged fires on every task completion.
	TaskLevelChanged EventType = "task:levelChanged"
	// TaskMasteryChanged fires when a completion moves a task to a new mastery tier.
	TaskMasteryChanged EventType = "task:masteryChanged"
)

// TaskEvents lists the events a save service listens to.
func TaskEvents() []EventType {
	return []EventType{TaskChanged, TaskMasteryChanged, TaskLevelChanged}
}

// Event identifies the affected task. Listeners must not rely on
// anything beyond the task id.
type Event struct {
	Type      EventType `json:"type"`
	TaskID    string    `json:"taskId"`
	SessionID string    `json:"sessionId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler reacts to one event. Handlers run synchronously on the
// publisher's goroutine and must not publish recursively.
type Handler func(ctx context.Context, event Event)

// Publisher emits events.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Subscriber registers handlers. The returned function removes the
// subscription.
type Subscriber interface {
	Subscribe(eventType EventType, handler Handler) (unsubscribe func())
}
