package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	var got []string
	bus.Subscribe(TaskChanged, func(_ context.Context, e Event) { got = append(got, "a:"+e.TaskID) })
	bus.Subscribe(TaskChanged, func(_ context.Context, e Event) { got = append(got, "b:"+e.TaskID) })
	bus.Subscribe(TaskLevelChanged, func(_ context.Context, e Event) { got = append(got, "level:"+e.TaskID) })

	bus.Publish(ctx, Event{Type: TaskChanged, TaskID: "strength"})

	assert.Equal(t, []string{"a:strength", "b:strength"}, got)
	assert.Equal(t, 3, bus.Count())
}

func TestBusTimestamp(t *testing.T) {
	bus := NewBus()

	var event Event
	bus.Subscribe(TaskMasteryChanged, func(_ context.Context, e Event) { event = e })
	bus.Publish(context.Background(), Event{Type: TaskMasteryChanged, TaskID: "courier"})

	assert.False(t, event.Timestamp.IsZero())
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0

	unsubscribe := bus.Subscribe(TaskChanged, func(context.Context, Event) { calls++ })
	bus.Publish(context.Background(), Event{Type: TaskChanged})
	unsubscribe()
	unsubscribe()
	bus.Publish(context.Background(), Event{Type: TaskChanged})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.Count())
}

func TestBusNilHandler(t *testing.T) {
	bus := NewBus()
	unsubscribe := bus.Subscribe(TaskChanged, nil)
	unsubscribe()
	assert.Equal(t, 0, bus.Count())
}

func TestTaskEvents(t *testing.T) {
	assert.ElementsMatch(t, []EventType{"task:changed", "task:levelChanged", "task:masteryChanged"}, TaskEvents())
}
