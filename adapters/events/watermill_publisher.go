package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/taskito/backend/core"
	"github.com/taskito/backend/ports"
)

// TaskTopic is the topic task events are published to. WebSocket clients
// subscribed to the "tasks" channel receive these payloads verbatim.
const TaskTopic = "taskito.tasks"

// Task event names understood by clients.
const (
	EventTaskCreated = "created"
	EventTaskUpdated = "updated"
	EventTaskDeleted = "deleted"
)

// TaskEvent is the wire payload broadcast for a task change.
type TaskEvent struct {
	Type  string      `json:"type"`
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     TaskTopic,
	}
}

// PublishTaskCreated publishes a task created event
func (p *WatermillPublisher) PublishTaskCreated(ctx context.Context, task *core.Task) error {
	return p.publish(EventTaskCreated, task)
}

// PublishTaskUpdated publishes a task updated event
func (p *WatermillPublisher) PublishTaskUpdated(ctx context.Context, task *core.Task) error {
	return p.publish(EventTaskUpdated, task)
}

// PublishTaskDeleted publishes a task deleted event carrying only the id
func (p *WatermillPublisher) PublishTaskDeleted(ctx context.Context, taskID int64) error {
	return p.publish(EventTaskDeleted, map[string]int64{"id": taskID})
}

func (p *WatermillPublisher) publish(event string, data interface{}) error {
	payload, err := json.Marshal(TaskEvent{Type: "task", Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
