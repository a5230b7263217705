package ports

import (
	"context"

	"github.com/taskito/backend/core"
)

// EventPublisher publishes task events to notify connected clients
type EventPublisher interface {
	PublishTaskCreated(ctx context.Context, task *core.Task) error
	PublishTaskUpdated(ctx context.Context, task *core.Task) error
	PublishTaskDeleted(ctx context.Context, taskID int64) error
}
