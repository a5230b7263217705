package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/taskito/backend/core"
)

// CreateSchema creates the users, tasks and comments tables if they do not
// exist yet. Production deployments run real migrations; this covers local
// development and the sqlite test databases.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*core.User)(nil),
		(*core.Task)(nil),
		(*core.Comment)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}
	return nil
}
