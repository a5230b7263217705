package ports

import (
	"context"

	"github.com/taskito/backend/core"
)

// UserStore is the credential store accessor. Lookups by username or email are
// case-insensitive (implementations fold the argument to lowercase). Missing
// records are reported as core.ErrNotFound.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*core.User, error)
	GetByUsername(ctx context.Context, username string) (*core.User, error)
	GetByEmail(ctx context.Context, email string) (*core.User, error)
	List(ctx context.Context) ([]*core.User, error)

	Create(ctx context.Context, user *core.User) error
	Update(ctx context.Context, user *core.User) error
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error

	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
}

// TaskStore persists tasks and their comments. Missing records are reported
// as core.ErrNotFound.
type TaskStore interface {
	GetByID(ctx context.Context, id int64) (*core.Task, error)
	List(ctx context.Context, filter core.TaskFilter, page core.PageRequest) ([]*core.Task, int, error)
	ListByUser(ctx context.Context, userID int64) ([]*core.Task, error)
	Statistics(ctx context.Context) (*core.TaskStatistics, error)

	Create(ctx context.Context, task *core.Task) error
	Update(ctx context.Context, task *core.Task) error
	Delete(ctx context.Context, id int64) error

	CreateComment(ctx context.Context, comment *core.Comment) error
}
