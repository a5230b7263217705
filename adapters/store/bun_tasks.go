package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/taskito/backend/core"
	"github.com/taskito/backend/ports"
)

// BunTaskStore is a bun-backed implementation of the TaskStore port.
type BunTaskStore struct {
	db *bun.DB
}

// NewBunTaskStore creates a new relational task store
func NewBunTaskStore(db *bun.DB) ports.TaskStore {
	return &BunTaskStore{db: db}
}

func (s *BunTaskStore) GetByID(ctx context.Context, id int64) (*core.Task, error) {
	task := new(core.Task)
	err := s.db.NewSelect().
		Model(task).
		Relation("Comments").
		Where("tsk.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *BunTaskStore) List(ctx context.Context, filter core.TaskFilter, page core.PageRequest) ([]*core.Task, int, error) {
	tasks := make([]*core.Task, 0)
	q := s.db.NewSelect().Model(&tasks).Relation("Comments")
	q = applyFilter(q, filter)
	q = applyOrder(q, page)

	total, err := q.Limit(page.Size).Offset(page.Offset()).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

func (s *BunTaskStore) ListByUser(ctx context.Context, userID int64) ([]*core.Task, error) {
	tasks := make([]*core.Task, 0)
	err := s.db.NewSelect().
		Model(&tasks).
		Relation("Comments").
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("tsk.created_by = ?", userID).WhereOr("tsk.assigned_to = ?", userID)
		}).
		Order("tsk.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list user tasks: %w", err)
	}
	return tasks, nil
}

func (s *BunTaskStore) Statistics(ctx context.Context) (*core.TaskStatistics, error) {
	stats := &core.TaskStatistics{}

	total, err := s.db.NewSelect().Model((*core.Task)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	stats.TotalTasks = total

	completed, err := s.db.NewSelect().Model((*core.Task)(nil)).Where("completed").Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %w", err)
	}
	stats.CompletedTasks = completed
	stats.PendingTasks = total - completed

	overdue, err := s.db.NewSelect().
		Model((*core.Task)(nil)).
		Where("due_date < ?", time.Now()).
		Where("NOT completed").
		Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue tasks: %w", err)
	}
	stats.OverdueTasks = overdue

	byPriority := map[core.Priority]*int{
		core.PriorityHigh:   &stats.HighPriorityTasks,
		core.PriorityMedium: &stats.MediumPriorityTasks,
		core.PriorityLow:    &stats.LowPriorityTasks,
	}
	for priority, target := range byPriority {
		n, err := s.db.NewSelect().
			Model((*core.Task)(nil)).
			Where("priority = ?", priority).
			Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s priority tasks: %w", priority, err)
		}
		*target = n
	}

	return stats, nil
}

func (s *BunTaskStore) Create(ctx context.Context, task *core.Task) error {
	if _, err := s.db.NewInsert().Model(task).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	if task.Comments == nil {
		task.Comments = make([]*core.Comment, 0)
	}
	return nil
}

func (s *BunTaskStore) Update(ctx context.Context, task *core.Task) error {
	task.UpdatedAt = time.Now()
	res, err := s.db.NewUpdate().
		Model(task).
		Column("title", "description", "completed", "due_date", "priority", "assigned_to", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return requireAffected(res)
}

func (s *BunTaskStore) Delete(ctx context.Context, id int64) error {
	// Comments go first; sqlite test databases have no cascading FK enabled.
	if _, err := s.db.NewDelete().Model((*core.Comment)(nil)).Where("task_id = ?", id).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete task comments: %w", err)
	}

	res, err := s.db.NewDelete().Model((*core.Task)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return requireAffected(res)
}

func (s *BunTaskStore) CreateComment(ctx context.Context, comment *core.Comment) error {
	if _, err := s.db.NewInsert().Model(comment).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func applyFilter(q *bun.SelectQuery, filter core.TaskFilter) *bun.SelectQuery {
	if filter.Completed != nil {
		q = q.Where("tsk.completed = ?", *filter.Completed)
	}
	if filter.Priority != nil {
		q = q.Where("tsk.priority = ?", *filter.Priority)
	}
	if filter.AssignedTo != nil {
		q = q.Where("tsk.assigned_to = ?", *filter.AssignedTo)
	}
	if filter.CreatedBy != nil {
		q = q.Where("tsk.created_by = ?", *filter.CreatedBy)
	}
	if filter.DueBefore != nil {
		q = q.Where("tsk.due_date <= ?", *filter.DueBefore)
	}
	if filter.DueAfter != nil {
		q = q.Where("tsk.due_date >= ?", *filter.DueAfter)
	}
	if filter.Search != "" {
		// lower(...) LIKE instead of ILIKE so the query also runs on the
		// sqlite databases used in tests.
		pattern := "%" + filter.Search + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("lower(tsk.title) LIKE lower(?)", pattern).
				WhereOr("lower(tsk.description) LIKE lower(?)", pattern)
		})
	}
	return q
}

func applyOrder(q *bun.SelectQuery, page core.PageRequest) *bun.SelectQuery {
	field := page.OrderBy
	if !core.ValidOrderField(field) {
		field = core.OrderCreatedAt
	}
	dir := "ASC"
	if page.OrderDesc {
		dir = "DESC"
	}
	return q.Order(fmt.Sprintf("tsk.%s %s", field, dir))
}
