package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskito/backend/adapters/store"
	"github.com/taskito/backend/core"
	"github.com/taskito/backend/ports"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu      sync.Mutex
	created []int64
	updated []int64
	deleted []int64
}

var _ ports.EventPublisher = (*recordingPublisher)(nil)

func (p *recordingPublisher) PublishTaskCreated(ctx context.Context, task *core.Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, task.ID)
	return nil
}

func (p *recordingPublisher) PublishTaskUpdated(ctx context.Context, task *core.Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated = append(p.updated, task.ID)
	return nil
}

func (p *recordingPublisher) PublishTaskDeleted(ctx context.Context, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, id)
	return nil
}

func newTestTaskService(t *testing.T) (*TaskService, *recordingPublisher) {
	t.Helper()
	events := &recordingPublisher{}
	return NewTaskService(store.NewMemoryTaskStore(), events, slog.Default()), events
}

var (
	owner = core.Identity{UserID: 1, Username: "alice", Role: core.RoleUser}
	other = core.Identity{UserID: 2, Username: "bob", Role: core.RoleUser}
	admin = core.Identity{UserID: 3, Username: "root", Role: core.RoleAdmin}
)

func TestCreateTask(t *testing.T) {
	svc, events := newTestTaskService(t)

	task, err := svc.Create(context.Background(), owner, TaskInput{Title: "  write report  "})
	require.NoError(t, err)

	assert.Equal(t, "write report", task.Title)
	assert.Equal(t, core.PriorityMedium, task.Priority)
	assert.Equal(t, owner.UserID, task.CreatedBy)
	assert.False(t, task.Completed)
	assert.Equal(t, []int64{task.ID}, events.created)
}

func TestCreateTaskValidation(t *testing.T) {
	svc, _ := newTestTaskService(t)

	_, err := svc.Create(context.Background(), owner, TaskInput{Title: "   "})
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = svc.Create(context.Background(), owner, TaskInput{Title: "ok", Priority: "urgent"})
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestUpdateTaskPermissions(t *testing.T) {
	svc, events := newTestTaskService(t)

	task, err := svc.Create(context.Background(), owner, TaskInput{Title: "report"})
	require.NoError(t, err)

	done := true
	_, err = svc.Update(context.Background(), other, task.ID, TaskUpdate{Completed: &done})
	assert.ErrorIs(t, err, core.ErrPermissionDenied)

	updated, err := svc.Update(context.Background(), owner, task.ID, TaskUpdate{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	_, err = svc.Update(context.Background(), admin, task.ID, TaskUpdate{Completed: &done})
	assert.NoError(t, err)

	assert.Equal(t, []int64{task.ID, task.ID}, events.updated)
}

func TestAssigneeMayUpdate(t *testing.T) {
	svc, _ := newTestTaskService(t)

	assignee := other.UserID
	task, err := svc.Create(context.Background(), owner, TaskInput{Title: "report", AssignedTo: &assignee})
	require.NoError(t, err)

	done := true
	_, err = svc.Update(context.Background(), other, task.ID, TaskUpdate{Completed: &done})
	assert.NoError(t, err)

	// Assignees cannot delete, only the creator or an admin can.
	err = svc.Delete(context.Background(), other, task.ID)
	assert.ErrorIs(t, err, core.ErrPermissionDenied)
}

func TestDeleteTask(t *testing.T) {
	svc, events := newTestTaskService(t)

	task, err := svc.Create(context.Background(), owner, TaskInput{Title: "report"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), other, task.ID)
	assert.ErrorIs(t, err, core.ErrPermissionDenied)

	require.NoError(t, svc.Delete(context.Background(), owner, task.ID))
	assert.Equal(t, []int64{task.ID}, events.deleted)

	_, err = svc.GetByID(context.Background(), task.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListPagination(t *testing.T) {
	svc, _ := newTestTaskService(t)

	for i := 0; i < 25; i++ {
		_, err := svc.Create(context.Background(), owner, TaskInput{Title: "task"})
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), core.TaskFilter{}, core.PageRequest{Page: 2, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.Size)
	assert.Equal(t, 3, page.Pages)
	assert.Len(t, page.Tasks, 10)

	// Out-of-range values are clamped instead of rejected.
	page, err = svc.List(context.Background(), core.TaskFilter{}, core.PageRequest{Page: 0, Size: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.Size)
	assert.Equal(t, 1, page.Pages)
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestTaskService(t)

	_, err := svc.Create(context.Background(), owner, TaskInput{Title: "urgent report", Priority: core.PriorityHigh})
	require.NoError(t, err)
	done, err := svc.Create(context.Background(), owner, TaskInput{Title: "groceries", Priority: core.PriorityLow})
	require.NoError(t, err)
	completed := true
	_, err = svc.Update(context.Background(), owner, done.ID, TaskUpdate{Completed: &completed})
	require.NoError(t, err)

	high := core.PriorityHigh
	page, err := svc.List(context.Background(), core.TaskFilter{Priority: &high}, core.PageRequest{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "urgent report", page.Tasks[0].Title)

	page, err = svc.List(context.Background(), core.TaskFilter{Completed: &completed}, core.PageRequest{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "groceries", page.Tasks[0].Title)

	page, err = svc.List(context.Background(), core.TaskFilter{Search: "REPORT"}, core.PageRequest{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)

	bogus := core.Priority("urgent")
	_, err = svc.List(context.Background(), core.TaskFilter{Priority: &bogus}, core.PageRequest{Page: 1, Size: 10})
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestStatistics(t *testing.T) {
	svc, _ := newTestTaskService(t)

	past := time.Now().Add(-24 * time.Hour)
	_, err := svc.Create(context.Background(), owner, TaskInput{Title: "overdue", Priority: core.PriorityHigh, DueDate: &past})
	require.NoError(t, err)
	done, err := svc.Create(context.Background(), owner, TaskInput{Title: "done", Priority: core.PriorityLow})
	require.NoError(t, err)
	completed := true
	_, err = svc.Update(context.Background(), owner, done.ID, TaskUpdate{Completed: &completed})
	require.NoError(t, err)

	stats, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTasks)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.Equal(t, 1, stats.PendingTasks)
	assert.Equal(t, 1, stats.OverdueTasks)
	assert.Equal(t, 1, stats.HighPriorityTasks)
	assert.Equal(t, 1, stats.LowPriorityTasks)
}

func TestAddComment(t *testing.T) {
	svc, _ := newTestTaskService(t)

	task, err := svc.Create(context.Background(), owner, TaskInput{Title: "report"})
	require.NoError(t, err)

	comment, err := svc.AddComment(context.Background(), other, task.ID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, task.ID, comment.TaskID)
	assert.Equal(t, other.UserID, comment.AuthorID)

	_, err = svc.AddComment(context.Background(), other, task.ID, "   ")
	assert.Error(t, err)

	_, err = svc.AddComment(context.Background(), other, 999, "orphan")
	assert.ErrorIs(t, err, core.ErrNotFound)

	got, err := svc.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "looks good", got.Comments[0].Content)
}
