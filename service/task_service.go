package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskito/backend/core"
	"github.com/taskito/backend/ports"
)

// ErrInvalidPriority is returned when a task carries an unknown priority.
var ErrInvalidPriority = errors.New("priority must be one of alta, media, baja")

// ErrEmptyTitle is returned when a task title is blank.
var ErrEmptyTitle = errors.New("title must not be empty")

// ErrEmptyComment is returned when a comment body is blank.
var ErrEmptyComment = errors.New("comment must not be empty")

// TaskInput carries the fields needed to create a task.
type TaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    core.Priority
	AssignedTo  *int64
}

// TaskUpdate carries optional task changes. Nil fields are left alone.
type TaskUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
	DueDate     *time.Time
	Priority    *core.Priority
	AssignedTo  *int64
}

// TaskService handles task business logic. Writes are permitted only for the
// task creator, the current assignee, or an admin; events are published after
// the store write succeeds.
type TaskService struct {
	tasks  ports.TaskStore
	events ports.EventPublisher
	logger *slog.Logger
}

// NewTaskService creates a new task service
func NewTaskService(tasks ports.TaskStore, events ports.EventPublisher, logger *slog.Logger) *TaskService {
	return &TaskService{tasks: tasks, events: events, logger: logger}
}

// Create stores a new task owned by the caller.
func (s *TaskService) Create(ctx context.Context, caller core.Identity, in TaskInput) (*core.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	priority := in.Priority
	if priority == "" {
		priority = core.PriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	task := &core.Task{
		Title:       title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    priority,
		CreatedBy:   caller.UserID,
		AssignedTo:  in.AssignedTo,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("task created", "id", task.ID, "created_by", caller.UserID)
	if err := s.events.PublishTaskCreated(ctx, task); err != nil {
		s.logger.Error("failed to publish task event", "id", task.ID, "error", err)
	}
	return task, nil
}

// GetByID returns a single task with its comments.
func (s *TaskService) GetByID(ctx context.Context, id int64) (*core.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

// List returns a page of tasks matching the filter. Page and size are clamped
// to sane bounds and the order field is checked against the whitelist.
func (s *TaskService) List(ctx context.Context, filter core.TaskFilter, page core.PageRequest) (*core.TaskPage, error) {
	if filter.Priority != nil && !filter.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Size < 1 {
		page.Size = 10
	}
	if page.Size > 100 {
		page.Size = 100
	}
	if !core.ValidOrderField(page.OrderBy) {
		page.OrderBy = core.OrderCreatedAt
	}

	tasks, total, err := s.tasks.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	pages := total / page.Size
	if total%page.Size != 0 {
		pages++
	}
	return &core.TaskPage{
		Tasks: tasks,
		Total: total,
		Page:  page.Page,
		Size:  page.Size,
		Pages: pages,
	}, nil
}

// Statistics aggregates counts over the whole task table.
func (s *TaskService) Statistics(ctx context.Context) (*core.TaskStatistics, error) {
	return s.tasks.Statistics(ctx)
}

// Update applies changes to an existing task after a permission check.
func (s *TaskService) Update(ctx context.Context, caller core.Identity, id int64, update TaskUpdate) (*core.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(caller, task) {
		return nil, core.ErrPermissionDenied
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		task.Title = title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}
	if update.DueDate != nil {
		task.DueDate = update.DueDate
	}
	if update.Priority != nil {
		if !update.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *update.Priority
	}
	if update.AssignedTo != nil {
		task.AssignedTo = update.AssignedTo
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Info("task updated", "id", task.ID, "updated_by", caller.UserID)
	if err := s.events.PublishTaskUpdated(ctx, task); err != nil {
		s.logger.Error("failed to publish task event", "id", task.ID, "error", err)
	}
	return task, nil
}

// Delete removes a task and its comments after a permission check. Assignees
// may edit a task but only the creator or an admin may delete it.
func (s *TaskService) Delete(ctx context.Context, caller core.Identity, id int64) error {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if task.CreatedBy != caller.UserID && !caller.IsAdmin() {
		return core.ErrPermissionDenied
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Info("task deleted", "id", id, "deleted_by", caller.UserID)
	if err := s.events.PublishTaskDeleted(ctx, id); err != nil {
		s.logger.Error("failed to publish task event", "id", id, "error", err)
	}
	return nil
}

// AddComment attaches a comment to an existing task.
func (s *TaskService) AddComment(ctx context.Context, caller core.Identity, taskID int64, content string) (*core.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyComment
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	comment := &core.Comment{
		Content:  content,
		TaskID:   task.ID,
		AuthorID: caller.UserID,
	}
	if err := s.tasks.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.logger.Info("comment created", "id", comment.ID, "task_id", task.ID)
	return comment, nil
}

func canModify(caller core.Identity, task *core.Task) bool {
	if caller.IsAdmin() || task.CreatedBy == caller.UserID {
		return true
	}
	return task.AssignedTo != nil && *task.AssignedTo == caller.UserID
}
