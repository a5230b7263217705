package core

import (
	"time"

	"github.com/uptrace/bun"
)

// Priority is a task priority level. Values are kept as the original
// Spanish labels for wire compatibility with existing clients.
type Priority string

const (
	PriorityHigh   Priority = "alta"
	PriorityMedium Priority = "media"
	PriorityLow    Priority = "baja"
)

// Valid reports whether p is a known priority level.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task is a unit of work tracked by the system.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:tsk" json:"-"`

	ID          int64      `bun:"id,pk,autoincrement" json:"id"`
	Title       string     `bun:"title,notnull" json:"title"`
	Description string     `bun:"description" json:"description,omitempty"`
	Completed   bool       `bun:"completed,notnull,default:false" json:"completed"`
	DueDate     *time.Time `bun:"due_date,nullzero" json:"due_date,omitempty"`
	Priority    Priority   `bun:"priority,notnull,default:'media'" json:"priority"`
	CreatedBy   int64      `bun:"created_by,notnull" json:"created_by"`
	AssignedTo  *int64     `bun:"assigned_to,nullzero" json:"assigned_to,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Comments []*Comment `bun:"rel:has-many,join:id=task_id" json:"comments"`
}

// Comment is a note attached to a task.
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:cmt" json:"-"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Content   string    `bun:"content,notnull" json:"content"`
	TaskID    int64     `bun:"task_id,notnull" json:"task_id"`
	AuthorID  int64     `bun:"author_id,notnull" json:"author_id"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// TaskFilter narrows a task listing. Nil fields are ignored.
type TaskFilter struct {
	Completed  *bool
	Priority   *Priority
	AssignedTo *int64
	CreatedBy  *int64
	DueBefore  *time.Time
	DueAfter   *time.Time
	Search     string
}

// Task listing order fields. Anything else falls back to OrderCreatedAt.
const (
	OrderCreatedAt = "created_at"
	OrderUpdatedAt = "updated_at"
	OrderDueDate   = "due_date"
	OrderPriority  = "priority"
	OrderTitle     = "title"
)

// ValidOrderField reports whether field is an allowed listing sort key.
func ValidOrderField(field string) bool {
	switch field {
	case OrderCreatedAt, OrderUpdatedAt, OrderDueDate, OrderPriority, OrderTitle:
		return true
	}
	return false
}

// PageRequest describes pagination and ordering for a task listing.
type PageRequest struct {
	Page      int
	Size      int
	OrderBy   string
	OrderDesc bool
}

// Offset returns the number of records to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Size
}

// TaskPage is a single page of a task listing.
type TaskPage struct {
	Tasks []*Task `json:"tasks"`
	Total int     `json:"total"`
	Page  int     `json:"page"`
	Size  int     `json:"size"`
	Pages int     `json:"pages"`
}

// TaskStatistics aggregates counts over the whole task table.
type TaskStatistics struct {
	TotalTasks          int `json:"total_tasks"`
	CompletedTasks      int `json:"completed_tasks"`
	PendingTasks        int `json:"pending_tasks"`
	OverdueTasks        int `json:"overdue_tasks"`
	HighPriorityTasks   int `json:"high_priority_tasks"`
	MediumPriorityTasks int `json:"medium_priority_tasks"`
	LowPriorityTasks    int `json:"low_priority_tasks"`
}
