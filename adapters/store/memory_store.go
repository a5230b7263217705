package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taskito/backend/core"
	"github.com/taskito/backend/ports"
)

// MemoryUserStore is an in-memory implementation of the UserStore port,
// used in tests and single-process development setups.
type MemoryUserStore struct {
	mu     sync.RWMutex
	users  map[int64]*core.User
	nextID int64
}

var _ ports.UserStore = (*MemoryUserStore)(nil)

// NewMemoryUserStore creates a new in-memory user store
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[int64]*core.User)}
}

func (s *MemoryUserStore) GetByID(ctx context.Context, id int64) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return copyUser(user), nil
}

func (s *MemoryUserStore) GetByUsername(ctx context.Context, username string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	username = strings.ToLower(username)
	for _, user := range s.users {
		if user.Username == username {
			return copyUser(user), nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, user := range s.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *MemoryUserStore) List(ctx context.Context) ([]*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*core.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, copyUser(user))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *MemoryUserStore) Create(ctx context.Context, user *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	user.ID = s.nextID
	user.Username = strings.ToLower(user.Username)
	user.Email = strings.ToLower(user.Email)
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *MemoryUserStore) Update(ctx context.Context, user *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return core.ErrNotFound
	}
	stored.Username = strings.ToLower(user.Username)
	stored.Email = strings.ToLower(user.Email)
	stored.Role = user.Role
	stored.IsActive = user.IsActive
	stored.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryUserStore) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return core.ErrNotFound
	}
	user.HashedPassword = hashedPassword
	user.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryUserStore) SetActive(ctx context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return core.ErrNotFound
	}
	user.IsActive = active
	user.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryUserStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryUserStore) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	username = strings.ToLower(username)
	for _, user := range s.users {
		if user.Username == username && user.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryUserStore) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, user := range s.users {
		if user.Email == email && user.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// MemoryTaskStore is an in-memory implementation of the TaskStore port.
type MemoryTaskStore struct {
	mu            sync.RWMutex
	tasks         map[int64]*core.Task
	comments      map[int64]*core.Comment
	nextTaskID    int64
	nextCommentID int64
}

var _ ports.TaskStore = (*MemoryTaskStore)(nil)

// NewMemoryTaskStore creates a new in-memory task store
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{
		tasks:    make(map[int64]*core.Task),
		comments: make(map[int64]*core.Comment),
	}
}

func (s *MemoryTaskStore) GetByID(ctx context.Context, id int64) (*core.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return s.copyTaskWithComments(task), nil
}

func (s *MemoryTaskStore) List(ctx context.Context, filter core.TaskFilter, page core.PageRequest) ([]*core.Task, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*core.Task, 0)
	for _, task := range s.tasks {
		if matchesFilter(task, filter) {
			matched = append(matched, s.copyTaskWithComments(task))
		}
	}
	sortTasks(matched, page)

	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *MemoryTaskStore) ListByUser(ctx context.Context, userID int64) ([]*core.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*core.Task, 0)
	for _, task := range s.tasks {
		if task.CreatedBy == userID || (task.AssignedTo != nil && *task.AssignedTo == userID) {
			tasks = append(tasks, s.copyTaskWithComments(task))
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	return tasks, nil
}

func (s *MemoryTaskStore) Statistics(ctx context.Context) (*core.TaskStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &core.TaskStatistics{}
	now := time.Now()
	for _, task := range s.tasks {
		stats.TotalTasks++
		if task.Completed {
			stats.CompletedTasks++
		}
		if !task.Completed && task.DueDate != nil && task.DueDate.Before(now) {
			stats.OverdueTasks++
		}
		switch task.Priority {
		case core.PriorityHigh:
			stats.HighPriorityTasks++
		case core.PriorityMedium:
			stats.MediumPriorityTasks++
		case core.PriorityLow:
			stats.LowPriorityTasks++
		}
	}
	stats.PendingTasks = stats.TotalTasks - stats.CompletedTasks
	return stats, nil
}

func (s *MemoryTaskStore) Create(ctx context.Context, task *core.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTaskID++
	task.ID = s.nextTaskID
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Comments == nil {
		task.Comments = make([]*core.Comment, 0)
	}

	s.tasks[task.ID] = copyTask(task)
	return nil
}

func (s *MemoryTaskStore) Update(ctx context.Context, task *core.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tasks[task.ID]
	if !ok {
		return core.ErrNotFound
	}
	stored.Title = task.Title
	stored.Description = task.Description
	stored.Completed = task.Completed
	stored.DueDate = task.DueDate
	stored.Priority = task.Priority
	stored.AssignedTo = task.AssignedTo
	stored.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryTaskStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.tasks, id)
	for commentID, comment := range s.comments {
		if comment.TaskID == id {
			delete(s.comments, commentID)
		}
	}
	return nil
}

func (s *MemoryTaskStore) CreateComment(ctx context.Context, comment *core.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[comment.TaskID]; !ok {
		return core.ErrNotFound
	}

	s.nextCommentID++
	comment.ID = s.nextCommentID
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	stored := *comment
	s.comments[comment.ID] = &stored
	return nil
}

func (s *MemoryTaskStore) copyTaskWithComments(task *core.Task) *core.Task {
	out := copyTask(task)
	out.Comments = make([]*core.Comment, 0)
	for _, comment := range s.comments {
		if comment.TaskID == task.ID {
			c := *comment
			out.Comments = append(out.Comments, &c)
		}
	}
	sort.Slice(out.Comments, func(i, j int) bool { return out.Comments[i].ID < out.Comments[j].ID })
	return out
}

func copyUser(u *core.User) *core.User {
	out := *u
	return &out
}

func copyTask(t *core.Task) *core.Task {
	out := *t
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	if t.AssignedTo != nil {
		assignee := *t.AssignedTo
		out.AssignedTo = &assignee
	}
	return &out
}

func matchesFilter(task *core.Task, filter core.TaskFilter) bool {
	if filter.Completed != nil && task.Completed != *filter.Completed {
		return false
	}
	if filter.Priority != nil && task.Priority != *filter.Priority {
		return false
	}
	if filter.AssignedTo != nil && (task.AssignedTo == nil || *task.AssignedTo != *filter.AssignedTo) {
		return false
	}
	if filter.CreatedBy != nil && task.CreatedBy != *filter.CreatedBy {
		return false
	}
	if filter.DueBefore != nil && (task.DueDate == nil || task.DueDate.After(*filter.DueBefore)) {
		return false
	}
	if filter.DueAfter != nil && (task.DueDate == nil || task.DueDate.Before(*filter.DueAfter)) {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(task.Title), needle) &&
			!strings.Contains(strings.ToLower(task.Description), needle) {
			return false
		}
	}
	return true
}

func sortTasks(tasks []*core.Task, page core.PageRequest) {
	field := page.OrderBy
	if !core.ValidOrderField(field) {
		field = core.OrderCreatedAt
	}
	less := func(a, b *core.Task) bool {
		switch field {
		case core.OrderUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		case core.OrderDueDate:
			at, bt := time.Time{}, time.Time{}
			if a.DueDate != nil {
				at = *a.DueDate
			}
			if b.DueDate != nil {
				bt = *b.DueDate
			}
			return at.Before(bt)
		case core.OrderPriority:
			return a.Priority < b.Priority
		case core.OrderTitle:
			return a.Title < b.Title
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if page.OrderDesc {
			return less(tasks[j], tasks[i])
		}
		return less(tasks[i], tasks[j])
	})
}
