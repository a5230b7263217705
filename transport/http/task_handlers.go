package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskito/backend/core"
	"github.com/taskito/backend/service"
)

// TaskHandlers contains HTTP handlers for task endpoints
type TaskHandlers struct {
	taskService *service.TaskService
}

// NewTaskHandlers creates new task handlers
func NewTaskHandlers(taskService *service.TaskService) *TaskHandlers {
	return &TaskHandlers{taskService: taskService}
}

// List returns a filtered, sorted page of tasks.
func (h *TaskHandlers) List(c *gin.Context) {
	filter, err := parseTaskFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page := core.PageRequest{
		Page:      queryInt(c, "page", 1),
		Size:      queryInt(c, "size", 10),
		OrderBy:   c.DefaultQuery("order_by", core.OrderCreatedAt),
		OrderDesc: c.DefaultQuery("order", "desc") == "desc",
	}

	result, err := h.taskService.List(c.Request.Context(), filter, page)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPriority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tasks"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Statistics returns aggregate task counts.
func (h *TaskHandlers) Statistics(c *gin.Context) {
	stats, err := h.taskService.Statistics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Get returns a single task with its comments.
func (h *TaskHandlers) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetByID(c.Request.Context(), id)
	if err != nil {
		writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Create stores a new task owned by the caller.
func (h *TaskHandlers) Create(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
		return
	}

	var req struct {
		Title       string        `json:"title" binding:"required"`
		Description string        `json:"description"`
		DueDate     *string       `json:"due_date"`
		Priority    core.Priority `json:"priority"`
		AssignedTo  *int64        `json:"assigned_to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	dueDate, err := parseOptionalTime(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due_date"})
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), identity, service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// Update applies changes to an existing task.
func (h *TaskHandlers) Update(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Title       *string        `json:"title"`
		Description *string        `json:"description"`
		Completed   *bool          `json:"completed"`
		DueDate     *string        `json:"due_date"`
		Priority    *core.Priority `json:"priority"`
		AssignedTo  *int64         `json:"assigned_to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	dueDate, err := parseOptionalTime(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due_date"})
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), identity, id, service.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     dueDate,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete removes a task.
func (h *TaskHandlers) Delete(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), identity, id); err != nil {
		writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// AddComment attaches a comment to a task.
func (h *TaskHandlers) AddComment(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	comment, err := h.taskService.AddComment(c.Request.Context(), identity, id, req.Content)
	if err != nil {
		writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func parseTaskFilter(c *gin.Context) (core.TaskFilter, error) {
	var filter core.TaskFilter

	if v, exists := c.GetQuery("completed"); exists {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.New("completed must be a boolean")
		}
		filter.Completed = &completed
	}
	if v, exists := c.GetQuery("priority"); exists {
		priority := core.Priority(v)
		filter.Priority = &priority
	}
	if v, exists := c.GetQuery("assigned_to"); exists {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, errors.New("assigned_to must be an integer")
		}
		filter.AssignedTo = &id
	}
	if v, exists := c.GetQuery("created_by"); exists {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, errors.New("created_by must be an integer")
		}
		filter.CreatedBy = &id
	}
	if v, exists := c.GetQuery("due_before"); exists {
		t, err := parseTime(v)
		if err != nil {
			return filter, errors.New("due_before must be an ISO 8601 timestamp")
		}
		filter.DueBefore = &t
	}
	if v, exists := c.GetQuery("due_after"); exists {
		t, err := parseTime(v)
		if err != nil {
			return filter, errors.New("due_after must be an ISO 8601 timestamp")
		}
		filter.DueAfter = &t
	}
	filter.Search = c.Query("search")

	return filter, nil
}

// parseTime accepts RFC 3339 timestamps and bare dates.
func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func parseOptionalTime(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseTime(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func queryInt(c *gin.Context, key string, defaultValue int) int {
	v := c.Query(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

func writeTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, core.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
	case errors.Is(err, service.ErrEmptyTitle),
		errors.Is(err, service.ErrEmptyComment),
		errors.Is(err, service.ErrInvalidPriority):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
