package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskito/backend/core"
	"github.com/taskito/backend/service"
)

// UserHandlers contains HTTP handlers for admin user management
type UserHandlers struct {
	userService *service.UserService
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(userService *service.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

// List returns all users.
func (h *UserHandlers) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// Get returns a single user.
func (h *UserHandlers) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update applies an admin profile update, including role and active flag.
func (h *UserHandlers) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Username *string    `json:"username"`
		Email    *string    `json:"email"`
		Role     *core.Role `json:"role"`
		IsActive *bool      `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.Role != nil && *req.Role != core.RoleAdmin && *req.Role != core.RoleUser {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, service.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete removes a user account.
func (h *UserHandlers) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// Activate re-enables a deactivated account.
func (h *UserHandlers) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate disables an account. Outstanding tokens for it stop resolving on
// the next request.
func (h *UserHandlers) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *UserHandlers) setActive(c *gin.Context, active bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.userService.SetActive(c.Request.Context(), id, active); err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated", "is_active": active})
}

// Tasks returns the tasks created by or assigned to a user.
func (h *UserHandlers) Tasks(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	tasks, err := h.userService.UserTasks(c.Request.Context(), id)
	if err != nil {
		writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}
