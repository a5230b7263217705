package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskito/backend/core"
	"github.com/taskito/backend/internal/password"
	"github.com/taskito/backend/ports"
)

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     core.Role
}

// ProfileUpdate carries optional profile changes. Nil fields are left alone.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Role     *core.Role
	IsActive *bool
}

// UserService handles account management business logic.
type UserService struct {
	users  ports.UserStore
	tasks  ports.TaskStore
	logger *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(users ports.UserStore, tasks ports.TaskStore, logger *slog.Logger) *UserService {
	return &UserService{users: users, tasks: tasks, logger: logger}
}

// Register validates and creates a new account with a hashed credential.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*core.User, error) {
	username, err := ValidateUsername(in.Username)
	if err != nil {
		return nil, err
	}
	email, err := ValidateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	if taken, err := s.users.UsernameTaken(ctx, username, 0); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		return nil, core.ErrUsernameTaken
	}
	if taken, err := s.users.EmailTaken(ctx, email, 0); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return nil, core.ErrEmailTaken
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = core.RoleUser
	}

	user := &core.User{
		Username:       username,
		Email:          email,
		HashedPassword: hash,
		Role:           role,
		IsActive:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", "id", user.ID, "username", user.Username)
	return user, nil
}

// GetByID returns a single user.
func (s *UserService) GetByID(ctx context.Context, id int64) (*core.User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns all users ordered by id.
func (s *UserService) List(ctx context.Context) ([]*core.User, error) {
	return s.users.List(ctx)
}

// Update applies a profile update to the given user. Role and active-flag
// changes are restricted to admins at the transport layer; availability of a
// new username or email is re-checked here.
func (s *UserService) Update(ctx context.Context, id int64, update ProfileUpdate) (*core.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		username, err := ValidateUsername(*update.Username)
		if err != nil {
			return nil, err
		}
		if taken, err := s.users.UsernameTaken(ctx, username, id); err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		} else if taken {
			return nil, core.ErrUsernameTaken
		}
		user.Username = username
	}
	if update.Email != nil {
		email, err := ValidateEmail(*update.Email)
		if err != nil {
			return nil, err
		}
		if taken, err := s.users.EmailTaken(ctx, email, id); err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		} else if taken {
			return nil, core.ErrEmailTaken
		}
		user.Email = email
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("user updated", "id", user.ID, "username", user.Username)
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *UserService) ChangePassword(ctx context.Context, id int64, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !password.Verify(currentPassword, user.HashedPassword) {
		return core.ErrPasswordMismatch
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("user password updated", "id", id, "username", user.Username)
	return nil
}

// SetActive flips the account's active flag. Deactivating is the only session
// revocation mechanism: verification re-reads the flag on every request.
func (s *UserService) SetActive(ctx context.Context, id int64, active bool) error {
	if err := s.users.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.logger.Info("user active flag changed", "id", id, "active", active)
	return nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "id", id)
	return nil
}

// UserTasks returns tasks created by or assigned to the given user.
func (s *UserService) UserTasks(ctx context.Context, userID int64) ([]*core.Task, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
