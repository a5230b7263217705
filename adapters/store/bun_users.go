package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/taskito/backend/core"
	"github.com/taskito/backend/ports"
)

// BunUserStore is a bun-backed implementation of the UserStore port.
type BunUserStore struct {
	db *bun.DB
}

// NewBunUserStore creates a new relational user store
func NewBunUserStore(db *bun.DB) ports.UserStore {
	return &BunUserStore{db: db}
}

func (s *BunUserStore) GetByID(ctx context.Context, id int64) (*core.User, error) {
	user := new(core.User)
	err := s.db.NewSelect().Model(user).Where("usr.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

func (s *BunUserStore) GetByUsername(ctx context.Context, username string) (*core.User, error) {
	user := new(core.User)
	err := s.db.NewSelect().Model(user).Where("usr.username = ?", strings.ToLower(username)).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

func (s *BunUserStore) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	user := new(core.User)
	err := s.db.NewSelect().Model(user).Where("usr.email = ?", strings.ToLower(email)).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (s *BunUserStore) List(ctx context.Context) ([]*core.User, error) {
	var users []*core.User
	err := s.db.NewSelect().Model(&users).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *BunUserStore) Create(ctx context.Context, user *core.User) error {
	user.Username = strings.ToLower(user.Username)
	user.Email = strings.ToLower(user.Email)
	if _, err := s.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *BunUserStore) Update(ctx context.Context, user *core.User) error {
	user.Username = strings.ToLower(user.Username)
	user.Email = strings.ToLower(user.Email)
	user.UpdatedAt = time.Now()

	res, err := s.db.NewUpdate().
		Model(user).
		Column("username", "email", "role", "is_active", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireAffected(res)
}

func (s *BunUserStore) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	res, err := s.db.NewUpdate().
		Model((*core.User)(nil)).
		Set("hashed_password = ?", hashedPassword).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireAffected(res)
}

func (s *BunUserStore) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.NewUpdate().
		Model((*core.User)(nil)).
		Set("is_active = ?", active).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set active flag: %w", err)
	}
	return requireAffected(res)
}

func (s *BunUserStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*core.User)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(res)
}

func (s *BunUserStore) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	q := s.db.NewSelect().
		Model((*core.User)(nil)).
		Where("usr.username = ?", strings.ToLower(username))
	if excludeID != 0 {
		q = q.Where("usr.id != ?", excludeID)
	}

	exists, err := q.Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check username availability: %w", err)
	}
	return exists, nil
}

func (s *BunUserStore) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	q := s.db.NewSelect().
		Model((*core.User)(nil)).
		Where("usr.email = ?", strings.ToLower(email))
	if excludeID != 0 {
		q = q.Where("usr.id != ?", excludeID)
	}

	exists, err := q.Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check email availability: %w", err)
	}
	return exists, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
