package core

import (
	"time"

	"github.com/uptrace/bun"
)

// Role is the user's role
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is a registered account. Username and Email are stored lowercase;
// HashedPassword is a bcrypt digest and must never appear in logs or responses.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr" json:"-"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	Username       string    `bun:"username,notnull,unique" json:"username"`
	Email          string    `bun:"email,notnull,unique" json:"email"`
	HashedPassword string    `bun:"hashed_password,notnull" json:"-"`
	Role           Role      `bun:"role,notnull,default:'user'" json:"role"`
	IsActive       bool      `bun:"is_active,notnull,default:true" json:"is_active"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity is the per-request view of an authenticated user, derived from a
// verified session token. It is never persisted.
type Identity struct {
	UserID   int64
	Username string
	Role     Role
}

// IsAdmin reports whether the identity holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
