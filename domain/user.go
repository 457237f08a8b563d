package domain

import (
	"context"
	"time"
)

// User is a registered account.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is the result of a successful login.
type Session struct {
	Token    string
	UserID   string
	Username string
}

// UserStore persists user documents.
type UserStore interface {
	// FindUserByUsername returns nil when no user has that username.
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	// CreateUser stores u under a store-assigned id. It fails with ErrConflict
	// when the username is already claimed.
	CreateUser(ctx context.Context, u User) (string, error)
}

// SessionStore maps opaque bearer tokens to user ids.
type SessionStore interface {
	Put(ctx context.Context, token, userID string) error
	// Get fails with ErrNotFound for unknown tokens.
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}
