package api

import (
	"context"
	"time"

	"taskpad/domain"
)

// Auth is implemented by *domain.AuthService.
type Auth interface {
	Register(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (domain.Session, error)
	Authorize(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
}

// Tasks is implemented by *domain.TaskService.
type Tasks interface {
	List(ctx context.Context, ownerID string) ([]domain.Task, error)
	Create(ctx context.Context, ownerID, text string, due *time.Time) (string, error)
	Update(ctx context.Context, id, ownerID string, patch domain.TaskPatch) (string, error)
	Delete(ctx context.Context, id, ownerID string) error
}
