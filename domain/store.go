package domain

import "context"

// TaskStore is the document store contract used by TaskService. Revisions
// are opaque optimistic-concurrency tokens issued by the store.
type TaskStore interface {
	FindTasks(ctx context.Context, ownerID string) ([]TaskRecord, error)
	// GetTask fails with ErrNotFound when id is unknown.
	GetTask(ctx context.Context, id string) (TaskRecord, error)
	InsertTask(ctx context.Context, t Task) (string, error)
	// ReplaceTask overwrites the document if it is still at rec.Revision,
	// failing with ErrConflict otherwise.
	ReplaceTask(ctx context.Context, rec TaskRecord) error
	DeleteTask(ctx context.Context, id, revision string) error
}
