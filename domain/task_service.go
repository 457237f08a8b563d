package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// TaskService implements task CRUD scoped to an owning user.
type TaskService struct {
	st     TaskStore
	policy OwnershipPolicy
	pub    Publisher
	now    func() time.Time
}

// TaskOption configures a TaskService.
type TaskOption func(*TaskService)

// WithOwnershipPolicy selects whether update and delete check the owner.
func WithOwnershipPolicy(p OwnershipPolicy) TaskOption {
	return func(s *TaskService) { s.policy = p }
}

// WithTaskPublisher sets the activity publisher.
func WithTaskPublisher(p Publisher) TaskOption {
	return func(s *TaskService) {
		if p != nil {
			s.pub = p
		}
	}
}

// WithTaskClock overrides time.Now.
func WithTaskClock(now func() time.Time) TaskOption {
	return func(s *TaskService) { s.now = now }
}

func NewTaskService(st TaskStore, opts ...TaskOption) *TaskService {
	s := &TaskService{st: st, pub: noopPublisher{}, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Policy returns the configured ownership policy.
func (s *TaskService) Policy() OwnershipPolicy { return s.policy }

// List returns the owner's tasks sorted ascending by order.
func (s *TaskService) List(ctx context.Context, ownerID string) ([]Task, error) {
	recs, err := s.st.FindTasks(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(recs))
	for _, r := range recs {
		if r.OwnerID != ownerID {
			continue
		}
		tasks = append(tasks, r.Task)
	}
	SortByOrder(tasks)
	return tasks, nil
}

// SortByOrder sorts tasks ascending by Order, keeping store order for ties.
func SortByOrder(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Order < tasks[j].Order })
}

// Create stores a new task at the end of the owner's list.
func (s *TaskService) Create(ctx context.Context, ownerID, text string, due *time.Time) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errTextRequired
	}
	recs, err := s.st.FindTasks(ctx, ownerID)
	if err != nil {
		return "", err
	}
	maxOrder := 0
	for _, r := range recs {
		if r.OwnerID == ownerID && r.Order > maxOrder {
			maxOrder = r.Order
		}
	}
	t := Task{
		OwnerID:   ownerID,
		Text:      text,
		Done:      false,
		CreatedAt: s.now().UTC(),
		Order:     maxOrder + 1,
	}
	if due != nil {
		d := due.UTC()
		t.DueDate = &d
	}
	id, err := s.st.InsertTask(ctx, t)
	if err != nil {
		return "", err
	}
	s.publish(TaskCreated, ownerID, id)
	return id, nil
}

// Update applies the supplied patch fields and always bumps the update time.
func (s *TaskService) Update(ctx context.Context, id, ownerID string, patch TaskPatch) (string, error) {
	if patch.Text != nil {
		trimmed := strings.TrimSpace(*patch.Text)
		if trimmed == "" {
			return "", errTextRequired
		}
		patch.Text = &trimmed
	}
	rec, err := s.load(ctx, id, ownerID)
	if err != nil {
		return "", err
	}
	patch.apply(&rec.Task)
	ts := s.now().UTC()
	if rec.UpdatedAt != nil && !ts.After(*rec.UpdatedAt) {
		ts = rec.UpdatedAt.Add(time.Millisecond)
	}
	rec.UpdatedAt = &ts
	if err := s.st.ReplaceTask(ctx, rec); err != nil {
		return "", s.storeErr(err, id)
	}
	s.publish(TaskUpdated, ownerID, id)
	return id, nil
}

// Delete removes the task at its current revision. A concurrent write
// between the read and the delete surfaces as ErrConflict.
func (s *TaskService) Delete(ctx context.Context, id, ownerID string) error {
	rec, err := s.load(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if err := s.st.DeleteTask(ctx, id, rec.Revision); err != nil {
		return s.storeErr(err, id)
	}
	s.publish(TaskDeleted, ownerID, id)
	return nil
}

func (s *TaskService) load(ctx context.Context, id, ownerID string) (TaskRecord, error) {
	if strings.TrimSpace(id) == "" {
		return TaskRecord{}, errTaskNotFound
	}
	rec, err := s.st.GetTask(ctx, id)
	if err != nil {
		return TaskRecord{}, s.storeErr(err, id)
	}
	if rec.OwnerID != ownerID {
		if s.policy == OwnershipEnforced {
			return TaskRecord{}, errTaskNotFound
		}
		log.WithFields(log.Fields{"task": id, "owner": rec.OwnerID, "user": ownerID}).Debug("task modified by non-owner")
	}
	return rec, nil
}

func (s *TaskService) storeErr(err error, id string) error {
	if errors.Is(err, ErrNotFound) {
		return errTaskNotFound
	}
	if errors.Is(err, ErrConflict) {
		return NewError(ErrConflict, fmt.Sprintf("Task %s was modified concurrently", id))
	}
	return err
}

func (s *TaskService) publish(typ, userID, taskID string) {
	s.pub.Publish(Event{
		ID:     uuid.NewString(),
		Type:   typ,
		UserID: userID,
		TaskID: taskID,
		Time:   s.now().UTC(),
	})
}
