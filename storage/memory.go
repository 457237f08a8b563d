package storage

import (
	"context"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"taskpad/domain"
)

// Memory is a process-local store with the same contract as Storage.
type Memory struct {
	mu sync.RWMutex

	tasks     map[string]memTask
	taskOrder []string
	users     map[string]domain.User
	userOrder []string
	claims    map[string]string
	rev       uint64
}

type memTask struct {
	task domain.Task
	rev  string
}

var (
	_ domain.TaskStore = (*Memory)(nil)
	_ domain.UserStore = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		tasks:  map[string]memTask{},
		users:  map[string]domain.User{},
		claims: map[string]string{},
	}
}

func (m *Memory) nextRev() string {
	m.rev++
	return strconv.FormatUint(m.rev, 10)
}

func (m *Memory) FindTasks(ctx context.Context, ownerID string) ([]domain.TaskRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := []domain.TaskRecord{}
	for _, id := range m.taskOrder {
		mt := m.tasks[id]
		if mt.task.OwnerID == ownerID {
			recs = append(recs, domain.TaskRecord{Task: cloneTask(mt.task), Revision: mt.rev})
		}
	}
	return recs, nil
}

func (m *Memory) GetTask(ctx context.Context, id string) (domain.TaskRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mt, ok := m.tasks[id]
	if !ok {
		return domain.TaskRecord{}, domain.NewError(domain.ErrNotFound, "ResourceNotFound")
	}
	return domain.TaskRecord{Task: cloneTask(mt.task), Revision: mt.rev}, nil
}

func (m *Memory) InsertTask(ctx context.Context, t domain.Task) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uuid.NewString()
	m.tasks[t.ID] = memTask{task: cloneTask(t), rev: m.nextRev()}
	m.taskOrder = append(m.taskOrder, t.ID)
	return t.ID, nil
}

func (m *Memory) ReplaceTask(ctx context.Context, rec domain.TaskRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tasks[rec.ID]
	if !ok {
		return domain.NewError(domain.ErrNotFound, "ResourceNotFound")
	}
	if cur.rev != rec.Revision {
		return domain.NewError(domain.ErrConflict, "UpdateConditionNotSatisfied")
	}
	m.tasks[rec.ID] = memTask{task: cloneTask(rec.Task), rev: m.nextRev()}
	return nil
}

func (m *Memory) DeleteTask(ctx context.Context, id, revision string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tasks[id]
	if !ok {
		return domain.NewError(domain.ErrNotFound, "ResourceNotFound")
	}
	if cur.rev != revision {
		return domain.NewError(domain.ErrConflict, "UpdateConditionNotSatisfied")
	}
	delete(m.tasks, id)
	for i, tid := range m.taskOrder {
		if tid == id {
			m.taskOrder = append(m.taskOrder[:i], m.taskOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.userOrder {
		if u := m.users[id]; u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *Memory) CreateUser(ctx context.Context, u domain.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.claims[u.Username]; taken {
		return "", domain.NewError(domain.ErrConflict, "EntityAlreadyExists")
	}
	u.ID = uuid.NewString()
	m.claims[u.Username] = u.ID
	m.users[u.ID] = u
	m.userOrder = append(m.userOrder, u.ID)
	return u.ID, nil
}

func cloneTask(t domain.Task) domain.Task {
	if t.UpdatedAt != nil {
		u := *t.UpdatedAt
		t.UpdatedAt = &u
	}
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}
