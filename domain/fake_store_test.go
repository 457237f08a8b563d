package domain

import (
	"context"
	"strconv"
	"sync"
)

type fakeTaskStore struct {
	mu      sync.Mutex
	tasks   map[string]TaskRecord
	order   []string
	nextID  int
	rev     int
	findErr error

	// bumpBeforeWrite simulates a concurrent writer between read and write.
	bumpBeforeWrite bool
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: map[string]TaskRecord{}}
}

func (f *fakeTaskStore) nextRev() string {
	f.rev++
	return strconv.Itoa(f.rev)
}

func (f *fakeTaskStore) FindTasks(ctx context.Context, ownerID string) ([]TaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []TaskRecord
	for _, id := range f.order {
		rec, ok := f.tasks[id]
		if ok && rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) GetTask(ctx context.Context, id string) (TaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.tasks[id]
	if !ok {
		return TaskRecord{}, NewError(ErrNotFound, "missing")
	}
	return rec, nil
}

func (f *fakeTaskStore) InsertTask(ctx context.Context, t Task) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = "t" + strconv.Itoa(f.nextID)
	f.tasks[t.ID] = TaskRecord{Task: t, Revision: f.nextRev()}
	f.order = append(f.order, t.ID)
	return t.ID, nil
}

func (f *fakeTaskStore) ReplaceTask(ctx context.Context, rec TaskRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.tasks[rec.ID]
	if !ok {
		return NewError(ErrNotFound, "missing")
	}
	if f.bumpBeforeWrite {
		cur.Revision = f.nextRev()
		f.tasks[rec.ID] = cur
	}
	if cur.Revision != rec.Revision {
		return NewError(ErrConflict, "revision mismatch")
	}
	rec.Revision = f.nextRev()
	f.tasks[rec.ID] = rec
	return nil
}

func (f *fakeTaskStore) DeleteTask(ctx context.Context, id, revision string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.tasks[id]
	if !ok {
		return NewError(ErrNotFound, "missing")
	}
	if f.bumpBeforeWrite {
		cur.Revision = f.nextRev()
		f.tasks[id] = cur
	}
	if cur.Revision != revision {
		return NewError(ErrConflict, "revision mismatch")
	}
	delete(f.tasks, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]User
	// hideOnFind makes FindUserByUsername miss, simulating a racing registration.
	hideOnFind bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]User{}}
}

func (f *fakeUserStore) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hideOnFind {
		return nil, nil
	}
	for _, u := range f.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) CreateUser(ctx context.Context, u User) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return "", NewError(ErrConflict, "claimed")
		}
	}
	u.ID = "u" + strconv.Itoa(len(f.users)+1)
	f.users[u.ID] = u
	return u.ID, nil
}

type fakeSessions struct {
	mu sync.Mutex
	m  map[string]string
}

func newFakeSessions() *fakeSessions { return &fakeSessions{m: map[string]string{}} }

func (f *fakeSessions) Put(ctx context.Context, token, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[token] = userID
	return nil
}

func (f *fakeSessions) Get(ctx context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.m[token]
	if !ok {
		return "", NewError(ErrNotFound, "no session")
	}
	return id, nil
}

func (f *fakeSessions) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, token)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingPublisher) Publish(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}
