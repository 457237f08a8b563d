package client

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// fakeAPI is an in-process server with the same observable behaviour as the
// HTTP API for one user.
type fakeAPI struct {
	mu     sync.Mutex
	token  string
	tasks  []Task
	nextID int
	calls  []string

	loginErr  error
	failOnPut int // fail the n-th PUT (1-based) when > 0
	puts      int
}

func (f *fakeAPI) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) SetToken(token string) { f.token = token }

func (f *fakeAPI) Register(ctx context.Context, username, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("register " + username)
	return "u1", nil
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (Login, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("login " + username)
	if f.loginErr != nil {
		return Login{}, f.loginErr
	}
	return Login{Token: "tok-" + username, UserID: "u1", Username: username}, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("logout")
	return nil
}

func (f *fakeAPI) Tasks(ctx context.Context) ([]Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GET /tasks")
	return append([]Task(nil), f.tasks...), nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, text string, due *time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := "t" + strconv.Itoa(f.nextID)
	max := 0
	for _, t := range f.tasks {
		if t.Order > max {
			max = t.Order
		}
	}
	f.tasks = append(f.tasks, Task{ID: id, Text: text, DueDate: due, Order: max + 1})
	f.record("POST /tasks " + text)
	return id, nil
}

func (f *fakeAPI) UpdateTask(ctx context.Context, id string, p Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.failOnPut > 0 && f.puts == f.failOnPut {
		f.record("PUT " + id + " failed")
		return &APIError{Status: 500, Message: "boom"}
	}
	call := "PUT " + id
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		if p.Text != nil {
			f.tasks[i].Text = *p.Text
			call += " text=" + *p.Text
		}
		if p.Done != nil {
			f.tasks[i].Done = *p.Done
			call += " done=" + strconv.FormatBool(*p.Done)
		}
		if p.Order != nil {
			f.tasks[i].Order = *p.Order
			call += " order=" + strconv.Itoa(*p.Order)
		}
	}
	f.record(call)
	return nil
}

func (f *fakeAPI) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			break
		}
	}
	f.record("DELETE " + id)
	return nil
}

type recordingNotifier struct {
	permitted bool
	shown     []string
}

func (r *recordingNotifier) Permitted() bool { return r.permitted }

func (r *recordingNotifier) Notify(title, body string) error {
	r.shown = append(r.shown, title+": "+body)
	return nil
}
