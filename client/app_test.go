package client

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func newTestApp(t *testing.T, api *fakeAPI, opts ...AppOption) (*App, *Prefs) {
	t.Helper()
	prefs, err := OpenPrefs(filepath.Join(t.TempDir(), "prefs.json"))
	if err != nil {
		t.Fatalf("open prefs: %v", err)
	}
	return NewApp(api, prefs, opts...), prefs
}

func TestAppGuards(t *testing.T) {
	app, _ := newTestApp(t, &fakeAPI{})
	ctx := context.Background()

	if err := app.Add(ctx, "x", nil); !errors.Is(err, ErrLoginFirst) {
		t.Fatalf("expected login guard, got %v", err)
	}
	if err := app.Delete(ctx, "t1"); !errors.Is(err, ErrLoginFirst) {
		t.Fatalf("expected login guard, got %v", err)
	}
	if err := app.Login(ctx, "  ", "pw"); !errors.Is(err, ErrEnterCredentials) {
		t.Fatalf("expected credentials guard, got %v", err)
	}
	if err := app.Load(ctx); err != nil {
		t.Fatalf("load logged out: %v", err)
	}
	if s := app.State(); s.Status != "Login to see your tasks." || !s.StatusIsError {
		t.Fatalf("unexpected status %+v", s)
	}

	if err := app.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := app.Add(ctx, "   ", nil); !errors.Is(err, ErrEnterTask) {
		t.Fatalf("expected empty task guard, got %v", err)
	}
}

func TestAppLoginPersistsAndRestores(t *testing.T) {
	api := &fakeAPI{}
	app, prefs := newTestApp(t, api)
	if err := app.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if prefs.Get(KeyAuthToken) != "tok-alice" || prefs.Get(KeyUsername) != "alice" {
		t.Fatalf("login not persisted")
	}
	if api.calls[len(api.calls)-1] != "GET /tasks" {
		t.Fatalf("login must load tasks, calls: %v", api.calls)
	}

	reopened, err := OpenPrefs(prefs.path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	api2 := &fakeAPI{}
	restored := NewApp(api2, reopened)
	if api2.token != "tok-alice" || restored.State().Status != "Logged in as alice" {
		t.Fatalf("login not restored: token=%q state=%+v", api2.token, restored.State())
	}

	if err := restored.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if reopened.Get(KeyAuthToken) != "" || restored.State().Auth.LoggedIn() || api2.token != "" {
		t.Fatalf("logout did not clear login")
	}
}

func TestAppLoginFailureStatus(t *testing.T) {
	api := &fakeAPI{loginErr: &APIError{Status: 401, Message: "Invalid credentials"}}
	app, _ := newTestApp(t, api)
	if err := app.Login(context.Background(), "alice", "bad"); err == nil {
		t.Fatalf("expected error")
	}
	if s := app.State(); s.Status != "Invalid credentials" || !s.StatusIsError || s.Auth.LoggedIn() {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestAppMutationsReload(t *testing.T) {
	api := &fakeAPI{}
	app, _ := newTestApp(t, api)
	ctx := context.Background()
	_ = app.Login(ctx, "alice", "pw")

	if err := app.Add(ctx, "  buy milk ", nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	id := app.State().Tasks[0].ID
	if err := app.SetDone(ctx, id, true); err != nil {
		t.Fatalf("done: %v", err)
	}
	if err := app.Edit(ctx, id, ""); err != nil {
		t.Fatalf("empty edit: %v", err)
	}
	if err := app.Edit(ctx, id, "buy oat milk"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := app.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []string{
		"login alice", "GET /tasks",
		"POST /tasks buy milk", "GET /tasks",
		"PUT t1 done=true", "GET /tasks",
		"PUT t1 text=buy oat milk", "GET /tasks",
		"DELETE t1", "GET /tasks",
	}
	if !reflect.DeepEqual(api.calls, want) {
		t.Fatalf("unexpected calls:\n got %v\nwant %v", api.calls, want)
	}
	if len(app.State().Tasks) != 0 {
		t.Fatalf("expected empty snapshot")
	}
}

func TestAppMovePersistsSequentially(t *testing.T) {
	api := &fakeAPI{}
	app, _ := newTestApp(t, api)
	ctx := context.Background()
	_ = app.Login(ctx, "alice", "pw")
	for _, text := range []string{"A", "B", "C"} {
		_ = app.Add(ctx, text, nil)
	}
	api.calls = nil

	if err := app.Move(ctx, "t1", "t3"); err != nil {
		t.Fatalf("move: %v", err)
	}
	want := []string{"PUT t2 order=1", "PUT t3 order=2", "PUT t1 order=3", "GET /tasks"}
	if !reflect.DeepEqual(api.calls, want) {
		t.Fatalf("unexpected calls %v", api.calls)
	}
	var texts []string
	for _, row := range app.View().Rows {
		texts = append(texts, row.Text)
	}
	if !reflect.DeepEqual(texts, []string{"B", "C", "A"}) {
		t.Fatalf("unexpected sequence %v", texts)
	}
}

func TestAppMoveStopsOnFailure(t *testing.T) {
	api := &fakeAPI{}
	app, _ := newTestApp(t, api)
	ctx := context.Background()
	_ = app.Login(ctx, "alice", "pw")
	for _, text := range []string{"A", "B", "C"} {
		_ = app.Add(ctx, text, nil)
	}
	api.calls = nil
	api.failOnPut = 2

	if err := app.Move(ctx, "t3", "t1"); err == nil {
		t.Fatalf("expected failure")
	}
	want := []string{"PUT t3 order=1", "PUT t1 failed"}
	if !reflect.DeepEqual(api.calls, want) {
		t.Fatalf("unexpected calls %v", api.calls)
	}
	if s := app.State().Status; !strings.Contains(s, "Reorder stopped at task 2 of 3") {
		t.Fatalf("unexpected status %q", s)
	}
}

func TestAppMoveUnknownTask(t *testing.T) {
	api := &fakeAPI{}
	app, _ := newTestApp(t, api)
	ctx := context.Background()
	_ = app.Login(ctx, "alice", "pw")
	_ = app.Add(ctx, "A", nil)
	if err := app.Move(ctx, "t1", "nope"); err == nil {
		t.Fatalf("expected error for unknown target")
	}
}

func TestAppRemindersOnLoad(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	soon := now.Add(5 * time.Minute)
	later := now.Add(20 * time.Minute)
	api := &fakeAPI{tasks: []Task{
		{ID: "t1", Text: "call mum", DueDate: &soon, Order: 1},
		{ID: "t2", Text: "pay rent", DueDate: &later, Order: 2},
		{ID: "t3", Text: "done already", DueDate: &soon, Done: true, Order: 3},
	}}
	n := &recordingNotifier{permitted: true}
	app, _ := newTestApp(t, api, WithNotifier(n), WithClock(func() time.Time { return now }))
	ctx := context.Background()
	_ = app.Login(ctx, "alice", "pw")
	_ = app.Load(ctx)

	want := "Task Reminder: call mum is due soon (2025-03-01 12:05)"
	if len(n.shown) != 2 || n.shown[0] != want || n.shown[1] != want {
		t.Fatalf("expected the reminder once per load, got %v", n.shown)
	}

	denied := &recordingNotifier{}
	app2, _ := newTestApp(t, api, WithNotifier(denied), WithClock(func() time.Time { return now }))
	_ = app2.Login(ctx, "alice", "pw")
	if len(denied.shown) != 0 {
		t.Fatalf("notifications shown without permission")
	}
}

func TestAppThemeToggle(t *testing.T) {
	app, prefs := newTestApp(t, &fakeAPI{})
	if app.State().Theme != ThemeLight {
		t.Fatalf("expected light default")
	}
	theme, err := app.ToggleTheme()
	if err != nil || theme != ThemeDark || prefs.Get(KeyTheme) != "dark" {
		t.Fatalf("toggle: %v %v %q", theme, err, prefs.Get(KeyTheme))
	}
	if again := NewApp(&fakeAPI{}, prefs); again.State().Theme != ThemeDark {
		t.Fatalf("theme not restored")
	}
	if theme, _ := app.ToggleTheme(); theme != ThemeLight {
		t.Fatalf("expected light after second toggle")
	}
}
