package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"

	"taskpad/api"
	"taskpad/client"
	"taskpad/domain"
	"taskpad/session"
	"taskpad/storage"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := storage.NewMemory()
	auth := domain.NewAuthService(store, session.NewMemory(), domain.WithBcryptCost(bcrypt.MinCost))
	e := echo.New()
	api.Register(e, auth, domain.NewTaskService(store), logger)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientAgainstServer(t *testing.T) {
	srv := newServer(t)
	c := client.New(srv.URL + "/")
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		t.Fatalf("health: %v", err)
	}
	if _, err := c.Register(ctx, "alice", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := c.Register(ctx, "alice", "pw")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}

	if _, err := c.Tasks(ctx); !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || apiErr.Message != "Unauthorized" {
		t.Fatalf("expected 401, got %v", err)
	}

	res, err := c.Login(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Username != "alice" || res.Token == "" {
		t.Fatalf("unexpected login %+v", res)
	}
	c.SetToken(res.Token)

	due := time.Date(2030, 1, 2, 3, 4, 0, 0, time.UTC)
	id, err := c.CreateTask(ctx, "buy milk", &due)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	done := true
	if err := c.UpdateTask(ctx, id, client.Patch{Done: &done}); err != nil {
		t.Fatalf("update: %v", err)
	}
	tasks, err := c.Tasks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || !tasks[0].Done || tasks[0].Order != 1 || tasks[0].DueDate == nil || !tasks[0].DueDate.Equal(due) {
		t.Fatalf("unexpected tasks %+v", tasks)
	}

	if err := c.UpdateTask(ctx, id, client.Patch{ClearDueDate: true}); err != nil {
		t.Fatalf("clear due date: %v", err)
	}
	tasks, _ = c.Tasks(ctx)
	if tasks[0].DueDate != nil {
		t.Fatalf("due date not cleared")
	}

	if err := c.DeleteTask(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.DeleteTask(ctx, id); !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := c.Tasks(ctx); !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("token still valid after logout: %v", err)
	}
}

func TestAppReorderAgainstServer(t *testing.T) {
	srv := newServer(t)
	c := client.New(srv.URL)
	prefs, err := client.OpenPrefs("")
	if err != nil {
		t.Fatalf("prefs: %v", err)
	}
	app := client.NewApp(c, prefs)
	ctx := context.Background()

	if err := app.Register(ctx, "bob", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := app.Login(ctx, "bob", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	for _, text := range []string{"A", "B", "C"} {
		if err := app.Add(ctx, text, nil); err != nil {
			t.Fatalf("add %s: %v", text, err)
		}
	}
	rows := app.View().Rows
	if err := app.Move(ctx, rows[0].ID, rows[2].ID); err != nil {
		t.Fatalf("move: %v", err)
	}
	tasks, err := c.Tasks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	client.SortTasks(tasks)
	var got []string
	for _, task := range tasks {
		got = append(got, task.Text)
	}
	if len(got) != 3 || got[0] != "B" || got[1] != "C" || got[2] != "A" {
		t.Fatalf("unexpected order after move: %v", got)
	}
	for i, task := range tasks {
		if task.Order != i+1 {
			t.Fatalf("task %s has order %d", task.Text, task.Order)
		}
	}
}
