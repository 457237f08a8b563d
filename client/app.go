package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Theme is the persisted colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Guard errors carry the messages shown to the user.
var (
	ErrLoginFirst       = errors.New("Login first")
	ErrEnterTask        = errors.New("Enter task")
	ErrEnterCredentials = errors.New("Enter username and password")
)

// API is the subset of *Client the app drives.
type API interface {
	SetToken(token string)
	Register(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (Login, error)
	Logout(ctx context.Context) error
	Tasks(ctx context.Context) ([]Task, error)
	CreateTask(ctx context.Context, text string, due *time.Time) (string, error)
	UpdateTask(ctx context.Context, id string, p Patch) error
	DeleteTask(ctx context.Context, id string) error
}

// AuthState is the persisted login.
type AuthState struct {
	Token    string
	Username string
}

func (a AuthState) LoggedIn() bool { return a.Token != "" }

// State is everything Render needs.
type State struct {
	Auth   AuthState
	Tasks  []Task
	Theme  Theme
	Status string
	// StatusIsError marks Status as a failure message.
	StatusIsError bool
}

// App holds client state. Every mutation goes to the server and is followed
// by a full reload; nothing is patched locally.
type App struct {
	api      API
	prefs    *Prefs
	notifier Notifier
	now      func() time.Time
	state    State
}

// AppOption configures an App.
type AppOption func(*App)

// WithNotifier enables reminders.
func WithNotifier(n Notifier) AppOption {
	return func(a *App) { a.notifier = n }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) AppOption {
	return func(a *App) { a.now = now }
}

// NewApp restores the login and theme from prefs.
func NewApp(api API, prefs *Prefs, opts ...AppOption) *App {
	a := &App{api: api, prefs: prefs, now: time.Now}
	for _, o := range opts {
		o(a)
	}
	a.state.Theme = ThemeLight
	if Theme(prefs.Get(KeyTheme)) == ThemeDark {
		a.state.Theme = ThemeDark
	}
	a.state.Auth = AuthState{Token: prefs.Get(KeyAuthToken), Username: prefs.Get(KeyUsername)}
	api.SetToken(a.state.Auth.Token)
	if a.state.Auth.LoggedIn() && a.state.Auth.Username != "" {
		a.setStatus("Logged in as "+a.state.Auth.Username, false)
	}
	return a
}

// State returns a copy of the current state.
func (a *App) State() State {
	s := a.state
	s.Tasks = append([]Task(nil), a.state.Tasks...)
	return s
}

// View renders the current state.
func (a *App) View() View { return Render(a.state, a.now()) }

func (a *App) setStatus(msg string, isErr bool) {
	a.state.Status = msg
	a.state.StatusIsError = isErr
}

func (a *App) Register(ctx context.Context, username, password string) error {
	username, password = strings.TrimSpace(username), strings.TrimSpace(password)
	if username == "" || password == "" {
		a.setStatus(ErrEnterCredentials.Error(), true)
		return ErrEnterCredentials
	}
	if _, err := a.api.Register(ctx, username, password); err != nil {
		a.setStatus(failure(err, "Register failed"), true)
		return err
	}
	a.setStatus("Registered successfully. Now login.", false)
	return nil
}

func (a *App) Login(ctx context.Context, username, password string) error {
	username, password = strings.TrimSpace(username), strings.TrimSpace(password)
	if username == "" || password == "" {
		a.setStatus(ErrEnterCredentials.Error(), true)
		return ErrEnterCredentials
	}
	res, err := a.api.Login(ctx, username, password)
	if err != nil {
		a.setStatus(failure(err, "Login failed"), true)
		return err
	}
	a.state.Auth = AuthState{Token: res.Token, Username: res.Username}
	a.api.SetToken(res.Token)
	if err := a.prefs.Set(KeyAuthToken, res.Token); err != nil {
		return err
	}
	if err := a.prefs.Set(KeyUsername, res.Username); err != nil {
		return err
	}
	a.setStatus("Logged in as "+res.Username, false)
	return a.Load(ctx)
}

// Logout revokes the session on the server and forgets it locally. The local
// login is cleared even if the server call fails.
func (a *App) Logout(ctx context.Context) error {
	var err error
	if a.state.Auth.LoggedIn() {
		err = a.api.Logout(ctx)
	}
	a.state.Auth = AuthState{}
	a.state.Tasks = nil
	a.api.SetToken("")
	if perr := a.prefs.Delete(KeyAuthToken, KeyUsername); perr != nil && err == nil {
		err = perr
	}
	a.setStatus("Logged out.", false)
	return err
}

// Load replaces the task snapshot and fires reminders for tasks due soon.
func (a *App) Load(ctx context.Context) error {
	if !a.state.Auth.LoggedIn() {
		a.state.Tasks = nil
		a.setStatus("Login to see your tasks.", true)
		return nil
	}
	tasks, err := a.api.Tasks(ctx)
	if err != nil {
		a.setStatus(failure(err, "Failed to load tasks"), true)
		return err
	}
	SortTasks(tasks)
	a.state.Tasks = tasks
	a.remind(tasks)
	return nil
}

func (a *App) remind(tasks []Task) {
	if a.notifier == nil || !a.notifier.Permitted() {
		return
	}
	for _, r := range DueSoon(tasks, a.now()) {
		_ = a.notifier.Notify(r.Title, r.Body)
	}
}

func (a *App) Add(ctx context.Context, text string, due *time.Time) error {
	if !a.state.Auth.LoggedIn() {
		return ErrLoginFirst
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEnterTask
	}
	if _, err := a.api.CreateTask(ctx, text, due); err != nil {
		return err
	}
	return a.Load(ctx)
}

// Edit replaces the task text. Empty text is ignored.
func (a *App) Edit(ctx context.Context, id, text string) error {
	if !a.state.Auth.LoggedIn() {
		return ErrLoginFirst
	}
	if text == "" {
		return nil
	}
	if err := a.api.UpdateTask(ctx, id, Patch{Text: &text}); err != nil {
		return err
	}
	return a.Load(ctx)
}

func (a *App) SetDone(ctx context.Context, id string, done bool) error {
	if !a.state.Auth.LoggedIn() {
		return ErrLoginFirst
	}
	if err := a.api.UpdateTask(ctx, id, Patch{Done: &done}); err != nil {
		return err
	}
	return a.Load(ctx)
}

func (a *App) Delete(ctx context.Context, id string) error {
	if !a.state.Auth.LoggedIn() {
		return ErrLoginFirst
	}
	if err := a.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	return a.Load(ctx)
}

// Move drops dragged onto target in the current list, persists the new
// 1..n orders with one request per row in list order, then reloads. A failed
// request stops the sequence and leaves earlier rows renumbered.
func (a *App) Move(ctx context.Context, dragged, target string) error {
	if !a.state.Auth.LoggedIn() {
		return ErrLoginFirst
	}
	if dragged == target {
		return nil
	}
	ids := make([]string, len(a.state.Tasks))
	for i, t := range a.state.Tasks {
		ids[i] = t.ID
	}
	seq, err := Move(ids, dragged, target)
	if err != nil {
		return err
	}
	orders := Renumber(seq)
	for i, id := range seq {
		order := orders[id]
		if err := a.api.UpdateTask(ctx, id, Patch{Order: &order}); err != nil {
			a.setStatus(fmt.Sprintf("Reorder stopped at task %d of %d: %s", i+1, len(seq), failure(err, "request failed")), true)
			return err
		}
	}
	return a.Load(ctx)
}

// ToggleTheme flips between light and dark and persists the choice.
func (a *App) ToggleTheme() (Theme, error) {
	if a.state.Theme == ThemeDark {
		a.state.Theme = ThemeLight
	} else {
		a.state.Theme = ThemeDark
	}
	return a.state.Theme, a.prefs.Set(KeyTheme, string(a.state.Theme))
}

func failure(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil && !errors.As(err, &apiErr) {
		return err.Error()
	}
	return fallback
}
