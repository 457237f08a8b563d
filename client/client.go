package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// HeaderAuthToken carries the session token.
const HeaderAuthToken = "x-auth-token"

// Task is a task as returned by GET /tasks.
type Task struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Done      bool       `json:"done"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	DueDate   *time.Time `json:"dueDate"`
	Order     int        `json:"order"`
}

// Login is the result of a successful POST /login.
type Login struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Patch lists the fields a PUT /tasks/:id changes. ClearDueDate sends null.
type Patch struct {
	Text         *string
	Done         *bool
	DueDate      *time.Time
	ClearDueDate bool
	Order        *int
}

func (p Patch) body() map[string]any {
	m := map[string]any{}
	if p.Text != nil {
		m["text"] = *p.Text
	}
	if p.Done != nil {
		m["done"] = *p.Done
	}
	if p.ClearDueDate {
		m["dueDate"] = nil
	} else if p.DueDate != nil {
		m["dueDate"] = p.DueDate.UTC().Format(time.RFC3339)
	}
	if p.Order != nil {
		m["order"] = *p.Order
	}
	return m
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return e.Message
}

// Client wraps http.Client with typed calls for every API route.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New creates a new Client.
func New(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: &http.Client{Timeout: 30 * time.Second}}
}

// SetToken sets the session token sent with authenticated requests.
func (c *Client) SetToken(token string) { c.Token = token }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set(HeaderAuthToken, c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if sonic.Unmarshal(data, &e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}
	if out != nil {
		return sonic.Unmarshal(data, out)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", nil, nil)
}

// Register creates an account and returns its user id.
func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		UserID string `json:"userId"`
	}
	err := c.do(ctx, http.MethodPost, "/register", map[string]string{"username": username, "password": password}, &resp)
	return resp.UserID, err
}

func (c *Client) Login(ctx context.Context, username, password string) (Login, error) {
	var resp Login
	err := c.do(ctx, http.MethodPost, "/login", map[string]string{"username": username, "password": password}, &resp)
	return resp, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil)
}

func (c *Client) Tasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask adds a task and returns its id.
func (c *Client) CreateTask(ctx context.Context, text string, due *time.Time) (string, error) {
	body := map[string]any{"text": text, "dueDate": nil}
	if due != nil {
		body["dueDate"] = due.UTC().Format(time.RFC3339)
	}
	var resp struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/tasks", body, &resp)
	return resp.ID, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, p Patch) error {
	return c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), p.body(), nil)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}
