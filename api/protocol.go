package api

import (
	"time"

	"taskpad/domain"
)

const maxBodySize = 64 * 1024 // 64 KiB

// HeaderAuthToken carries the session token on authenticated routes.
const HeaderAuthToken = "x-auth-token"

// POST /register and POST /login request body
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /register response body
type registerResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}

// POST /login response body
type loginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// POST /tasks request body
type createTaskRequest struct {
	Text    string  `json:"text"`
	DueDate *string `json:"dueDate"`
}

// GET /tasks response item
type taskResponse struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Done      bool       `json:"done"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	DueDate   *time.Time `json:"dueDate"`
	Order     int        `json:"order"`
}

func newTaskResponse(t domain.Task) taskResponse {
	return taskResponse{
		ID:        t.ID,
		Text:      t.Text,
		Done:      t.Done,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		DueDate:   t.DueDate,
		Order:     t.Order,
	}
}

type successResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}
