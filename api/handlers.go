package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, auth Auth, tasks Tasks, logger *log.Logger) {
	e.JSONSerializer = sonicSerializer{}
	e.HTTPErrorHandler = errorHandler
	e.Use(requestMetricsMiddleware(logger))

	session := requireSession(auth)
	e.GET("/", health())
	e.POST("/register", register(auth))
	e.POST("/login", login(auth))
	e.POST("/logout", logout(auth), session)
	e.GET("/tasks", listTasks(tasks), session)
	e.POST("/tasks", createTask(tasks), session)
	e.PUT("/tasks/:id", updateTask(tasks), session)
	e.DELETE("/tasks/:id", deleteTask(tasks), session)
}

func health() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, healthResponse{Status: "OK", Message: "Task Manager API running"})
	}
}

func register(auth Auth) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req credentialsRequest
		if err := decodeBody(c, &req); err != nil {
			return writeError(c, "decode", err)
		}
		start := time.Now()
		id, err := auth.Register(c.Request().Context(), req.Username, req.Password)
		observeStore(c, start)
		if err != nil {
			return writeError(c, "register", err)
		}
		return c.JSON(http.StatusCreated, registerResponse{Success: true, UserID: id})
	}
}

func login(auth Auth) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req credentialsRequest
		if err := decodeBody(c, &req); err != nil {
			return writeError(c, "decode", err)
		}
		start := time.Now()
		sess, err := auth.Login(c.Request().Context(), req.Username, req.Password)
		observeStore(c, start)
		if err != nil {
			return writeError(c, "login", err)
		}
		return c.JSON(http.StatusOK, loginResponse{Token: sess.Token, UserID: sess.UserID, Username: sess.Username})
	}
}

func logout(auth Auth) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := auth.Logout(c.Request().Context(), c.Request().Header.Get(HeaderAuthToken)); err != nil {
			return writeError(c, "logout", err)
		}
		return c.JSON(http.StatusOK, successResponse{Success: true})
	}
}

func listTasks(tasks Tasks) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		list, err := tasks.List(c.Request().Context(), userIDFrom(c))
		observeStore(c, start)
		if err != nil {
			return writeError(c, "storage", err)
		}
		resp := make([]taskResponse, len(list))
		for i, t := range list {
			resp[i] = newTaskResponse(t)
		}
		if m := metricsFrom(c); m != nil {
			m.SetTasksReturned(len(resp))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func createTask(tasks Tasks) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return writeError(c, "decode", err)
		}
		due, err := optionalDueDate(req.DueDate)
		if err != nil {
			return writeError(c, "decode", err)
		}
		start := time.Now()
		id, err := tasks.Create(c.Request().Context(), userIDFrom(c), req.Text, due)
		observeStore(c, start)
		if err != nil {
			return writeError(c, "storage", err)
		}
		return c.JSON(http.StatusCreated, successResponse{Success: true, ID: id})
	}
}

func updateTask(tasks Tasks) echo.HandlerFunc {
	return func(c echo.Context) error {
		patch, err := decodePatch(c)
		if err != nil {
			return writeError(c, "decode", err)
		}
		start := time.Now()
		id, err := tasks.Update(c.Request().Context(), c.Param("id"), userIDFrom(c), patch)
		observeStore(c, start)
		if err != nil {
			return writeError(c, "storage", err)
		}
		return c.JSON(http.StatusOK, successResponse{Success: true, ID: id})
	}
}

func deleteTask(tasks Tasks) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := tasks.Delete(c.Request().Context(), c.Param("id"), userIDFrom(c))
		observeStore(c, start)
		if err != nil {
			return writeError(c, "storage", err)
		}
		return c.JSON(http.StatusOK, successResponse{Success: true})
	}
}

func observeStore(c echo.Context, start time.Time) {
	if m := metricsFrom(c); m != nil {
		m.ObserveStore(time.Since(start))
	}
}
