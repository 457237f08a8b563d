package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskpad/domain"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with {"error": msg} and records err on the request metrics.
func writeError(c echo.Context, stage string, err error) error {
	status := statusFor(err)
	if m := metricsFrom(c); m != nil {
		m.SetErrorStage(stage)
		m.SetError(err)
		if status == http.StatusInternalServerError && m.logger != nil {
			m.logger.WithFields(log.Fields{"route": m.route, "stage": stage}).Error(err.Error())
		}
	}
	return c.JSON(status, errorResponse{Error: err.Error()})
}

// errorHandler renders echo's own errors (unknown route, bad method) in the
// same shape as handler errors.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		} else {
			msg = http.StatusText(status)
		}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, errorResponse{Error: msg})
}
