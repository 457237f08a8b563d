package api

import (
	"github.com/labstack/echo/v4"
)

const userIDKey = "userID"

// requireSession resolves the x-auth-token header to a user id.
func requireSession(auth Auth) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := auth.Authorize(c.Request().Context(), c.Request().Header.Get(HeaderAuthToken))
			if err != nil {
				return writeError(c, "auth", err)
			}
			c.Set(userIDKey, userID)
			if m := metricsFrom(c); m != nil {
				m.SetUser(userID)
			}
			return next(c)
		}
	}
}

func userIDFrom(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
