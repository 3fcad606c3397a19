package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Logging returns middleware that tags each request with an id and
// logs method, path, status and duration.
func Logging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := uuid.New().String()
			c.Set("request_id", requestID)

			err := next(c)

			slog.Info("request processed",
				"request_id", requestID,
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"duration", time.Since(start),
			)
			return err
		}
	}
}
