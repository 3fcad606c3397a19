package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HeaderAPIKey carries the shared key the chat front-end sends on
// every webhook call.
const HeaderAPIKey = "X-API-KEY"

// RequireKey returns middleware that rejects requests whose shared key
// does not match the configured secret.
func RequireKey(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(HeaderAPIKey)
			if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				slog.Warn("unauthorized request",
					"path", c.Path(),
					"remote", c.RealIP(),
				)
				return c.JSON(http.StatusForbidden, map[string]string{"error": "unauthorized"})
			}
			return next(c)
		}
	}
}
