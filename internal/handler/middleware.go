package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tagship/tagship/internal"
)

// WebhookKeyAuth rejects requests whose trigger key header does not match
// the configured key. Comparison is constant time.
func WebhookKeyAuth(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			given := c.Request().Header.Get(internal.WebhookTriggerKeyHeader)
			if key == "" ||
				subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook key")
			}
			return next(c)
		}
	}
}
