// Package middleware provides HTTP middleware for the command bridge.
package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
)

// HeaderSettingsSecret carries the settings secret on guarded routes.
const HeaderSettingsSecret = "X-Settings-Secret"

// SecretChecker verifies the settings secret.
type SecretChecker interface {
	SettingsProtected() bool
	CheckSettingsSecret(candidate string) bool
}

// SettingsAuth guards the settings editors. Requests pass freely while no
// secret is configured; the check is made per request, so a secret saved
// through the editor applies immediately.
func SettingsAuth(checker SecretChecker, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !checker.SettingsProtected() {
				return next(c)
			}

			secret := c.Request().Header.Get(HeaderSettingsSecret)
			if secret == "" {
				if logger != nil {
					logger.Warn("missing settings secret",
						slog.String("ip", c.RealIP()),
						slog.String("path", c.Path()))
				}
				return echo.NewHTTPError(401, map[string]string{
					"error": "missing settings secret",
					"code":  apperrors.CodeUnauthorized,
				})
			}

			// constant-time inside the store
			if !checker.CheckSettingsSecret(secret) {
				if logger != nil {
					logger.Warn("invalid settings secret attempt",
						slog.String("ip", c.RealIP()),
						slog.String("path", c.Path()))
				}
				return echo.NewHTTPError(401, map[string]string{
					"error": "invalid settings secret",
					"code":  apperrors.CodeUnauthorized,
				})
			}

			return next(c)
		}
	}
}
