package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// DefaultAllowedOrigin is used when no origin is configured.
const DefaultAllowedOrigin = "http://localhost:3000"

// SecureCORS returns CORS middleware for the UI shell's origins.
// Wildcard (*) origins are dropped in production.
func SecureCORS(allowedOrigins []string, production bool) echo.MiddlewareFunc {
	origins := make([]string, 0, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "" || (production && o == "*") {
			continue
		}
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		origins = []string{DefaultAllowedOrigin}
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.PATCH, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, HeaderSettingsSecret},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
