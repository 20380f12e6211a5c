package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/welldanyogia/webrana-mailsender/internal/database"
)

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler creates a new HealthHandler. db is the dispatch journal
// and may be nil when journaling is disabled.
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	services := make(map[string]string)
	status := "healthy"

	switch {
	case h.db == nil:
		services["journal"] = "disabled"
	case database.Ping(c.Request().Context(), h.db) != nil:
		services["journal"] = "unhealthy"
		status = "unhealthy"
	default:
		services["journal"] = "healthy"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, HealthResponse{
		Status:   status,
		Services: services,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c echo.Context) error {
	if h.db != nil {
		if err := database.Ping(c.Request().Context(), h.db); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"reason": "journal ping failed",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
	})
}
