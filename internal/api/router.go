// Package api exposes application actions to the UI shell over a local
// HTTP and websocket bridge.
package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/welldanyogia/webrana-mailsender/internal/api/handlers"
	"github.com/welldanyogia/webrana-mailsender/internal/api/middleware"
	"github.com/welldanyogia/webrana-mailsender/internal/app"
	"github.com/welldanyogia/webrana-mailsender/internal/websocket"
)

// Unlock attempts allowed per client before throttling.
const (
	unlockRate  = 0.2
	unlockBurst = 5
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	App *app.App
	// DB is the dispatch journal, nil when journaling is disabled.
	DB     *gorm.DB
	Hub    *websocket.Hub
	Logger *slog.Logger

	AllowedOrigins []string
	Production     bool
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.SecureHeaders())
	e.Use(middleware.SecureCORS(cfg.AllowedOrigins, cfg.Production))
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	healthHandler := handlers.NewHealthHandler(cfg.DB)
	dispatchHandler := handlers.NewDispatchHandler(cfg.App)
	otherHandler := handlers.NewOtherMailHandler(cfg.App)
	settingsHandler := handlers.NewSettingsHandler(cfg.App)

	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	if cfg.Hub != nil {
		wsHandler := handlers.NewWebSocketHandler(cfg.Hub, cfg.AllowedOrigins, cfg.Logger)
		e.GET("/ws", wsHandler.Serve)
	}

	api := e.Group("/api")

	// Main screen
	api.GET("/roster/:category", dispatchHandler.Section)
	api.POST("/recipients/:id", dispatchHandler.AddRecipient)
	api.DELETE("/recipients/:id", dispatchHandler.RemoveRecipient)
	api.GET("/working", dispatchHandler.Working)
	api.PUT("/attachments", dispatchHandler.Attach)
	api.POST("/attachments/pick", dispatchHandler.Pick)
	api.POST("/send", dispatchHandler.Send)
	api.POST("/feedback", dispatchHandler.Feedback)
	api.GET("/journal", dispatchHandler.Journal)
	api.GET("/journal/:dispatch_id", dispatchHandler.JournalEntry)

	// Ad-hoc addresses
	other := api.Group("/other")
	other.GET("", otherHandler.List)
	other.POST("", otherHandler.Add)
	other.POST("/close", otherHandler.Close)
	other.PUT("/:id", otherHandler.Edit)
	other.DELETE("/:id", otherHandler.Remove)

	// Settings: status and unlock stay open, the editors need the secret.
	api.GET("/settings/status", settingsHandler.Status)
	api.POST("/settings/unlock", settingsHandler.Unlock,
		middleware.RateLimiter(unlockRate, unlockBurst, cfg.Logger))

	settings := api.Group("/settings", middleware.SettingsAuth(cfg.App, cfg.Logger))
	settings.POST("/open", settingsHandler.Open)
	settings.GET("/roster/:category", settingsHandler.RosterSection)
	settings.POST("/roster/save", settingsHandler.SaveRoster)
	settings.POST("/roster/discard", settingsHandler.DiscardRoster)
	settings.GET("/person/:id", settingsHandler.SelectPerson)
	settings.PATCH("/person/:id", settingsHandler.EditPerson)
	settings.GET("/config", settingsHandler.Config)
	settings.PUT("/config/:field", settingsHandler.SetField)
	settings.POST("/config/save", settingsHandler.SaveConfig)
	settings.POST("/config/discard", settingsHandler.DiscardConfig)

	return e
}
