package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/webrana-mailsender/internal/api/response"
	"github.com/welldanyogia/webrana-mailsender/internal/app"
	"github.com/welldanyogia/webrana-mailsender/internal/models"
)

// SettingsHandler handles the roster and configuration editors.
type SettingsHandler struct {
	app *app.App
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(a *app.App) *SettingsHandler {
	return &SettingsHandler{app: a}
}

// UnlockRequest represents the request body for checking the settings secret
type UnlockRequest struct {
	Secret string `json:"secret"`
}

// EditPersonRequest represents the request body for editing a roster slot.
// Absent fields are left unchanged.
type EditPersonRequest struct {
	Name *string `json:"name"`
	Mail *string `json:"mail"`
}

// SetFieldRequest represents the request body for editing a config field
type SetFieldRequest struct {
	Value string `json:"value"`
}

// Status handles GET /api/settings/status
func (h *SettingsHandler) Status(c echo.Context) error {
	return response.Success(c, map[string]bool{"protected": h.app.SettingsProtected()})
}

// Unlock handles POST /api/settings/unlock
func (h *SettingsHandler) Unlock(c echo.Context) error {
	var req UnlockRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if !h.app.CheckSettingsSecret(req.Secret) {
		return response.Unauthorized(c, "wrong settings secret")
	}
	return response.Success(c, map[string]bool{"unlocked": true})
}

// Open handles POST /api/settings/open
func (h *SettingsHandler) Open(c echo.Context) error {
	h.app.OpenSettings()
	return response.NoContent(c)
}

// RosterSection handles GET /api/settings/roster/:category
func (h *SettingsHandler) RosterSection(c echo.Context) error {
	entries, err := h.app.RosterSection(models.Category(c.Param("category")))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, entries)
}

// SelectPerson handles GET /api/settings/person/:id
func (h *SettingsHandler) SelectPerson(c echo.Context) error {
	view, err := h.app.SelectPerson(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, view)
}

// EditPerson handles PATCH /api/settings/person/:id
func (h *SettingsHandler) EditPerson(c echo.Context) error {
	var req EditPersonRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Name == nil && req.Mail == nil {
		return response.BadRequest(c, "name or mail is required")
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	if req.Name != nil {
		if err := h.app.SetPersonName(ctx, id, *req.Name); err != nil {
			return response.Error(c, err)
		}
	}
	if req.Mail != nil {
		if err := h.app.SetPersonMail(ctx, id, *req.Mail); err != nil {
			return response.Error(c, err)
		}
	}
	return response.NoContent(c)
}

// SaveRoster handles POST /api/settings/roster/save
func (h *SettingsHandler) SaveRoster(c echo.Context) error {
	if err := h.app.SaveRoster(c.Request().Context()); err != nil {
		return response.Error(c, err)
	}
	return response.SuccessWithMessage(c, nil, "roster saved")
}

// DiscardRoster handles POST /api/settings/roster/discard
func (h *SettingsHandler) DiscardRoster(c echo.Context) error {
	h.app.DiscardRoster(c.Request().Context())
	return response.NoContent(c)
}

// Config handles GET /api/settings/config
func (h *SettingsHandler) Config(c echo.Context) error {
	return response.Success(c, h.app.ConfigEntries())
}

// SetField handles PUT /api/settings/config/:field
func (h *SettingsHandler) SetField(c echo.Context) error {
	var req SetFieldRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := h.app.SetConfigField(c.Param("field"), req.Value); err != nil {
		return response.Error(c, err)
	}
	return response.NoContent(c)
}

// SaveConfig handles POST /api/settings/config/save
func (h *SettingsHandler) SaveConfig(c echo.Context) error {
	if err := h.app.SaveConfig(c.Request().Context()); err != nil {
		return response.Error(c, err)
	}
	return response.SuccessWithMessage(c, nil, "configuration saved")
}

// DiscardConfig handles POST /api/settings/config/discard
func (h *SettingsHandler) DiscardConfig(c echo.Context) error {
	h.app.DiscardConfig(c.Request().Context())
	return response.NoContent(c)
}
