package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/webrana-mailsender/internal/api/response"
	"github.com/welldanyogia/webrana-mailsender/internal/app"
)

// OtherMailHandler handles the ad-hoc address editor.
type OtherMailHandler struct {
	app *app.App
}

// NewOtherMailHandler creates a new OtherMailHandler
func NewOtherMailHandler(a *app.App) *OtherMailHandler {
	return &OtherMailHandler{app: a}
}

// EditRowRequest represents the request body for editing a row
type EditRowRequest struct {
	Text string `json:"text"`
}

// List handles GET /api/other
func (h *OtherMailHandler) List(c echo.Context) error {
	return response.Success(c, h.app.OtherRows())
}

// Add handles POST /api/other
func (h *OtherMailHandler) Add(c echo.Context) error {
	return response.Created(c, map[string]int{"id": h.app.AddOtherRow()})
}

// Edit handles PUT /api/other/:id
func (h *OtherMailHandler) Edit(c echo.Context) error {
	var req EditRowRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := h.app.EditOtherRow(c.Request().Context(), c.Param("id"), req.Text); err != nil {
		return response.Error(c, err)
	}
	return response.NoContent(c)
}

// Remove handles DELETE /api/other/:id
func (h *OtherMailHandler) Remove(c echo.Context) error {
	if err := h.app.RemoveOtherRow(c.Request().Context(), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.NoContent(c)
}

// Close handles POST /api/other/close
func (h *OtherMailHandler) Close(c echo.Context) error {
	return response.Success(c, h.app.CloseOther())
}
