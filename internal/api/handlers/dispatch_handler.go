package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/webrana-mailsender/internal/api/response"
	"github.com/welldanyogia/webrana-mailsender/internal/app"
	"github.com/welldanyogia/webrana-mailsender/internal/mailer"
	"github.com/welldanyogia/webrana-mailsender/internal/models"
)

// DispatchHandler handles the main screen: recipient selection, attachments,
// sending and the journal.
type DispatchHandler struct {
	app *app.App
}

// NewDispatchHandler creates a new DispatchHandler
func NewDispatchHandler(a *app.App) *DispatchHandler {
	return &DispatchHandler{app: a}
}

// AttachRequest represents the request body for choosing attachments
type AttachRequest struct {
	Paths []string `json:"paths"`
}

// FeedbackRequest represents the request body for sending feedback
type FeedbackRequest struct {
	Text string `json:"text"`
}

// WorkingResponse is the working set plus whether sending is possible.
type WorkingResponse struct {
	mailer.WorkingState
	Ready bool `json:"ready"`
}

// Section handles GET /api/roster/:category
func (h *DispatchHandler) Section(c echo.Context) error {
	entries, err := h.app.Section(models.Category(c.Param("category")))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, entries)
}

// AddRecipient handles POST /api/recipients/:id
func (h *DispatchHandler) AddRecipient(c echo.Context) error {
	r, err := h.app.AddRecipient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, r)
}

// RemoveRecipient handles DELETE /api/recipients/:id
func (h *DispatchHandler) RemoveRecipient(c echo.Context) error {
	r, err := h.app.RemoveRecipient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, r)
}

// Working handles GET /api/working
func (h *DispatchHandler) Working(c echo.Context) error {
	return response.Success(c, WorkingResponse{
		WorkingState: h.app.Working(),
		Ready:        h.app.SendReady(),
	})
}

// Attach handles PUT /api/attachments
func (h *DispatchHandler) Attach(c echo.Context) error {
	var req AttachRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if len(req.Paths) == 0 {
		return response.BadRequest(c, "paths is required")
	}

	if err := h.app.AttachFiles(c.Request().Context(), req.Paths); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, h.app.Working())
}

// Pick handles POST /api/attachments/pick. The dialog result arrives
// asynchronously; the UI refreshes the working set afterwards.
func (h *DispatchHandler) Pick(c echo.Context) error {
	if err := h.app.PickFiles(c.Request().Context()); err != nil {
		return response.Error(c, err)
	}
	return c.JSON(http.StatusAccepted, response.APIResponse{Success: true})
}

// Send handles POST /api/send
func (h *DispatchHandler) Send(c echo.Context) error {
	res, err := h.app.Send(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessWithMessage(c, res, "mail sent")
}

// Feedback handles POST /api/feedback
func (h *DispatchHandler) Feedback(c echo.Context) error {
	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	res, err := h.app.SendFeedback(c.Request().Context(), req.Text)
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessWithMessage(c, res, "feedback sent")
}

// Journal handles GET /api/journal
func (h *DispatchHandler) Journal(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	page, err := h.app.Journal(c.Request().Context(),
		c.QueryParam("kind"), c.QueryParam("outcome"), limit, offset)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, page.Dispatches, page.Total, page.Limit, page.Offset)
}

// JournalEntry handles GET /api/journal/:dispatch_id
func (h *DispatchHandler) JournalEntry(c echo.Context) error {
	d, err := h.app.JournalEntry(c.Request().Context(), c.Param("dispatch_id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, d)
}
