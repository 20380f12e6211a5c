package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/welldanyogia/webrana-mailsender/internal/errors"
)

// APIResponse is the envelope of every successful reply.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the envelope of every failed reply.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Invalid []string `json:"invalid,omitempty"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Meta    Meta        `json:"meta"`
}

// Meta contains pagination metadata
type Meta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

func reply(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, APIResponse{Success: true, Data: data, Message: message})
}

func failure(c echo.Context, status int, code, message string, invalid []string) error {
	return c.JSON(status, ErrorResponse{Error: message, Code: code, Invalid: invalid})
}

// Success writes data with 200.
func Success(c echo.Context, data interface{}) error {
	return reply(c, http.StatusOK, data, "")
}

// SuccessWithMessage writes data and a human-readable message with 200.
func SuccessWithMessage(c echo.Context, data interface{}, message string) error {
	return reply(c, http.StatusOK, data, message)
}

// Created writes data with 201.
func Created(c echo.Context, data interface{}) error {
	return reply(c, http.StatusCreated, data, "")
}

// NoContent writes an empty 204.
func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// Paginated writes one page of a list with its bounds.
func Paginated(c echo.Context, data interface{}, total int64, limit, offset int) error {
	return c.JSON(http.StatusOK, PaginatedResponse{
		Success: true,
		Data:    data,
		Meta:    Meta{Total: total, Limit: limit, Offset: offset},
	})
}

// Error maps err to a status and code. Roster validation errors carry the
// offending names.
func Error(c echo.Context, err error) error {
	code := apperrors.GetErrorCode(err)
	names, _ := apperrors.InvalidNames(err)
	return failure(c, getHTTPStatus(code, err), code, err.Error(), names)
}

// BadRequest rejects a malformed request body or parameter.
func BadRequest(c echo.Context, message string) error {
	return failure(c, http.StatusBadRequest, apperrors.CodeInvalidInput, message, nil)
}

// Unauthorized rejects a wrong settings secret.
func Unauthorized(c echo.Context, message string) error {
	return failure(c, http.StatusUnauthorized, apperrors.CodeUnauthorized, message, nil)
}

// NotFound reports a missing resource.
func NotFound(c echo.Context, message string) error {
	return failure(c, http.StatusNotFound, apperrors.CodeNotFound, message, nil)
}

// InternalError hides the cause behind a generic message.
func InternalError(c echo.Context, message string) error {
	return failure(c, http.StatusInternalServerError, apperrors.CodeInternalError, message, nil)
}

// getHTTPStatus picks the status for an error code. Transport failures are
// 502 only when the relay could not be reached at all.
func getHTTPStatus(code string, err error) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeInvalidMails,
		string(apperrors.KindNoRecipients),
		string(apperrors.KindNoFile),
		string(apperrors.KindInvalidRecipient),
		string(apperrors.KindInvalidFilePath):
		return http.StatusUnprocessableEntity
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case string(apperrors.KindNoRemoteConnection), string(apperrors.KindErrorOpeningSMTP):
		if apperrors.IsConnectivity(err) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
