// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/exitflow/internal/errors"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Message   string            `json:"message,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// diagnosticError is implemented by errors that expose evaluated context to the caller,
// such as the role, stage and department checked by the permission guard.
type diagnosticError interface {
	error
	Diagnostics() map[string]string
}

const (
	conflictMessage     = "The request conflicts with the current state of the offboarding record"
	unauthorizedMessage = "Authentication is required"
	forbiddenMessage    = "You don't have permission to perform this action"
)

// errorStatuses maps an error code to its status. A code with a fixed message hides the
// underlying error text from the client.
var errorStatuses = map[string]struct {
	status  int
	message string
}{
	apperrors.CodeNotFound:          {status: http.StatusNotFound},
	apperrors.CodeInvalidTransition: {status: http.StatusBadRequest},
	apperrors.CodeValidation:        {status: http.StatusBadRequest},
	apperrors.CodeConflict:          {status: http.StatusConflict, message: conflictMessage},
	apperrors.CodeUnauthorized:      {status: http.StatusUnauthorized, message: unauthorizedMessage},
	apperrors.CodeForbidden:         {status: http.StatusForbidden, message: forbiddenMessage},
}

// HandleErrorGin maps a domain error to its status code and writes the JSON error body.
// Internal errors are logged in full but never described to the client.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	code := apperrors.Code(err)
	mapped, ok := errorStatuses[code]
	if !ok {
		write(c, http.StatusInternalServerError, ErrorResponse{
			Error:   apperrors.CodeInternal,
			Message: "An internal error occurred",
		}, logger, "request failed", err)
		return
	}

	response := ErrorResponse{Error: code, Message: mapped.message}
	if response.Message == "" {
		response.Message = err.Error()
	}
	var diag diagnosticError
	if apperrors.As(err, &diag) {
		response.Details = diag.Diagnostics()
	}

	write(c, mapped.status, response, logger, "request failed", err)
}

// HandleBadRequestGin writes a 400 response for a malformed body or parameter.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	write(c, http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	}, logger, "bad request", err)
}

// HandleValidationErrorGin writes a 400 response for input that failed validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	write(c, http.StatusBadRequest, ErrorResponse{
		Error:   apperrors.CodeValidation,
		Message: err.Error(),
	}, logger, "validation failed", err)
}

func write(c *gin.Context, status int, response ErrorResponse, logger *slog.Logger, msg string, err error) {
	if c.Request != nil {
		response.RequestID = requestid.Get(c)
	}

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c, level, msg,
			slog.Int("status_code", status),
			slog.String("error_code", response.Error),
			slog.String("request_id", response.RequestID),
			slog.Any("error", err),
		)
	}

	c.JSON(status, response)
}
