package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/saju-auth/internal/domain"
)

const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

// Envelope is the standard API response wrapper.
type Envelope struct {
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError represents an error in the API response.
type APIError struct {
	Code    string       `json:"code"`
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a field-level validation error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// JSON writes a successful JSON response with the standard envelope.
func JSON(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{Status: StatusSuccess, Data: data})
}

// HTTPErrorHandler is the global error handler for echo.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message, apiErr := mapError(err)
	if jsonErr := c.JSON(status, Envelope{Status: StatusError, Message: message, Error: &apiErr}); jsonErr != nil {
		slog.Error("failed to send error response", "error", jsonErr)
	}
}

func mapError(err error) (int, string, APIError) {
	// Handle echo's own HTTP errors (404, 405, 429, etc.)
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		msg, _ := echoErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(echoErr.Code)
		}
		return echoErr.Code, msg, APIError{Code: http.StatusText(echoErr.Code)}
	}

	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return http.StatusUnauthorized, "Social login failed", APIError{Code: "authentication_failed"}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Authentication is required", APIError{Code: "unauthorized"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "The requested resource was not found", APIError{Code: "not_found"}
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "Validation failed", APIError{
			Code:    "validation_error",
			Details: []FieldError{{Field: validationErr.Field, Message: validationErr.Message}},
		}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "The request is invalid", APIError{Code: "invalid_input"}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "The resource already exists or conflicts with current state", APIError{Code: "conflict"}
	default:
		slog.Error("unhandled error", "error", err)
		return http.StatusInternalServerError, "An unexpected error occurred", APIError{Code: "internal_error"}
	}
}
