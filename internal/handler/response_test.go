package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/sumire/saju-auth/internal/domain"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"authentication failed", fmt.Errorf("%w: %w", domain.ErrAuthenticationFailed, domain.ErrMalformedProfile), http.StatusUnauthorized, "authentication_failed"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"not found", fmt.Errorf("lookup: %w", domain.ErrNotFound), http.StatusNotFound, "not_found"},
		{"invalid input", fmt.Errorf("%w: bad", domain.ErrInvalidInput), http.StatusBadRequest, "invalid_input"},
		{"validation", &domain.ValidationError{Field: "Code", Message: "failed on 'required' validation"}, http.StatusBadRequest, "validation_error"},
		{"conflict", &domain.StorageError{Op: "insert user", Err: domain.ErrConflict}, http.StatusConflict, "conflict"},
		{"storage", &domain.StorageError{Op: "insert user", Err: errors.New("disk full")}, http.StatusInternalServerError, "internal_error"},
		{"echo", echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"), http.StatusTooManyRequests, "Too Many Requests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message, apiErr := mapError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.NotEmpty(t, message)
		})
	}
}

func TestMapError_ValidationDetails(t *testing.T) {
	_, _, apiErr := mapError(&domain.ValidationError{Field: "Code", Message: "failed on 'required' validation"})
	assert.Equal(t, []FieldError{{Field: "Code", Message: "failed on 'required' validation"}}, apiErr.Details)
}
