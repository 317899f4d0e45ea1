package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}

// SendConflictError sends a conflict error response
func SendConflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, CreateErrorResponse("CONFLICT", message, nil))
}

// SendDomainError maps a tenancy-core error to its stable status class.
// Anything outside the taxonomy maps to a generic failure so internal
// schema names and raw database text never reach the client.
func SendDomainError(c echo.Context, err error) error {
	var (
		invalidName    *InvalidNameError
		conflict       *ConflictError
		tenantNotFound *TenantNotFoundError
		notProvisioned *SchemaNotProvisionedError
	)
	switch {
	case errors.As(err, &invalidName):
		return SendClientError(c, "Invalid identifier")
	case errors.As(err, &conflict):
		return SendConflictError(c, conflict.Error())
	case errors.As(err, &tenantNotFound):
		return SendNotFoundError(c, "Tenant")
	case errors.As(err, &notProvisioned):
		return c.JSON(http.StatusServiceUnavailable, CreateErrorResponse("NOT_PROVISIONED", "Tenant is not provisioned; run provisioning", nil))
	case errors.Is(err, ErrPoolExhausted):
		return c.JSON(http.StatusServiceUnavailable, CreateErrorResponse("BUSY", "Server busy, retry later", nil))
	default:
		return SendServerError(c, "Internal error")
	}
}
