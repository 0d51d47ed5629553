package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/geocode"
	"dispatch/internal/repository"
	"dispatch/internal/rules"
	"dispatch/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, rules.ErrMissingCoordinates),
		errors.Is(err, rules.ErrOutsideServiceArea),
		errors.Is(err, rules.ErrTripTooLong),
		errors.Is(err, rules.ErrDistanceMismatch):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, repository.ErrStaleStatus),
		errors.Is(err, service.ErrRideAlreadyTerminal),
		errors.Is(err, service.ErrRideNotPending),
		errors.Is(err, service.ErrAcceptInProgress),
		errors.Is(err, service.ErrIllegalTransition):
		return http.StatusConflict

	// Service unavailable
	case errors.Is(err, geocode.ErrDisabled):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
