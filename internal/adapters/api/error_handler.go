package api

import (
	"errors"
	"net/http"

	"floodmap.app/internal/ports"
	errorspkg "floodmap.app/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error     string `json:"error"`
	Type      string `json:"type,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// handleError handles different types of application errors
func (s *HTTPServerAdapter) handleError(c *gin.Context, err error) {
	var appErr *errorspkg.AppError
	var statusCode int
	var message string

	if !errors.As(err, &appErr) {
		s.logger.Error("Unhandled error",
			ports.F("request_id", c.GetString(requestIDKey)),
			ports.F("error", err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     "Internal server error",
			RequestID: c.GetString(requestIDKey),
		})
		return
	}

	switch appErr.Type {
	case errorspkg.ErrorTypeValidation:
		statusCode = http.StatusBadRequest
		message = appErr.Message
	case errorspkg.ErrorTypeNotFound:
		statusCode = http.StatusNotFound
		message = appErr.Message
	case errorspkg.ErrorTypeDuplicateName:
		statusCode = http.StatusConflict
		message = appErr.Message
	case errorspkg.ErrorTypeAuth:
		statusCode = http.StatusUnauthorized
		message = "Authentication with the flood monitoring service failed, please re-check credentials"
	case errorspkg.ErrorTypeTransientNetwork:
		statusCode = http.StatusServiceUnavailable
		message = "Flood monitoring service unavailable, try again later"
	case errorspkg.ErrorTypeRemoteAPI:
		statusCode = http.StatusBadGateway
		message = appErr.Message
	case errorspkg.ErrorTypeMalformedArchive:
		statusCode = http.StatusUnprocessableEntity
		message = appErr.Message
	default:
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	if statusCode >= http.StatusInternalServerError {
		s.logger.Error("Request failed",
			ports.F("request_id", c.GetString(requestIDKey)),
			ports.F("error_type", appErr.Type.String()),
			ports.F("error", err))
	}

	c.JSON(statusCode, ErrorResponse{
		Error:     message,
		Type:      appErr.Type.String(),
		RequestID: c.GetString(requestIDKey),
	})
}
