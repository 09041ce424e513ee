package errors

import (
	stderrors "errors"
	"fmt"
)

// Application error types organized by category for better error handling

type ErrorType int

// Domain/Business Logic Errors - user-correctable problems with the request
const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeValidation
	ErrorTypeNotFound
	ErrorTypeDuplicateName

	// Upstream Errors - problems talking to the remote AOI/product API
	ErrorTypeAuth
	ErrorTypeTransientNetwork
	ErrorTypeRemoteAPI

	// Artifact Errors - problems materializing a single product
	ErrorTypeMalformedArchive
	ErrorTypeStorage

	// System/Configuration Errors - errors related to system setup and configuration
	ErrorTypeConfiguration
)

// String returns the string representation of error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND_ERROR"
	case ErrorTypeDuplicateName:
		return "DUPLICATE_NAME_ERROR"
	case ErrorTypeAuth:
		return "AUTH_ERROR"
	case ErrorTypeTransientNetwork:
		return "TRANSIENT_NETWORK_ERROR"
	case ErrorTypeRemoteAPI:
		return "REMOTE_API_ERROR"
	case ErrorTypeMalformedArchive:
		return "MALFORMED_ARCHIVE_ERROR"
	case ErrorTypeStorage:
		return "STORAGE_ERROR"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Short aliases used across the adapters
const (
	ValidationError       = ErrorTypeValidation
	NotFoundError         = ErrorTypeNotFound
	DuplicateNameError    = ErrorTypeDuplicateName
	AuthError             = ErrorTypeAuth
	TransientNetworkError = ErrorTypeTransientNetwork
	RemoteAPIError        = ErrorTypeRemoteAPI
	MalformedArchiveError = ErrorTypeMalformedArchive
	StorageError          = ErrorTypeStorage
	ConfigurationError    = ErrorTypeConfiguration
)

type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// Domain/Business Logic Error Constructors
func NewValidationError(message string) *AppError {
	return New(ValidationError, message)
}

func NewNotFoundError(message string) *AppError {
	return New(NotFoundError, message)
}

func NewDuplicateNameError(message string) *AppError {
	return New(DuplicateNameError, message)
}

// Upstream Error Constructors
func NewAuthError(message string, cause error) *AppError {
	return Wrap(AuthError, message, cause)
}

func NewTransientNetworkError(message string, cause error) *AppError {
	return Wrap(TransientNetworkError, message, cause)
}

func NewRemoteAPIError(message string, cause error) *AppError {
	return Wrap(RemoteAPIError, message, cause)
}

// Artifact Error Constructors
func NewMalformedArchiveError(message string, cause error) *AppError {
	return Wrap(MalformedArchiveError, message, cause)
}

func NewStorageError(message string, cause error) *AppError {
	return Wrap(StorageError, message, cause)
}

// System/Configuration Error Constructors
func NewConfigurationError(message string, cause error) *AppError {
	return Wrap(ConfigurationError, message, cause)
}

// TypeOf returns the type of the first AppError in the chain, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// Helper functions for error type checking. They look through %w wrapping.
// IsValidationError also reports duplicate names, which are a kind of
// invalid user input.
func IsValidationError(err error) bool {
	t := TypeOf(err)
	return t == ValidationError || t == DuplicateNameError
}

func IsNotFoundError(err error) bool {
	return TypeOf(err) == NotFoundError
}

func IsDuplicateNameError(err error) bool {
	return TypeOf(err) == DuplicateNameError
}

func IsAuthError(err error) bool {
	return TypeOf(err) == AuthError
}

func IsTransientNetworkError(err error) bool {
	return TypeOf(err) == TransientNetworkError
}

func IsRemoteAPIError(err error) bool {
	return TypeOf(err) == RemoteAPIError
}

func IsMalformedArchiveError(err error) bool {
	return TypeOf(err) == MalformedArchiveError
}

func IsStorageError(err error) bool {
	return TypeOf(err) == StorageError
}

func IsConfigurationError(err error) bool {
	return TypeOf(err) == ConfigurationError
}
