package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context. The code of the innermost
// AppError is kept so callers can still classify the failure.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// As finds the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := As(err)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// IsFatal reports whether err means the dataset cannot be rendered at all
func IsFatal(err error) bool {
	switch GetCode(err) {
	case CodeDatasetNotFound, CodeDatasetUnreadable, CodeSchemaInvalid, CodeDatasetNotLoaded, CodeConfigInvalid:
		return true
	}
	return false
}

// HTTPStatus maps an error to the status code a handler should answer with
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDatasetNotFound, CodeDatasetUnreadable, CodeSchemaInvalid, CodeDatasetNotLoaded, CodeConfigInvalid:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Predefined error codes
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeDatabaseError     = "DATABASE_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeExternalService   = "EXTERNAL_SERVICE_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeDatasetNotFound   = "DATASET_NOT_FOUND"
	CodeDatasetUnreadable = "DATASET_UNREADABLE"
	CodeSchemaInvalid     = "SCHEMA_INVALID"
	CodeDatasetNotLoaded  = "DATASET_NOT_LOADED"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeDatabaseError,
		Message: message,
		Cause:   cause,
	}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code:    CodeExternalService,
		Message: fmt.Sprintf("%s service error", service),
		Cause:   cause,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func DatasetNotFound(path string) *AppError {
	return New(CodeDatasetNotFound, fmt.Sprintf("dataset file not found: %s", path))
}

func DatasetUnreadable(source string, cause error) *AppError {
	return &AppError{
		Code:    CodeDatasetUnreadable,
		Message: fmt.Sprintf("dataset %s could not be read", source),
		Cause:   cause,
	}
}

func SchemaInvalid(message string) *AppError {
	return New(CodeSchemaInvalid, message)
}

func DatasetNotLoaded() *AppError {
	return New(CodeDatasetNotLoaded, "dataset has not been loaded yet")
}
