// Package errors defines common error types for the application.
package errors

import (
	"errors"
	"fmt"
	"reflect"
)

// Error codes for the application.
const (
	CodeUnknown       = "UNKNOWN_ERROR"
	CodeDatabaseError = "DATABASE_ERROR"
	CodeUploadError   = "UPLOAD_ERROR"
	CodeDownloadError = "DOWNLOAD_ERROR"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeNotFound      = "NOT_FOUND"
	CodeConfigError   = "CONFIG_ERROR"

	CodeNullIdentifier = "NULL_IDENTIFIER"
	CodeIDConflict     = "ID_CONFLICT"
	CodeObjectConflict = "OBJECT_CONFLICT"
	CodeUnknownMapping = "UNKNOWN_MAPPING"
	CodeWrongType      = "WRONG_TYPE"
	CodeWrongTypeID    = "WRONG_TYPE_ID"
	CodeInvalidTypeID  = "INVALID_TYPE_ID"
	CodeInvalidObject  = "INVALID_OBJECT"
	CodeIndexCorrupted = "INDEX_CORRUPTED"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message.
func Newf(code string, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error instances.
var (
	ErrDatabaseError = New(CodeDatabaseError, "database error")
	ErrUploadError   = New(CodeUploadError, "upload error")
	ErrDownloadError = New(CodeDownloadError, "download error")
	ErrInvalidInput  = New(CodeInvalidInput, "invalid input")
	ErrNotFound      = New(CodeNotFound, "resource not found")
	ErrConfigError   = New(CodeConfigError, "configuration error")
)

// Registry error instances. Detailed errors built by the constructors below
// match these through errors.Is.
var (
	ErrNullIdentifier = New(CodeNullIdentifier, "identifier must not be zero")
	ErrIDConflict     = New(CodeIDConflict, "id already bound to a different object")
	ErrObjectConflict = New(CodeObjectConflict, "object already bound to a different id")
	ErrUnknownMapping = New(CodeUnknownMapping, "type mapping not registered")
	ErrWrongType      = New(CodeWrongType, "type id bound to a different type")
	ErrWrongTypeID    = New(CodeWrongTypeID, "type bound to a different type id")
	ErrInvalidTypeID  = New(CodeInvalidTypeID, "id does not refer to a type")
	ErrInvalidObject  = New(CodeInvalidObject, "object cannot be registered")
	ErrIndexCorrupted = New(CodeIndexCorrupted, "registry index is inconsistent")
)

// IDConflict reports that id already maps to existing while proposed was offered.
func IDConflict(id uint64, existing, proposed interface{}) *AppError {
	return Newf(CodeIDConflict, "id %d already bound to %s, cannot bind %s", id, describe(existing), describe(proposed))
}

// ObjectConflict reports that obj is already registered under existingID.
func ObjectConflict(obj interface{}, existingID, proposedID uint64) *AppError {
	return Newf(CodeObjectConflict, "%s already bound to id %d, cannot bind id %d", describe(obj), existingID, proposedID)
}

// UnknownMapping reports a type mapping that is absent from the registry.
func UnknownMapping(typeID uint64, typ interface{}) *AppError {
	return Newf(CodeUnknownMapping, "type mapping %d -> %v is not registered", typeID, typ)
}

// WrongType reports that typeID resolves to actual instead of expected.
func WrongType(typeID uint64, expected, actual interface{}) *AppError {
	return Newf(CodeWrongType, "type id %d maps to %v, expected %v", typeID, actual, expected)
}

// WrongTypeID reports that typ is registered under actualID instead of expectedID.
func WrongTypeID(typ interface{}, expectedID, actualID uint64) *AppError {
	return Newf(CodeWrongTypeID, "type %v has type id %d, expected %d", typ, actualID, expectedID)
}

// InvalidTypeID reports that id holds something other than a type.
func InvalidTypeID(id uint64, referent interface{}) *AppError {
	return Newf(CodeInvalidTypeID, "id %d refers to %s, not a type", id, describe(referent))
}

// InvalidObject reports a value the registry cannot track.
func InvalidObject(obj interface{}, reason string) *AppError {
	return Newf(CodeInvalidObject, "%s: %s", describe(obj), reason)
}

func describe(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case reflect.Type:
		return "type " + x.String()
	}
	if reflect.ValueOf(v).Kind() == reflect.Pointer {
		return fmt.Sprintf("%T(%p)", v, v)
	}
	return fmt.Sprintf("%T(%v)", v, v)
}

// IsDatabaseError checks if the error is a database error.
func IsDatabaseError(err error) bool {
	return errors.Is(err, ErrDatabaseError)
}

// IsUploadError checks if the error is an upload error.
func IsUploadError(err error) bool {
	return errors.Is(err, ErrUploadError)
}

// IsDownloadError checks if the error is a download error.
func IsDownloadError(err error) bool {
	return errors.Is(err, ErrDownloadError)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if the error is an id or object conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrIDConflict) || errors.Is(err, ErrObjectConflict)
}

// IsConsistencyError checks if the error was raised by type mapping validation.
func IsConsistencyError(err error) bool {
	return errors.Is(err, ErrUnknownMapping) ||
		errors.Is(err, ErrWrongType) ||
		errors.Is(err, ErrWrongTypeID)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
