package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeSchema       ErrorType = "SCHEMA"
	ErrTypeCoercion     ErrorType = "TYPE_COERCION"
	ErrTypeStatistics   ErrorType = "STATISTICS"
	ErrTypeEmptyGroup   ErrorType = "EMPTY_GROUP"
	ErrTypeParsing      ErrorType = "PARSING"
	ErrTypeStorage      ErrorType = "STORAGE"
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
	ErrTypeConfig       ErrorType = "CONFIG"
	ErrTypeNotAvailable ErrorType = "NOT_AVAILABLE"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether any AppError in err's chain has the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	for err != nil {
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Type == errType {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// Helper functions for common error types

// NewSchemaError reports required columns absent from the input.
func NewSchemaError(missing []string) *AppError {
	return NewAppError(ErrTypeSchema,
		fmt.Sprintf("required columns missing: %s", strings.Join(missing, ", ")), nil).
		WithContext("missing_columns", missing)
}

// NewTypeCoercionError reports a cell that could not be parsed as its column type.
func NewTypeCoercionError(column string, row int, value string, cause error) *AppError {
	return NewAppError(ErrTypeCoercion,
		fmt.Sprintf("column %s row %d: cannot parse %q", column, row, value), cause).
		WithContext("column", column).
		WithContext("row", row)
}

// NewStatisticsError reports undefined values reaching a statistic.
func NewStatisticsError(message string) *AppError {
	return NewAppError(ErrTypeStatistics, message, nil)
}

// NewEmptyGroupError reports an argmax over a group with no members.
func NewEmptyGroupError(group string) *AppError {
	return NewAppError(ErrTypeEmptyGroup, fmt.Sprintf("group %q has no members", group), nil).
		WithContext("group", group)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewNotAvailableError reports that no finished analysis is available yet.
func NewNotAvailableError(message string) *AppError {
	return NewAppError(ErrTypeNotAvailable, message, nil)
}
