// Package errors provides domain-specific errors for the progsync engine.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common domain error conditions.
var (
	ErrDependencyNotSynced = errors.New("parent entity not synced")
	ErrUnknownEntityType   = errors.New("unknown entity type")
	ErrUnknownOperation    = errors.New("unknown operation")
	ErrUnknownRemoteKind   = errors.New("unknown remote entity kind")
	ErrRemoteCall          = errors.New("remote call failed")
	ErrCollectionMissing   = errors.New("remote collection missing")
	ErrDrainInProgress     = errors.New("drain already in progress")
	ErrTaskNotFound        = errors.New("sync task not found")
	ErrEntityNotFound      = errors.New("entity not found")
	ErrTaskImmutable       = errors.New("completed task is immutable")
	ErrNotConfigured       = errors.New("remote sync not configured")
)

// ErrorCode categorizes errors for handling and reporting.
type ErrorCode string

const (
	CodeDependency ErrorCode = "DEPENDENCY"
	CodeMapping    ErrorCode = "MAPPING"
	CodeRemote     ErrorCode = "REMOTE"
	CodeStorage    ErrorCode = "STORAGE"
	CodeConfig     ErrorCode = "CONFIG"
)

// SyncError wraps errors with additional context for debugging and handling.
type SyncError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error returns a formatted error string including the code, message, and cause if present.
func (e *SyncError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for use with errors.Is and errors.As.
func (e *SyncError) Unwrap() error {
	return e.Cause
}

// NewError creates a new SyncError with the given code, message, and optional cause.
func NewError(code ErrorCode, message string, cause error) *SyncError {
	return &SyncError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds a key-value pair to the error's context and returns the error.
// This allows for method chaining when adding multiple context values.
func WithContext(err *SyncError, key string, value interface{}) *SyncError {
	if err.Context == nil {
		err.Context = make(map[string]interface{})
	}
	err.Context[key] = value
	return err
}
