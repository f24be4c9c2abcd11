package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors
var (
	ErrInvalidState  = errors.New("invalid assessment state")
	ErrInvalidModule = errors.New("invalid module definition")
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("response validation failed")
)

// APIError represents a standardized error response for the HTTP and MCP surfaces
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   []string  `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	CodeInvalidInput   = "INVALID_INPUT"
	CodeValidation     = "VALIDATION_FAILED"
	CodeInvalidState   = "INVALID_STATE"
	CodeNotFound       = "NOT_FOUND"
	CodeStorageError   = "STORAGE_ERROR"
	CodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	CodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message string, details []string, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// ValidationFailedError is returned when a response set does not satisfy a module's
// question contracts. It carries one message per violation.
type ValidationFailedError struct {
	ModuleID string   `json:"module_id"`
	Errors   []string `json:"errors"`
}

// Error implements the error interface
func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed for module %s: %s", e.ModuleID, strings.Join(e.Errors, "; "))
}

// Unwrap allows errors.Is(err, ErrValidation).
func (e *ValidationFailedError) Unwrap() error {
	return ErrValidation
}

// StateError reports an operation invoked in the wrong administrator state.
type StateError struct {
	Operation string
	State     string
}

// Error implements the error interface
func (e *StateError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Operation, e.State)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

// ModuleError describes why a catalog module definition was rejected.
type ModuleError struct {
	ModuleID string
	Field    string
	Message  string
}

// Error implements the error interface
func (e *ModuleError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("module %q: %s", e.ModuleID, e.Message)
	}
	return fmt.Sprintf("module %q: %s: %s", e.ModuleID, e.Field, e.Message)
}

func (e *ModuleError) Unwrap() error {
	return ErrInvalidModule
}

func newModuleError(moduleID, field, format string, args ...any) *ModuleError {
	return &ModuleError{ModuleID: moduleID, Field: field, Message: fmt.Sprintf(format, args...)}
}
