// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for Mealmesh.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies Mealmesh errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeConfiguration indicates a required credential or address is missing.
	// Fatal at startup, never retried.
	CodeConfiguration ErrorCode = "CONFIGURATION_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeUnreachable indicates a remote agent endpoint could not be contacted.
	CodeUnreachable ErrorCode = "ENDPOINT_UNREACHABLE"

	// CodeInvalidCard indicates a remote agent returned a malformed capability card.
	CodeInvalidCard ErrorCode = "CAPABILITY_CARD_INVALID"

	// CodeTransport indicates a remote call failed at the network layer.
	CodeTransport ErrorCode = "REMOTE_CALL_TRANSPORT_ERROR"

	// CodeTimeout indicates a remote call exceeded its time budget.
	CodeTimeout ErrorCode = "REMOTE_CALL_TIMEOUT"

	// CodeUpstreamProvider indicates an upstream provider (e.g. the mapping
	// service) answered without usable data.
	CodeUpstreamProvider ErrorCode = "UPSTREAM_PROVIDER_ERROR"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"
)

// MeshError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type MeshError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Attributes  map[string]string
	Recoverable bool
	StatusCode  int // For A2A/HTTP responses
}

// Error implements the error interface.
func (e *MeshError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *MeshError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *MeshError) MarshalJSON() ([]byte, error) {
	type Alias MeshError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new MeshError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *MeshError {
	return &MeshError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]interface{}),
		Attributes: make(map[string]string),
		StatusCode: codeToStatusCode(code),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *MeshError) WithContext(key string, value interface{}) *MeshError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithAttribute adds a string attribute for OTEL traces.
// Returns the error for method chaining.
func (e *MeshError) WithAttribute(key, value string) *MeshError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *MeshError) WithRecoverable(recoverable bool) *MeshError {
	e.Recoverable = recoverable
	return e
}

// AsMeshError attempts to convert an error to a MeshError.
// Returns the error as MeshError if it is one, or wraps it otherwise.
func AsMeshError(err error) *MeshError {
	if err == nil {
		return nil
	}
	if me, ok := err.(*MeshError); ok {
		return me
	}
	// Wrap unknown error as internal
	return New(CodeInternal, "wrapped error", err)
}

// IsCode reports whether err is a MeshError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	me, ok := err.(*MeshError)
	return ok && me.Code == code
}

// RecoverableString returns "true" or "false" as a string for observability.
func (e *MeshError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}

// codeToStatusCode maps error codes to HTTP status codes.
func codeToStatusCode(code ErrorCode) int {
	switch code {
	case CodeNotFound:
		return 404 // NOT_FOUND
	case CodeInvalidInput, CodeInvalidCard:
		return 400 // INVALID_ARGUMENT
	case CodeTimeout:
		return 408 // DEADLINE_EXCEEDED
	case CodeUnreachable, CodeTransport, CodeUpstreamProvider:
		return 502 // BAD_GATEWAY
	default:
		return 500 // INTERNAL
	}
}
