// Package apperrors defines application-level error types.
package apperrors

import (
	"fmt"
)

// ConfigurationError indicates a settings, input or flag problem the user must fix.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}

// NoInputError indicates the input folder holds no policy documents.
type NoInputError struct {
	Folder string
}

func (e *NoInputError) Error() string {
	return fmt.Sprintf("no XML files found in input folder %s", e.Folder)
}

// NewNoInputError creates a new no-input error.
func NewNoInputError(folder string) *NoInputError {
	return &NoInputError{Folder: folder}
}

// AuthenticationError indicates an access token could not be acquired.
type AuthenticationError struct {
	Cause   error
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// NewAuthenticationError creates a new authentication error.
func NewAuthenticationError(message string, cause error) *AuthenticationError {
	return &AuthenticationError{
		Message: message,
		Cause:   cause,
	}
}

// TransportError indicates an upload was rejected by the remote API or failed in transit.
// StatusCode is zero when no response was received.
type TransportError struct {
	Cause      error
	DocumentID string
	Body       string
	StatusCode int
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("upload of %s failed with status %d: %s", e.DocumentID, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("upload of %s failed with status %d", e.DocumentID, e.StatusCode)
	default:
		return fmt.Sprintf("upload of %s failed: %v", e.DocumentID, e.Cause)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// NewTransportError creates a transport error for a rejected response.
func NewTransportError(documentID string, statusCode int, body string) *TransportError {
	return &TransportError{
		DocumentID: documentID,
		StatusCode: statusCode,
		Body:       body,
	}
}

// NewTransportFailure creates a transport error for a request that never got a response.
func NewTransportFailure(documentID string, cause error) *TransportError {
	return &TransportError{
		DocumentID: documentID,
		Cause:      cause,
	}
}

// ExecutionError indicates a deployment plan stopped at a document.
type ExecutionError struct {
	Cause      error
	DocumentID string
	Message    string
}

func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("execution failed for policy %s: %s: %v", e.DocumentID, e.Message, e.Cause)
	}
	return fmt.Sprintf("execution failed for policy %s: %s", e.DocumentID, e.Message)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// NewExecutionError creates a new execution error.
func NewExecutionError(documentID, message string, cause error) *ExecutionError {
	return &ExecutionError{
		DocumentID: documentID,
		Message:    message,
		Cause:      cause,
	}
}
