package core

import (
	"errors"
	"fmt"
)

// Error is the tagged error type used across the app.
type Error struct {
	Type          ErrorType `json:"type"`
	Message       string    `json:"message"`
	Code          string    `json:"code,omitempty"`
	ProviderError any       `json:"provider_error,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code: %s)", e.Type, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorType categorizes errors.
type ErrorType string

const (
	// ErrConfig covers missing or invalid configuration, such as an absent API key.
	ErrConfig ErrorType = "config_error"
	// ErrMediaAccess covers microphone/camera acquisition failures.
	ErrMediaAccess ErrorType = "media_access_error"
	// ErrSession covers live session connect and protocol failures.
	ErrSession ErrorType = "session_error"
	// ErrFileProcess covers failures reading or encoding an attached file.
	ErrFileProcess ErrorType = "file_process_error"
	// ErrAPI covers everything the Gemini API returns as an error.
	ErrAPI ErrorType = "api_error"
)

// NewConfigError creates a configuration error.
func NewConfigError(message string) *Error {
	return &Error{
		Type:    ErrConfig,
		Message: message,
	}
}

// NewMediaAccessError creates a media access error.
func NewMediaAccessError(message string, underlying error) *Error {
	e := &Error{
		Type:    ErrMediaAccess,
		Message: message,
	}
	if underlying != nil {
		e.ProviderError = underlying
	}
	return e
}

// NewSessionError creates a live session error.
func NewSessionError(message string) *Error {
	return &Error{
		Type:    ErrSession,
		Message: message,
	}
}

// NewFileProcessError creates a file processing error.
func NewFileProcessError(message string) *Error {
	return &Error{
		Type:    ErrFileProcess,
		Message: message,
	}
}

// NewAPIError creates a generic API error.
func NewAPIError(message string) *Error {
	return &Error{
		Type:    ErrAPI,
		Message: message,
	}
}

// IsRetryable returns true if the error is worth retrying.
func (e *Error) IsRetryable() bool {
	return e.Type == ErrAPI
}

// Unwrap returns the underlying error for error wrapping.
func (e *Error) Unwrap() error {
	if ue, ok := e.ProviderError.(error); ok {
		return ue
	}
	return nil
}

// IsType reports whether err is (or wraps) an *Error of the given type.
func IsType(err error, t ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool { return IsType(err, ErrConfig) }

// IsMediaAccessError reports whether err is a media access error.
func IsMediaAccessError(err error) bool { return IsType(err, ErrMediaAccess) }

// IsSessionError reports whether err is a live session error.
func IsSessionError(err error) bool { return IsType(err, ErrSession) }

// IsFileProcessError reports whether err is a file processing error.
func IsFileProcessError(err error) bool { return IsType(err, ErrFileProcess) }

// IsAPIError reports whether err is an API error.
func IsAPIError(err error) bool { return IsType(err, ErrAPI) }
