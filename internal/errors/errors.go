// Package errors provides the error types shared by the EVA Wiki client and the
// tool surface. Every failure belongs to exactly one Kind so the tool boundary
// can handle it exhaustively.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnknown is returned for errors not produced by this module.
	KindUnknown Kind = iota
	// KindConfig means required configuration is missing or invalid.
	KindConfig
	// KindTransport means the HTTP exchange itself failed.
	KindTransport
	// KindRemote means the EVA API answered with an error object.
	KindRemote
	// KindUserInput means a tool argument was malformed or referenced a missing entity.
	KindUserInput
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindTransport:
		return "transport"
	case KindRemote:
		return "remote"
	case KindUserInput:
		return "user_input"
	default:
		return "unknown"
	}
}

// ConfigError indicates a required setting is missing at startup.
type ConfigError struct {
	Setting string // environment variable or config key
	Message string
}

func (e *ConfigError) Error() string {
	if e.Setting != "" {
		return fmt.Sprintf("configuration error: %s %s", e.Setting, e.Message)
	}
	return "configuration error: " + e.Message
}

// TransportError indicates an HTTP-level failure: bad status, connection
// failure or timeout. StatusCode is 0 when no response was received.
type TransportError struct {
	Method     string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("EVA transport error in %s: HTTP %d: %s", e.Method, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("EVA transport error in %s: HTTP %d", e.Method, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("EVA transport error in %s: %v", e.Method, e.Err)
	default:
		return fmt.Sprintf("EVA transport error in %s", e.Method)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is the normalized form of an `error` object returned by the EVA API.
// Code is whatever scalar the remote supplied (usually a number).
type APIError struct {
	Method  string
	Code    any
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EVA API error in %s: %v %s", e.Method, e.Code, e.Message)
}

// NewAPIError creates an APIError for a failed remote call.
func NewAPIError(method string, code any, message string) *APIError {
	return &APIError{
		Method:  method,
		Code:    code,
		Message: message,
	}
}

// NotFoundError indicates a lookup step found no matching entity.
type NotFoundError struct {
	EntityType string // "document", "user"
	Identifier string // document code, login
}

func (e *NotFoundError) Error() string {
	if e.EntityType != "" {
		return fmt.Sprintf("%s with code %s not found", capitalize(e.EntityType), e.Identifier)
	}
	return fmt.Sprintf("not found: %s", e.Identifier)
}

// NewNotFoundError creates a NotFoundError for a document lookup.
func NewNotFoundError(code string) *NotFoundError {
	return &NotFoundError{
		EntityType: "document",
		Identifier: code,
	}
}

// ValidationError indicates invalid input parameters.
type ValidationError struct {
	Field   string // parameter name that failed validation
	Value   string // the invalid value (may be empty)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// KindOf classifies err, looking through wrapping.
func KindOf(err error) Kind {
	var (
		configErr     *ConfigError
		transportErr  *TransportError
		apiErr        *APIError
		notFoundErr   *NotFoundError
		validationErr *ValidationError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &configErr):
		return KindConfig
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &apiErr):
		return KindRemote
	case errors.As(err, &notFoundErr), errors.As(err, &validationErr):
		return KindUserInput
	default:
		return KindUnknown
	}
}

// IsNotFound returns true if err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
