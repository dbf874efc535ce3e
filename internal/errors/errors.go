// Package errors provides the error taxonomy for D&D 5e tool calls.
// Each type renders exactly the text handed back to the MCP host.
package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// UnknownToolError indicates a call named a tool outside the declared set.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return "Unknown tool: " + e.Name
}

// NewUnknownToolError creates an UnknownToolError.
func NewUnknownToolError(name string) *UnknownToolError {
	return &UnknownToolError{Name: name}
}

// APIError indicates the remote service answered with a non-success status.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d - %s", e.StatusCode, BodyText(e.Body))
}

// NewAPIError creates an APIError.
func NewAPIError(statusCode int, body []byte) *APIError {
	return &APIError{StatusCode: statusCode, Body: body}
}

// TransportError indicates no response was obtained (DNS, connection, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "Request failed: unknown error"
	}
	return "Request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError wrapping err.
func NewTransportError(err error) *TransportError {
	return &TransportError{Err: err}
}

// ValidationError indicates arguments that cannot be turned into a request path.
type ValidationError struct {
	Tool    string // tool being invoked
	Field   string // argument name, empty when the whole argument object is bad
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	prefix := "Invalid arguments"
	if e.Tool != "" {
		prefix += " for " + e.Tool
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s %s", prefix, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(tool, field, message string) *ValidationError {
	return &ValidationError{
		Tool:    tool,
		Field:   field,
		Message: message,
	}
}

// IsUnknownTool returns true if err is or wraps an UnknownToolError.
func IsUnknownTool(err error) bool {
	var target *UnknownToolError
	return errors.As(err, &target)
}

// IsAPIError returns true if err is or wraps an APIError.
func IsAPIError(err error) bool {
	var target *APIError
	return errors.As(err, &target)
}

// IsTransport returns true if err is or wraps a TransportError.
func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// Code returns a short label for err, used as a metrics dimension.
func Code(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return fmt.Sprintf("http_%d", apiErr.StatusCode)
	case IsTransport(err):
		return "transport"
	case IsValidation(err):
		return "validation"
	case IsUnknownTool(err):
		return "unknown_tool"
	default:
		return "internal"
	}
}

// BodyText renders an upstream body on a single line. JSON bodies are
// compacted; anything else becomes a JSON string literal of the raw text.
func BodyText(body []byte) string {
	if json.Valid(body) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, body); err == nil {
			return buf.String()
		}
	}
	return QuoteText(string(body))
}

// QuoteText renders s as a JSON string literal without HTML escaping.
func QuoteText(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Sprintf("%q", s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
