// Error types and handling
package llm

import (
	"errors"
	"fmt"
)

// Error types. Every error returned by an adapter is an *Error with one of
// these types.
const (
	// ErrorTypeConfiguration marks bad or missing settings. Raised while
	// building a configuration or an adapter, never during a call.
	ErrorTypeConfiguration = "configuration_error"
	// ErrorTypeProvider marks any failure coming from the vendor transport.
	// The vendor error is kept in Err.
	ErrorTypeProvider = "provider_error"
	// ErrorTypeResponseParsing marks tool-call arguments that are not valid
	// JSON even after repair.
	ErrorTypeResponseParsing = "response_parsing_error"
	// ErrorTypeValidation marks caller input that breaks a precondition.
	ErrorTypeValidation = "validation_error"
)

// Error represents a standardized LLM error
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	StatusCode int    `json:"status_code,omitempty"`
	Provider   string `json:"provider,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`

	// Err is the underlying cause, usually the vendor SDK error.
	Err error `json:"-"`
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return e.Provider + ": " + e.Message
	}
	return e.Message
}

// Unwrap exposes the underlying vendor error to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Type:    ErrorTypeConfiguration,
	}
}

// NewValidationError creates an error for caller input that breaks a
// precondition
func NewValidationError(code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Type:    ErrorTypeValidation,
	}
}

// NewProviderError wraps a vendor error. The status code is the HTTP status
// reported by the vendor, or 0 when unknown.
func NewProviderError(provider string, statusCode int, err error) *Error {
	var existing *Error
	if errors.As(err, &existing) && existing.Type == ErrorTypeProvider {
		return existing
	}
	return &Error{
		Code:       providerErrorCode(statusCode),
		Message:    err.Error(),
		Type:       ErrorTypeProvider,
		StatusCode: statusCode,
		Provider:   provider,
		Err:        err,
	}
}

// NewResponseParsingError reports tool-call arguments that could not be parsed
func NewResponseParsingError(toolName string, err error) *Error {
	return &Error{
		Code:     "invalid_tool_arguments",
		Message:  fmt.Sprintf("tool call %q: arguments are not valid JSON: %v", toolName, err),
		Type:     ErrorTypeResponseParsing,
		ToolName: toolName,
		Err:      err,
	}
}

func providerErrorCode(statusCode int) string {
	switch {
	case statusCode == 401 || statusCode == 403:
		return "authentication_error"
	case statusCode == 404:
		return "not_found"
	case statusCode == 408:
		return "timeout_error"
	case statusCode == 429:
		return "rate_limit_error"
	case statusCode >= 500:
		return "server_error"
	case statusCode >= 400:
		return "invalid_request"
	}
	return "api_error"
}

// IsConfigurationError reports whether err is a configuration error
func IsConfigurationError(err error) bool {
	return hasType(err, ErrorTypeConfiguration)
}

// IsProviderError reports whether err came from a vendor call
func IsProviderError(err error) bool {
	return hasType(err, ErrorTypeProvider)
}

// IsResponseParsingError reports whether err is a tool-argument parsing error
func IsResponseParsingError(err error) bool {
	return hasType(err, ErrorTypeResponseParsing)
}

func hasType(err error, typ string) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == typ
}
