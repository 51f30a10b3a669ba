// Package providers implements provider-specific adapters for the transport
// layer. Each adapter knows how to build the provider's HTTP request and
// parse its response into the normalized transport shapes.
package providers

import (
	"errors"
	"fmt"
	"net/http"
)

// ProviderOpenAI is the provider name for OpenAI-compatible endpoints.
const ProviderOpenAI = "openai"

// ErrUnsupportedOperation indicates the adapter cannot serve the operation.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// ErrUnknownProvider indicates no adapter is registered for the provider.
var ErrUnknownProvider = errors.New("unknown provider")

// ErrorType classifies provider failures for logging and error handling.
type ErrorType string

const (
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeBadRequest  ErrorType = "bad_request"
	ErrorTypeServer      ErrorType = "server"
	ErrorTypeUnavailable ErrorType = "unavailable"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// ProviderError carries the provider, HTTP status, and classified type of a
// failed provider call. All provider failures within a turn are transport
// errors from the pipeline's perspective and are absorbed or propagated by
// the owning component, never retried.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Code       string
	Type       ErrorType
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
}

// classifyErrorType maps an HTTP status to an error classification.
func classifyErrorType(statusCode int, providerType string) ErrorType {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorTypeAuth
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case statusCode >= 400 && statusCode < 500:
		return ErrorTypeBadRequest
	case statusCode == http.StatusServiceUnavailable:
		return ErrorTypeUnavailable
	case statusCode >= 500:
		return ErrorTypeServer
	case providerType != "":
		return ErrorType(providerType)
	default:
		return ErrorTypeUnknown
	}
}
