package llm

import (
	"errors"
	"fmt"
)

// Kind classifies upstream failures.
type Kind int

const (
	KindAPI Kind = iota
	KindAuthentication
	KindRateLimit
	KindModelNotSupported
	KindNetwork
	KindInvalidSchema
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindRateLimit:
		return "rate_limit"
	case KindModelNotSupported:
		return "model_not_supported"
	case KindNetwork:
		return "network"
	case KindInvalidSchema:
		return "invalid_schema"
	default:
		return "api"
	}
}

const (
	CodeAuthentication  = "authentication_error"
	CodeRateLimit       = "rate_limit_error"
	CodeModelNotFound   = "model_not_found"
	CodeNetwork         = "network_error"
	CodeInvalidSchema   = "invalid_schema"
	CodeInvalidResponse = "invalid_response"
)

// Error is returned for every failure the upstream API reports, and for
// responses that fail local validation. StatusCode is the status callers
// should surface, which is not always the upstream one.
type Error struct {
	Kind       Kind
	Code       string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("openrouter %s (%d): %s: %v", e.Code, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("openrouter %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether SendChat may try again after this error.
func (e *Error) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindRateLimit
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr, true
	}
	return nil, false
}

func authenticationError(msg string) *Error {
	return &Error{Kind: KindAuthentication, Code: CodeAuthentication, StatusCode: 401, Message: msg}
}

func rateLimitError(msg string) *Error {
	return &Error{Kind: KindRateLimit, Code: CodeRateLimit, StatusCode: 429, Message: msg}
}

func modelNotSupportedError(msg string) *Error {
	return &Error{Kind: KindModelNotSupported, Code: CodeModelNotFound, StatusCode: 404, Message: msg}
}

func networkError(msg string, err error) *Error {
	return &Error{Kind: KindNetwork, Code: CodeNetwork, StatusCode: 503, Message: msg, Err: err}
}

func invalidSchemaError(msg string, err error) *Error {
	return &Error{Kind: KindInvalidSchema, Code: CodeInvalidSchema, StatusCode: 422, Message: msg, Err: err}
}
