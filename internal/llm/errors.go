package llm

import (
	"errors"
	"fmt"
)

// Code is the machine-readable reason attached to every error raised by
// this package or the dispatcher.
type Code string

const (
	CodeMissingAPIKey       Code = "MISSING_API_KEY"
	CodeUnsupportedProvider Code = "UNSUPPORTED_PROVIDER"
	CodeMissingUserPrompt   Code = "MISSING_USER_PROMPT"
	CodeProviderError       Code = "PROVIDER_ERROR"
	CodeInvalidResponse     Code = "INVALID_RESPONSE"
	CodeRetriesExhausted    Code = "RETRIES_EXHAUSTED"
	CodeEmptyResponse       Code = "EMPTY_RESPONSE"
	CodeParseError          Code = "PARSE_ERROR"
)

// Kind groups codes by what went wrong.
type Kind int

const (
	KindConfig Kind = iota
	KindTransport
	KindContent
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindTransport:
		return "transport"
	case KindContent:
		return "content"
	default:
		return "unknown"
	}
}

// Kind classifies the code.
func (c Code) Kind() Kind {
	switch c {
	case CodeMissingAPIKey, CodeUnsupportedProvider, CodeMissingUserPrompt:
		return KindConfig
	case CodeEmptyResponse, CodeParseError:
		return KindContent
	default:
		return KindTransport
	}
}

// Source tells whether an error was raised on behalf of a provider or by
// the dispatching wrapper itself.
type Source string

const (
	SourceProvider Source = "provider"
	SourceWrapper  Source = "wrapper"
)

// Error is implemented by every typed error in this package.
type Error interface {
	error
	ErrorCode() Code
	ErrorSource() Source
}

// ProviderError is raised on behalf of a named provider.
type ProviderError struct {
	Provider Name
	Code     Code

	// Status is the last upstream HTTP status, zero when no response was
	// received.
	Status int

	Message string

	// Details carries the upstream body for transport failures, the raw
	// text for EMPTY_RESPONSE, and the cleaned text for PARSE_ERROR.
	Details string

	Err error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Code)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) ErrorCode() Code { return e.Code }

func (e *ProviderError) ErrorSource() Source { return SourceProvider }

// Retryable reports whether the failure is a 5xx upstream response.
func (e *ProviderError) Retryable() bool {
	return e.Code == CodeProviderError && e.Status >= 500 && e.Status < 600
}

// WrapperError is raised by the dispatcher before any provider is called.
type WrapperError struct {
	Code Code

	// Provider is the requested provider name as given by the caller.
	Provider string

	Message string
}

func (e *WrapperError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *WrapperError) ErrorCode() Code { return e.Code }

func (e *WrapperError) ErrorSource() Source { return SourceWrapper }

// AsError extracts the typed error from err's chain.
func AsError(err error) (Error, bool) {
	var e Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code carried by err, or "" when err is untyped.
func CodeOf(err error) Code {
	if e, ok := AsError(err); ok {
		return e.ErrorCode()
	}
	return ""
}

func missingKey(p Name, env string) *ProviderError {
	return &ProviderError{
		Provider: p,
		Code:     CodeMissingAPIKey,
		Message:  fmt.Sprintf("%s is not configured", env),
	}
}
