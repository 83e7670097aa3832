package llm

import (
	"errors"
	"fmt"
)

// Kind classifies a transform failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindConnectivity
	KindUpstream
	KindContent
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindConnectivity:
		return "connectivity"
	case KindUpstream:
		return "upstream"
	case KindContent:
		return "content"
	default:
		return "unknown"
	}
}

// Error is returned by Client.Transform for every classified failure.
type Error struct {
	Kind       Kind
	Msg        string
	StatusCode int
	Reason     string
	Err        error
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ErrNoEndpoint is returned before any network activity when no endpoint is set.
var ErrNoEndpoint = &Error{Kind: KindConfig, Msg: "LLM API endpoint is not configured"}

func configError(format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Msg: fmt.Sprintf(format, args...)}
}

func connectivityError(err error) *Error {
	return &Error{
		Kind: KindConnectivity,
		Msg:  "Cannot connect to LLM API. Please check your LLM_API_ENDPOINT configuration.",
		Err:  err,
	}
}

func upstreamError(code int, reason string) *Error {
	return &Error{
		Kind:       KindUpstream,
		Msg:        fmt.Sprintf("LLM API error: %d - %s", code, reason),
		StatusCode: code,
		Reason:     reason,
	}
}

func contentError(err error) *Error {
	return &Error{Kind: KindContent, Msg: "Could not extract message from LLM response", Err: err}
}
