package relay

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks failures to reach the flow or a non-2xx answer from it.
	ErrTransport = errors.New("transport error")
	// ErrParse marks a response that is not JSON or whose reply path is malformed.
	ErrParse = errors.New("parse error")
)

// Error is returned by Client.Send for every failed relay call.
type Error struct {
	Kind  error
	Cause error
}

func (e *Error) Error() string {
	prefix := "Error making API request"
	if e.Kind == ErrParse {
		prefix = "Error parsing response"
	}
	if e.Cause == nil {
		return prefix
	}
	return fmt.Sprintf("%s: %v", prefix, e.Cause)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}

func transportError(cause error) error {
	return &Error{Kind: ErrTransport, Cause: cause}
}

func parseError(cause error) error {
	return &Error{Kind: ErrParse, Cause: cause}
}

// StatusError reports a non-2xx answer from the flow.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s for url: %s", e.Status, e.URL)
}
