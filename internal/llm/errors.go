package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrEmptyResponse is returned when a provider answers without text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Error records a provider failure and whether retrying may help.
type Error struct {
	Provider   string
	StatusCode int
	Transient  bool
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm: %s request failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm: %s request failed: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransient reports whether err is a rate-limit, server-busy or per-call
// timeout condition.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Transient
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// transientText catches providers that only surface status in the message.
func transientText(msg string) bool {
	msg = strings.ToLower(msg)
	for _, marker := range []string{"429", "rate limit", "resource_exhausted", "resource exhausted", "unavailable", "overloaded"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func wrap(provider string, status int, transient bool, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		transient = true
	}
	return &Error{Provider: provider, StatusCode: status, Transient: transient, Err: err}
}
