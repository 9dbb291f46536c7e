package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a failed backend call.
type Kind string

const (
	// KindNoSession means no bearer token was available; no request was made.
	KindNoSession    Kind = "no_session"
	KindTransport    Kind = "transport"
	KindCanceled     Kind = "canceled"
	KindUnauthorized Kind = "unauthorized"
	KindStatus       Kind = "status"
	KindDecode       Kind = "decode"
)

// ErrNoSession is wrapped by every FetchError of kind KindNoSession.
var ErrNoSession = errors.New("no session token")

// FetchError describes a failed call to one backend endpoint.
type FetchError struct {
	Endpoint   string
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s: %s", e.Endpoint, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for error chain inspection
func (e *FetchError) Unwrap() error {
	return e.Err
}

func newFetchError(endpoint string, kind Kind, status int, msg string, err error) *FetchError {
	return &FetchError{Endpoint: endpoint, Kind: kind, StatusCode: status, Message: msg, Err: err}
}

// IsUnauthorized reports whether err is a rejected or missing credential.
func IsUnauthorized(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind == KindUnauthorized || fe.Kind == KindNoSession
	}
	return false
}
