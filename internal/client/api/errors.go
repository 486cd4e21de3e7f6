package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels matched with errors.Is against any *Error.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("server unavailable")
	ErrRejected     = errors.New("request rejected")
	ErrUnexpected   = errors.New("unexpected response")
)

// Kind classifies a failure for propagation.
type Kind int

const (
	// KindAuthorization is a 401 that the refresh protocol could not fix.
	KindAuthorization Kind = iota + 1
	// KindBusiness is a server answer with success=false or a non-2xx status.
	KindBusiness
	// KindNetwork means no response reached the client: connection errors,
	// timeouts, cancellation.
	KindNetwork
	// KindUnexpected is a response that could not be understood.
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindBusiness:
		return "business"
	case KindNetwork:
		return "network"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Error is the structured failure returned by Client.Do.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status; 0 when no response was received
	Message string // server-provided message, if any
	Method  string
	Path    string
	Err     error
}

func (e *Error) Error() string {
	var detail string
	switch {
	case e.Message != "":
		detail = e.Message
	case e.Err != nil:
		detail = e.Err.Error()
	default:
		detail = http.StatusText(e.Status)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %s error (%d): %s", e.Method, e.Path, e.Kind, e.Status, detail)
	}
	return fmt.Sprintf("%s %s: %s error: %s", e.Method, e.Path, e.Kind, detail)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Kind == KindAuthorization
	case ErrUnavailable:
		return e.Kind == KindNetwork
	case ErrRejected:
		return e.Kind == KindBusiness
	case ErrUnexpected:
		return e.Kind == KindUnexpected
	}
	return false
}

// NoResponse reports whether the request never got an answer.
func (e *Error) NoResponse() bool { return e.Kind == KindNetwork }

// StatusOf extracts the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// MessageOf returns the server message carried by err, falling back to
// err.Error().
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
