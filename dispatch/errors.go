package dispatch

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/wesleyorama2/restservice/http"
)

var (
	// ErrInvalidEndpoint is returned when a call is dispatched before an
	// endpoint was set. No network activity happens in that case.
	ErrInvalidEndpoint = errors.New("invalid null endpoint")

	// ErrInvalidParams is returned when query params have an unsupported type.
	ErrInvalidParams = errors.New("invalid params")
)

// ResponseError is returned when the server answered with a 4xx or 5xx status.
type ResponseError struct {
	StatusCode int
	Reason     string

	// Response holds the full response, body included.
	Response *http.Response
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%d %s", e.StatusCode, e.Reason)
}

// TransportError wraps any other failure of the synchronous path: DNS,
// refused connections, timeouts, body encoding. Code is the system error
// number when one is known, 0 otherwise.
type TransportError struct {
	Message string
	Code    int
	Err     error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SocketError is returned by fire-and-forget calls when the raw connection
// cannot be opened or written.
type SocketError struct {
	Addr    string
	Message string
	Errno   int
	Err     error
}

func (e *SocketError) Error() string {
	return fmt.Sprintf("socket %s: %s", e.Addr, e.Message)
}

func (e *SocketError) Unwrap() error {
	return e.Err
}

// translateError maps an error from the HTTP client to the dispatch error kinds.
func translateError(err error) error {
	var statusErr *http.StatusError
	if errors.As(err, &statusErr) {
		return &ResponseError{
			StatusCode: statusErr.Response.StatusCode,
			Reason:     statusErr.Response.Reason(),
			Response:   statusErr.Response,
		}
	}
	return &TransportError{
		Message: err.Error(),
		Code:    errnoOf(err),
		Err:     err,
	}
}

// errnoOf extracts a system error number from err. Timeouts without an
// errno report ETIMEDOUT.
func errnoOf(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return int(syscall.ETIMEDOUT)
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return int(syscall.ETIMEDOUT)
	}
	return 0
}
