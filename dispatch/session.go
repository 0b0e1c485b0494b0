package dispatch

import (
	"context"
	nethttp "net/http"
	"time"
)

// Session is a configure-then-call front end to a Dispatcher. Setters
// change the session's Options; a successful call resets them to
// DefaultOptions, so the endpoint and headers have to be set again before
// the next call. A failed call leaves them as they were.
//
// A Session is not safe for concurrent use. Use one session per in-flight
// request, or pass Options to the Dispatcher directly.
type Session struct {
	dispatcher *Dispatcher
	opts       Options
}

// NewSession returns a session with default options.
func NewSession(d *Dispatcher) *Session {
	return &Session{dispatcher: d, opts: DefaultOptions()}
}

// SetEndpoint sets the base endpoint for the next call.
func (s *Session) SetEndpoint(base string) *Session {
	s.opts = s.opts.WithEndpoint(base)
	return s
}

// SetRequestHeaders replaces the default headers for the next call.
func (s *Session) SetRequestHeaders(headers map[string]string) *Session {
	s.opts = s.opts.WithRequestHeaders(headers)
	return s
}

// SetIsFireAndForget toggles fire-and-forget for the next call.
func (s *Session) SetIsFireAndForget(enabled bool, timeout time.Duration) *Session {
	s.opts = s.opts.WithFireAndForget(enabled, timeout)
	return s
}

// Options returns the options the next call will use.
func (s *Session) Options() Options {
	return s.opts
}

// Reset restores the default options.
func (s *Session) Reset() {
	s.opts = DefaultOptions()
}

// Get sends a GET request.
func (s *Session) Get(ctx context.Context, path string, callOpts ...CallOption) (*Result, error) {
	return s.Dispatch(ctx, nethttp.MethodGet, path, callOpts...)
}

// Head sends a HEAD request.
func (s *Session) Head(ctx context.Context, path string, callOpts ...CallOption) (*Result, error) {
	return s.Dispatch(ctx, nethttp.MethodHead, path, callOpts...)
}

// Delete sends a DELETE request.
func (s *Session) Delete(ctx context.Context, path string, callOpts ...CallOption) (*Result, error) {
	return s.Dispatch(ctx, nethttp.MethodDelete, path, callOpts...)
}

// Purge sends a PURGE request.
func (s *Session) Purge(ctx context.Context, path string, callOpts ...CallOption) (*Result, error) {
	return s.Dispatch(ctx, MethodPurge, path, callOpts...)
}

// Post sends or fires a POST request.
func (s *Session) Post(ctx context.Context, path string, callOpts ...CallOption) (*Result, error) {
	return s.Dispatch(ctx, nethttp.MethodPost, path, callOpts...)
}

// Put sends or fires a PUT request.
func (s *Session) Put(ctx context.Context, path string, callOpts ...CallOption) (*Result, error) {
	return s.Dispatch(ctx, nethttp.MethodPut, path, callOpts...)
}

// Patch sends or fires a PATCH request.
func (s *Session) Patch(ctx context.Context, path string, callOpts ...CallOption) (*Result, error) {
	return s.Dispatch(ctx, nethttp.MethodPatch, path, callOpts...)
}

// Dispatch sends method with the current options and resets them on success.
func (s *Session) Dispatch(ctx context.Context, method, path string, callOpts ...CallOption) (*Result, error) {
	result, err := s.dispatcher.Dispatch(ctx, method, s.opts, path, callOpts...)
	if err != nil {
		return nil, err
	}
	s.Reset()
	return result, nil
}
