package dispatch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	nethttp "net/http"

	"github.com/rs/zerolog"

	"github.com/wesleyorama2/restservice/http"
)

// emptyJSONBody is sent when a body-carrying call has no params.
var emptyJSONBody = json.RawMessage("[]")

// Doer sends a request and returns the read response. It reports 4xx and
// 5xx answers as *http.StatusError.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Dispatcher issues verb calls against the endpoint named in each call's
// Options. It keeps no per-call state and is safe for concurrent use.
type Dispatcher struct {
	doer      Doer
	connector Connector
	logger    zerolog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// New creates a Dispatcher. Without options it sends through an
// http.Client with HTTP errors enabled and dials fire-and-forget calls
// with a NetConnector.
func New(options ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		doer:      http.NewClient(http.WithHTTPErrors(true)),
		connector: &NetConnector{},
		logger:    zerolog.Nop(),
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// WithDoer replaces the HTTP client used by synchronous calls.
func WithDoer(doer Doer) DispatcherOption {
	return func(d *Dispatcher) {
		d.doer = doer
	}
}

// WithConnector replaces the raw connector used by fire-and-forget calls.
func WithConnector(connector Connector) DispatcherOption {
	return func(d *Dispatcher) {
		d.connector = connector
	}
}

// WithTLSConfig sets the TLS configuration of the default connector.
func WithTLSConfig(config *tls.Config) DispatcherOption {
	return func(d *Dispatcher) {
		d.connector = &NetConnector{TLSConfig: config}
	}
}

// WithLogger sets the logger. Dispatch events are logged at debug level.
func WithLogger(logger zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// CallOption configures a single verb call.
type CallOption func(*call)

type call struct {
	params       interface{}
	headers      map[string]string
	fullResponse bool
}

// WithParams sets the call params. GET, HEAD, DELETE and PURGE send them
// as the query string; POST, PUT and PATCH send them as the JSON body.
func WithParams(params interface{}) CallOption {
	return func(c *call) {
		c.params = params
	}
}

// WithHeaders sets explicit headers for the call. When non-empty they are
// sent instead of the default headers and no Accept header is added.
func WithHeaders(headers map[string]string) CallOption {
	return func(c *call) {
		c.headers = headers
	}
}

// WithFullResponse returns the whole response instead of its body.
func WithFullResponse() CallOption {
	return func(c *call) {
		c.fullResponse = true
	}
}

// Get sends a GET request.
func (d *Dispatcher) Get(ctx context.Context, opts Options, path string, callOpts ...CallOption) (*Result, error) {
	return d.Dispatch(ctx, nethttp.MethodGet, opts, path, callOpts...)
}

// Head sends a HEAD request.
func (d *Dispatcher) Head(ctx context.Context, opts Options, path string, callOpts ...CallOption) (*Result, error) {
	return d.Dispatch(ctx, nethttp.MethodHead, opts, path, callOpts...)
}

// Delete sends a DELETE request.
func (d *Dispatcher) Delete(ctx context.Context, opts Options, path string, callOpts ...CallOption) (*Result, error) {
	return d.Dispatch(ctx, nethttp.MethodDelete, opts, path, callOpts...)
}

// Purge sends a PURGE request.
func (d *Dispatcher) Purge(ctx context.Context, opts Options, path string, callOpts ...CallOption) (*Result, error) {
	return d.Dispatch(ctx, MethodPurge, opts, path, callOpts...)
}

// Post sends a POST request, or fires it when opts has fire-and-forget set.
func (d *Dispatcher) Post(ctx context.Context, opts Options, path string, callOpts ...CallOption) (*Result, error) {
	return d.Dispatch(ctx, nethttp.MethodPost, opts, path, callOpts...)
}

// Put sends a PUT request, or fires it when opts has fire-and-forget set.
func (d *Dispatcher) Put(ctx context.Context, opts Options, path string, callOpts ...CallOption) (*Result, error) {
	return d.Dispatch(ctx, nethttp.MethodPut, opts, path, callOpts...)
}

// Patch sends a PATCH request, or fires it when opts has fire-and-forget set.
func (d *Dispatcher) Patch(ctx context.Context, opts Options, path string, callOpts ...CallOption) (*Result, error) {
	return d.Dispatch(ctx, nethttp.MethodPatch, opts, path, callOpts...)
}

// Dispatch sends method to the endpoint of opts joined with path.
// Fire-and-forget applies to POST, PUT and PATCH only; every other method
// goes through the HTTP client.
func (d *Dispatcher) Dispatch(ctx context.Context, method string, opts Options, path string, callOpts ...CallOption) (*Result, error) {
	c := &call{}
	for _, option := range callOpts {
		option(c)
	}

	if _, ok := opts.Endpoint(); !ok {
		d.logger.Debug().Str("method", method).Str("path", path).Msg("rejecting call without endpoint")
		return nil, ErrInvalidEndpoint
	}

	desc, err := BuildDescriptor(method, opts, path, c.params, c.headers)
	if err != nil {
		return nil, err
	}

	if desc.HasBody && opts.FireAndForget() {
		return d.fire(ctx, opts, desc)
	}
	return d.send(ctx, desc, c.fullResponse)
}

// send performs desc through the HTTP client and waits for the response.
func (d *Dispatcher) send(ctx context.Context, desc *Descriptor, fullResponse bool) (*Result, error) {
	req := http.NewRequest(desc.Method, desc.URL).
		WithHeaders(desc.Headers).
		WithQueryValues(desc.Query)
	if desc.HasBody {
		req.WithBody(jsonBody(desc.JSON))
	}

	d.logger.Debug().Str("method", desc.Method).Str("url", desc.URL).Msg("sending request")

	resp, err := d.doer.Do(ctx, req)
	if err != nil {
		err = translateError(err)
		d.logger.Debug().Err(err).Str("method", desc.Method).Str("url", desc.URL).Msg("request failed")
		return nil, err
	}

	d.logger.Debug().
		Str("method", desc.Method).
		Str("url", desc.URL).
		Int("status", resp.StatusCode).
		Dur("elapsed", resp.Timing.TotalTime).
		Msg("received response")

	if fullResponse {
		return &Result{Response: resp}, nil
	}

	body, err := unwrapBody(resp)
	if err != nil {
		return nil, translateError(err)
	}
	return &Result{Body: body}, nil
}

// jsonBody returns the value handed to the HTTP client as JSON body.
func jsonBody(params interface{}) interface{} {
	if params == nil {
		return emptyJSONBody
	}
	return params
}
