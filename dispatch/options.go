package dispatch

import (
	"maps"
	"time"
)

const (
	// DefaultAccept is sent as the Accept header unless overridden.
	DefaultAccept = "application/json"

	// DefaultConnectTimeout bounds the raw connect of a fire-and-forget call.
	DefaultConnectTimeout = 5 * time.Second
)

// Options is the per-call configuration of a dispatch: the base endpoint,
// default headers, Accept type and fire-and-forget mode.
//
// Options is an immutable value. Every With method returns a modified copy,
// so one Options value can be shared between goroutines and reused across
// calls.
type Options struct {
	accept         string
	endpoint       string
	endpointSet    bool
	connectTimeout time.Duration
	fireAndForget  bool
	headers        map[string]string
}

// DefaultOptions returns options with no endpoint, no default headers,
// Accept set to application/json and fire-and-forget disabled.
func DefaultOptions() Options {
	return Options{
		accept:         DefaultAccept,
		connectTimeout: DefaultConnectTimeout,
	}
}

// WithEndpoint sets the base endpoint every call path is appended to.
// An empty string is a valid endpoint and differs from an unset one.
func (o Options) WithEndpoint(base string) Options {
	o.endpoint = base
	o.endpointSet = true
	return o
}

// WithRequestHeaders replaces the default headers.
func (o Options) WithRequestHeaders(headers map[string]string) Options {
	o.headers = maps.Clone(headers)
	return o
}

// WithAccept sets the Accept type added to default headers. An empty value
// stops the Accept header from being added.
func (o Options) WithAccept(accept string) Options {
	o.accept = accept
	return o
}

// WithFireAndForget toggles fire-and-forget mode for POST, PUT and PATCH.
// timeout bounds the raw connect; a non-positive value means the default.
func (o Options) WithFireAndForget(enabled bool, timeout time.Duration) Options {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	o.fireAndForget = enabled
	o.connectTimeout = timeout
	return o
}

// Endpoint returns the base endpoint and whether one was set.
func (o Options) Endpoint() (string, bool) {
	return o.endpoint, o.endpointSet
}

// Accept returns the Accept type.
func (o Options) Accept() string {
	return o.accept
}

// ConnectTimeout returns the connect timeout used by fire-and-forget calls.
func (o Options) ConnectTimeout() time.Duration {
	if o.connectTimeout <= 0 {
		return DefaultConnectTimeout
	}
	return o.connectTimeout
}

// FireAndForget reports whether body-carrying calls skip the response.
func (o Options) FireAndForget() bool {
	return o.fireAndForget
}

// RequestHeaders returns a copy of the default headers.
func (o Options) RequestHeaders() map[string]string {
	if o.headers == nil {
		return map[string]string{}
	}
	return maps.Clone(o.headers)
}

// EffectiveHeaders returns the headers actually sent for a call. Explicit
// call headers are used as they are when non-empty; otherwise the default
// headers are used with Accept added. Accept is never injected into
// explicit headers.
func (o Options) EffectiveHeaders(explicit map[string]string) map[string]string {
	if len(explicit) > 0 {
		return maps.Clone(explicit)
	}

	headers := o.RequestHeaders()
	if o.accept != "" {
		headers["Accept"] = o.accept
	}
	return headers
}

// IsDefault reports whether o carries exactly the DefaultOptions state.
func (o Options) IsDefault() bool {
	return o.accept == DefaultAccept &&
		!o.endpointSet &&
		o.endpoint == "" &&
		o.ConnectTimeout() == DefaultConnectTimeout &&
		!o.fireAndForget &&
		len(o.headers) == 0
}
