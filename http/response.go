package http

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// TimingInfo stores how long each phase of a request took.
type TimingInfo struct {
	// StartTime is when the request started
	StartTime time.Time

	// DNSLookupTime is the time spent resolving the host
	DNSLookupTime time.Duration

	// TCPConnectTime is the time spent establishing the TCP connection
	TCPConnectTime time.Duration

	// TLSHandshakeTime is the time spent in the TLS handshake (https only)
	TLSHandshakeTime time.Duration

	// TimeToFirstByte is measured from the end of the last connection phase
	TimeToFirstByte time.Duration

	// ContentTransferTime is the time spent reading the response body
	ContentTransferTime time.Duration

	// TotalTime is the time from request start until the body was read
	TotalTime time.Duration
}

// Response is a fully read HTTP response.
type Response struct {
	// StatusCode is the HTTP status code (e.g., 200, 404, 500)
	StatusCode int

	// Status is the status line without the protocol (e.g., "200 OK")
	Status string

	// Headers contains the response headers
	Headers http.Header

	// Body yields the cached body bytes
	Body io.ReadCloser

	// Timing contains per-phase durations
	Timing TimingInfo

	rawBody []byte
	parsed  bool
}

// NewResponse builds a Response around an already read body.
// It is mostly useful for fakes in tests.
func NewResponse(statusCode int, headers http.Header, body []byte) *Response {
	if headers == nil {
		headers = make(http.Header)
	}
	return &Response{
		StatusCode: statusCode,
		Status:     strconv.Itoa(statusCode) + " " + http.StatusText(statusCode),
		Headers:    headers,
		Body:       io.NopCloser(bytes.NewReader(body)),
		rawBody:    body,
		parsed:     true,
	}
}

// GetBody returns the response body. The body is cached, so this method
// can be called multiple times.
func (r *Response) GetBody() ([]byte, error) {
	if r.parsed {
		return r.rawBody, nil
	}
	if r.Body == nil {
		r.parsed = true
		return nil, nil
	}

	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.rawBody = body
	r.parsed = true
	return body, nil
}

// GetBodyAsString returns the response body as a string.
func (r *Response) GetBodyAsString() (string, error) {
	body, err := r.GetBody()
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetHeader returns the first value of the named header, or "".
func (r *Response) GetHeader(key string) string {
	return r.Headers.Get(key)
}

// Reason returns the reason phrase of the status line, e.g. "Not Found".
// Falls back to the canonical text for the status code.
func (r *Response) Reason() string {
	reason := strings.TrimSpace(strings.TrimPrefix(r.Status, strconv.Itoa(r.StatusCode)))
	if reason == "" {
		return http.StatusText(r.StatusCode)
	}
	return reason
}

// HasJSONBody reports whether Content-Type mentions application/json,
// compared case-insensitively.
func (r *Response) HasJSONBody() bool {
	return strings.Contains(strings.ToLower(r.Headers.Get("Content-Type")), "application/json")
}

// IsSuccess returns true if the response status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsRedirect returns true if the response status code is in the 3xx range.
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// IsClientError returns true if the response status code is in the 4xx range.
func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// IsServerError returns true if the response status code is in the 5xx range.
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode < 600
}

// IsError returns true for 4xx and 5xx responses.
func (r *Response) IsError() bool {
	return r.IsClientError() || r.IsServerError()
}

// TotalMillis returns Timing.TotalTime in milliseconds.
func (r *Response) TotalMillis() int64 {
	return r.Timing.TotalTime.Milliseconds()
}
