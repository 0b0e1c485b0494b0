package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

// Request describes an outgoing HTTP request before it is bound to a client.
type Request struct {
	// Method is the HTTP verb (GET, POST, PURGE, ...)
	Method string

	// Path is the absolute target URL
	Path string

	// QueryParams are merged into the query string of the target URL
	QueryParams url.Values

	// Headers are sent as-is; the last value set for a key wins
	Headers map[string]string

	// Body is a string, []byte, io.Reader, or any value that is sent as JSON
	Body interface{}
}

// NewRequest creates a new request for the given method and path.
func NewRequest(method, path string) *Request {
	return &Request{
		Method:      method,
		Path:        path,
		QueryParams: make(url.Values),
		Headers:     make(map[string]string),
	}
}

// WithHeader sets a header on the request.
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// WithHeaders sets every header in the map on the request.
func (r *Request) WithHeaders(headers map[string]string) *Request {
	for key, value := range headers {
		r.Headers[key] = value
	}
	return r
}

// WithQueryValues adds every value in v to the query string.
func (r *Request) WithQueryValues(v url.Values) *Request {
	for key, values := range v {
		for _, value := range values {
			r.QueryParams.Add(key, value)
		}
	}
	return r
}

// WithBody sets the body of the request.
func (r *Request) WithBody(body interface{}) *Request {
	r.Body = body
	return r
}

// URL parses Path, which must be absolute, and appends QueryParams to its
// query string.
func (r *Request) URL() (*url.URL, error) {
	target, err := url.Parse(r.Path)
	if err != nil {
		return nil, errors.Wrap(err, "parse request URL")
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.Newf("request URL %q is not absolute", target.String())
	}

	if len(r.QueryParams) > 0 {
		query := target.Query()
		for key, values := range r.QueryParams {
			for _, value := range values {
				query.Add(key, value)
			}
		}
		target.RawQuery = query.Encode()
	}
	return target, nil
}

// Build constructs an *http.Request from the Request.
func (r *Request) Build() (*http.Request, error) {
	target, err := r.URL()
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if r.Body != nil {
		switch body := r.Body.(type) {
		case string:
			bodyReader = strings.NewReader(body)
		case []byte:
			bodyReader = bytes.NewReader(body)
		case io.Reader:
			bodyReader = body
		default:
			jsonBody, err := json.Marshal(body)
			if err != nil {
				return nil, errors.Wrap(err, "encode JSON body")
			}
			bodyReader = bytes.NewReader(jsonBody)
			if !hasHeader(r.Headers, "Content-Type") {
				r.Headers["Content-Type"] = "application/json"
			}
		}
	}

	req, err := http.NewRequest(r.Method, target.String(), bodyReader)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}
	return req, nil
}

func hasHeader(headers map[string]string, name string) bool {
	for key := range headers {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}
