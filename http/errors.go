package http

import "fmt"

// StatusError is returned by Client.Do for 4xx and 5xx responses when the
// client was created with WithHTTPErrors(true). The response body has
// already been read and remains available.
type StatusError struct {
	Method   string
	URL      string
	Response *Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Response.Status)
}

// IsClientError reports whether the status is in the 4xx range.
func (e *StatusError) IsClientError() bool {
	return e.Response.IsClientError()
}
