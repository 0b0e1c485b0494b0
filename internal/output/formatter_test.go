package output

import (
	nethttp "net/http"
	"net/url"
	"syscall"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/wesleyorama2/restservice/dispatch"
	"github.com/wesleyorama2/restservice/http"
)

func TestFormatter_FormatDescriptor(t *testing.T) {
	formatter := NewFormatter(true, true)

	desc := &dispatch.Descriptor{
		Method:  "GET",
		URL:     "https://test.com/posts",
		Headers: map[string]string{"Accept": "application/json", "auth-token": "123"},
		Query:   url.Values{"page": {"1"}},
	}

	out := formatter.FormatDescriptor(desc)
	assert.Contains(t, out, "REQUEST: GET https://test.com/posts?page=1")
	assert.Contains(t, out, "Accept: application/json")
	assert.Contains(t, out, "auth-token: 123")
	assert.NotContains(t, out, "Body:")
}

func TestFormatter_FormatDescriptorWithBody(t *testing.T) {
	formatter := NewFormatter(false, true)

	desc := &dispatch.Descriptor{
		Method:  "POST",
		URL:     "https://test.com/posts",
		JSON:    map[string]string{"title": "hello"},
		HasBody: true,
	}

	out := formatter.FormatDescriptor(desc)
	assert.Contains(t, out, "REQUEST: POST https://test.com/posts")
	assert.Contains(t, out, "Body: {")
	assert.Contains(t, out, `"title": "hello"`)
}

func TestFormatter_FormatResult(t *testing.T) {
	formatter := NewFormatter(false, true)

	t.Run("fired", func(t *testing.T) {
		out := formatter.FormatResult(&dispatch.Result{Fired: true})
		assert.Contains(t, out, "FIRED")
	})

	t.Run("text body", func(t *testing.T) {
		out := formatter.FormatResult(&dispatch.Result{Body: &dispatch.Body{Kind: dispatch.BodyText, Text: "pong"}})
		assert.Equal(t, "pong\n", out)
	})

	t.Run("json body", func(t *testing.T) {
		out := formatter.FormatResult(&dispatch.Result{Body: &dispatch.Body{Kind: dispatch.BodyJSON, Raw: []byte(`{"id":1}`)}})
		assert.Contains(t, out, `"id": 1`)
	})

	t.Run("full response", func(t *testing.T) {
		headers := nethttp.Header{}
		headers.Set("X-Foo", "Bar")
		resp := http.NewResponse(200, headers, []byte(`{"ok":true}`))

		out := formatter.FormatResult(&dispatch.Result{Response: resp})
		assert.Contains(t, out, "RESPONSE: 200 OK")
		assert.Contains(t, out, "X-Foo: Bar")
		assert.Contains(t, out, `"ok": true`)
		assert.NotContains(t, out, "Timing:")
	})

	t.Run("nil", func(t *testing.T) {
		assert.Empty(t, formatter.FormatResult(nil))
	})
}

func TestFormatter_FormatResponseVerbose(t *testing.T) {
	formatter := NewFormatter(true, true)
	out := formatter.FormatResponse(http.NewResponse(404, nil, nil))

	assert.Contains(t, out, "RESPONSE: 404 Not Found")
	assert.Contains(t, out, "Timing:")
	assert.Contains(t, out, "Time to First Byte:")
}

func TestFormatter_FormatError(t *testing.T) {
	formatter := NewFormatter(false, true)

	t.Run("response error", func(t *testing.T) {
		err := &dispatch.ResponseError{
			StatusCode: 404,
			Reason:     "Not Found",
			Response:   http.NewResponse(404, nil, []byte(`{"error":"missing"}`)),
		}
		out := formatter.FormatError(err)
		assert.Contains(t, out, "✗ HTTP 404 Not Found")
		assert.Contains(t, out, `"error": "missing"`)
	})

	t.Run("socket error", func(t *testing.T) {
		err := &dispatch.SocketError{Addr: "test.com:443", Message: "connection refused", Errno: int(syscall.ECONNREFUSED)}
		out := formatter.FormatError(err)
		assert.Contains(t, out, "socket error: socket test.com:443: connection refused")
		assert.Contains(t, out, "errno")
	})

	t.Run("transport error", func(t *testing.T) {
		out := formatter.FormatError(&dispatch.TransportError{Message: "no such host"})
		assert.Contains(t, out, "transport error: no such host")
		assert.NotContains(t, out, "code")
	})

	t.Run("sentinel", func(t *testing.T) {
		out := formatter.FormatError(errors.Wrap(dispatch.ErrInvalidEndpoint, "get"))
		assert.Contains(t, out, "invalid null endpoint")
	})
}
