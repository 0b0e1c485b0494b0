package http

import (
	"io"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Build(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		path        string
		query       url.Values
		body        interface{}
		expectedURL string
	}{
		{
			name:        "absolute URL",
			method:      "GET",
			path:        "https://test.com/posts",
			expectedURL: "https://test.com/posts",
		},
		{
			name:        "repeated query values",
			method:      "GET",
			path:        "https://api.example.com/users",
			query:       url.Values{"tag": {"a", "b"}},
			expectedURL: "https://api.example.com/users?tag=a&tag=b",
		},
		{
			name:        "query merged with existing query",
			method:      "DELETE",
			path:        "https://api.example.com/users?force=1",
			query:       url.Values{"page": {"2"}},
			expectedURL: "https://api.example.com/users?force=1&page=2",
		},
		{
			name:        "JSON body",
			method:      "POST",
			path:        "https://api.example.com/users",
			body:        map[string]string{"name": "John"},
			expectedURL: "https://api.example.com/users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest(tt.method, tt.path).WithQueryValues(tt.query)
			if tt.body != nil {
				req.WithBody(tt.body)
			}

			httpReq, err := req.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.method, httpReq.Method)
			assert.Equal(t, tt.expectedURL, httpReq.URL.String())

			if tt.body != nil {
				assert.Equal(t, "application/json", httpReq.Header.Get("Content-Type"))
				data, err := io.ReadAll(httpReq.Body)
				require.NoError(t, err)
				assert.JSONEq(t, `{"name":"John"}`, string(data))
			}
		})
	}
}

func TestRequest_BuildKeepsExplicitContentType(t *testing.T) {
	req := NewRequest("PUT", "https://api.example.com/users/1").
		WithHeader("content-type", "application/vnd.api+json").
		WithBody(map[string]int{"id": 1})

	httpReq, err := req.Build()
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.api+json", httpReq.Header.Get("Content-Type"))
}

func TestRequest_BuildRejectsRelativeURL(t *testing.T) {
	_, err := NewRequest("GET", "/posts").Build()
	assert.Error(t, err)
}

func TestRequest_WithHeaders(t *testing.T) {
	req := NewRequest("GET", "/").WithHeaders(map[string]string{
		"auth-token": "123",
		"Accept":     "text/plain",
	})

	assert.Equal(t, "123", req.Headers["auth-token"])
	assert.Equal(t, "text/plain", req.Headers["Accept"])
}
