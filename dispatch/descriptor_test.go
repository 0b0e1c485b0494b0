package dispatch

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDescriptor_QueryForm(t *testing.T) {
	opts := DefaultOptions().WithEndpoint("https://test.com")

	for _, method := range []string{"GET", "HEAD", "DELETE", "PURGE", "purge"} {
		t.Run(method, func(t *testing.T) {
			desc, err := BuildDescriptor(method, opts, "/posts", map[string]string{"page": "2"}, nil)
			require.NoError(t, err)

			assert.Equal(t, "https://test.com/posts", desc.URL)
			assert.False(t, desc.HasBody)
			assert.Nil(t, desc.JSON)
			assert.Equal(t, url.Values{"page": {"2"}}, desc.Query)
			assert.Equal(t, "application/json", desc.Headers["Accept"])
		})
	}
}

func TestBuildDescriptor_BodyForm(t *testing.T) {
	opts := DefaultOptions().WithEndpoint("https://test.com")
	params := map[string]interface{}{"id": 1, "value": "test"}

	for _, method := range []string{"POST", "PUT", "PATCH"} {
		t.Run(method, func(t *testing.T) {
			desc, err := BuildDescriptor(method, opts, "/posts/1", params, map[string]string{"X-Only": "me"})
			require.NoError(t, err)

			assert.Equal(t, method, desc.Method)
			assert.Equal(t, "https://test.com/posts/1", desc.URL)
			assert.True(t, desc.HasBody)
			assert.Equal(t, params, desc.JSON)
			assert.Nil(t, desc.Query)
			assert.Equal(t, map[string]string{"X-Only": "me"}, desc.Headers)
		})
	}
}

func TestBuildDescriptor_URLIsPlainConcatenation(t *testing.T) {
	desc, err := BuildDescriptor("GET", DefaultOptions().WithEndpoint("https://test.com/api/"), "/posts", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://test.com/api//posts", desc.URL)

	desc, err = BuildDescriptor("GET", DefaultOptions(), "/posts", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "/posts", desc.URL)
}

func TestQueryValues(t *testing.T) {
	tests := []struct {
		name     string
		params   interface{}
		expected url.Values
	}{
		{name: "nil", params: nil, expected: url.Values{}},
		{name: "url.Values", params: url.Values{"a": {"1", "2"}}, expected: url.Values{"a": {"1", "2"}}},
		{name: "string slices", params: map[string][]string{"a": {"x"}}, expected: url.Values{"a": {"x"}}},
		{name: "strings", params: map[string]string{"a": "x"}, expected: url.Values{"a": {"x"}}},
		{
			name:     "mixed values",
			params:   map[string]interface{}{"n": 3, "b": true, "list": []interface{}{1, "two"}, "tags": []string{"x", "y"}},
			expected: url.Values{"n": {"3"}, "b": {"1"}, "list": {"1", "two"}, "tags": {"x", "y"}},
		},
		{
			name:     "false and nil",
			params:   map[string]interface{}{"off": false, "gone": nil},
			expected: url.Values{"off": {"0"}},
		},
		{
			name: "nested maps",
			params: map[string]interface{}{
				"filter": map[string]interface{}{"status": "open", "owner": map[string]interface{}{"id": 7}},
				"sort":   map[string]string{"by": "date"},
			},
			expected: url.Values{"filter[status]": {"open"}, "filter[owner][id]": {"7"}, "sort[by]": {"date"}},
		},
		{
			name:     "decoded json numbers",
			params:   map[string]interface{}{"id": json.Number("9007199254740993")},
			expected: url.Values{"id": {"9007199254740993"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := queryValues(tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, values)
		})
	}
}

func TestQueryValues_RejectsUnsupportedType(t *testing.T) {
	_, err := queryValues([]int{1, 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParams))

	_, err = queryValues(map[string]interface{}{"point": struct{ X int }{1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParams))
}
