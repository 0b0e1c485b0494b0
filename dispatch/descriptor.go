package dispatch

import (
	"fmt"
	nethttp "net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// MethodPurge is the cache invalidation verb understood by Varnish and most CDNs.
const MethodPurge = "PURGE"

// Descriptor is the request a verb call resolves to before it is sent.
type Descriptor struct {
	Method  string
	URL     string
	Headers map[string]string

	// Query is set for GET, HEAD, DELETE and PURGE.
	Query url.Values

	// JSON is the body value for POST, PUT and PATCH. HasBody tells a nil
	// JSON apart from a query-form descriptor.
	JSON    interface{}
	HasBody bool
}

// carriesBody reports whether method sends its params as a JSON body.
func carriesBody(method string) bool {
	switch method {
	case nethttp.MethodPost, nethttp.MethodPut, nethttp.MethodPatch:
		return true
	}
	return false
}

// BuildDescriptor resolves a call against opts. The URL is the endpoint and
// path concatenated as strings. It does not check that an endpoint is set;
// that happens when the descriptor is dispatched.
func BuildDescriptor(method string, opts Options, path string, params interface{}, headers map[string]string) (*Descriptor, error) {
	method = strings.ToUpper(method)
	endpoint, _ := opts.Endpoint()

	desc := &Descriptor{
		Method:  method,
		URL:     endpoint + path,
		Headers: opts.EffectiveHeaders(headers),
	}

	if carriesBody(method) {
		desc.JSON = params
		desc.HasBody = true
		return desc, nil
	}

	query, err := queryValues(params)
	if err != nil {
		return nil, err
	}
	desc.Query = query
	return desc, nil
}

// queryValues converts the params of a query-form call to url.Values.
func queryValues(params interface{}) (url.Values, error) {
	values := make(url.Values)

	switch p := params.(type) {
	case nil:
	case url.Values:
		for key, vs := range p {
			values[key] = append([]string(nil), vs...)
		}
	case map[string][]string:
		for key, vs := range p {
			values[key] = append([]string(nil), vs...)
		}
	case map[string]string:
		for key, v := range p {
			values.Set(key, v)
		}
	case map[string]interface{}:
		for key, v := range p {
			if err := addQueryValue(values, key, v); err != nil {
				return nil, err
			}
		}
	default:
		return nil, errors.Wrapf(ErrInvalidParams, "query params of type %T", params)
	}
	return values, nil
}

// addQueryValue adds v under key. Nested maps flatten to key[sub] and
// booleans render as 1 and 0, the way form-encoded PHP and Rails backends
// read them. Slices repeat the key. nil values are left out.
func addQueryValue(values url.Values, key string, v interface{}) error {
	switch v := v.(type) {
	case nil:
	case bool:
		if v {
			values.Add(key, "1")
		} else {
			values.Add(key, "0")
		}
	case string:
		values.Add(key, v)
	case []string:
		values[key] = append(values[key], v...)
	case []interface{}:
		for _, item := range v {
			if err := addQueryValue(values, key, item); err != nil {
				return err
			}
		}
	case map[string]string:
		for sub, item := range v {
			values.Add(key+"["+sub+"]", item)
		}
	case map[string]interface{}:
		for sub, item := range v {
			if err := addQueryValue(values, key+"["+sub+"]", item); err != nil {
				return err
			}
		}
	case fmt.Stringer, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		values.Add(key, fmt.Sprint(v))
	default:
		return errors.Wrapf(ErrInvalidParams, "query param %q of type %T", key, v)
	}
	return nil
}

// sortedKeys returns the keys of headers in lexical order.
func sortedKeys(headers map[string]string) []string {
	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
