package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/restservice/dispatch"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat returns the OutputFormat named by s.
func ParseFormat(s string) (OutputFormat, error) {
	switch format := OutputFormat(strings.ToLower(s)); format {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

// RequestData is the structured form of a Descriptor.
type RequestData struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Query   map[string]string `json:"query,omitempty" yaml:"query,omitempty"`
	Body    interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
}

// TimingData represents detailed timing information for an HTTP request
type TimingData struct {
	DNSLookup       int64 `json:"dnsLookupMs,omitempty" yaml:"dnsLookupMs,omitempty"`
	TCPConnection   int64 `json:"tcpConnectionMs,omitempty" yaml:"tcpConnectionMs,omitempty"`
	TLSHandshake    int64 `json:"tlsHandshakeMs,omitempty" yaml:"tlsHandshakeMs,omitempty"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs,omitempty" yaml:"timeToFirstByteMs,omitempty"`
	ContentTransfer int64 `json:"contentTransferMs,omitempty" yaml:"contentTransferMs,omitempty"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResultData is the structured form of a Result.
type ResultData struct {
	Request    *RequestData      `json:"request,omitempty" yaml:"request,omitempty"`
	Fired      bool              `json:"fired,omitempty" yaml:"fired,omitempty"`
	StatusCode int               `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	Status     string            `json:"status,omitempty" yaml:"status,omitempty"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	BodyKind   string            `json:"bodyKind,omitempty" yaml:"bodyKind,omitempty"`
	Body       interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	Timing     *TimingData       `json:"timing,omitempty" yaml:"timing,omitempty"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty"`
	Timestamp  string            `json:"timestamp" yaml:"timestamp"`
}

// NewResultData collects a call's descriptor, result and error into one
// serializable value. Any of the three may be nil.
func NewResultData(desc *dispatch.Descriptor, result *dispatch.Result, err error) *ResultData {
	data := &ResultData{Timestamp: time.Now().Format(time.RFC3339)}

	if desc != nil {
		data.Request = &RequestData{
			Method:  desc.Method,
			URL:     desc.URL,
			Headers: desc.Headers,
			Query:   firstValues(desc.Query),
			Body:    desc.JSON,
		}
	}
	if err != nil {
		data.Error = err.Error()
	}
	if result == nil {
		return data
	}

	data.Fired = result.Fired
	switch {
	case result.Response != nil:
		resp := result.Response
		data.StatusCode = resp.StatusCode
		data.Status = resp.Status
		data.Headers = firstValues(resp.Headers)
		data.Timing = &TimingData{
			DNSLookup:       resp.Timing.DNSLookupTime.Milliseconds(),
			TCPConnection:   resp.Timing.TCPConnectTime.Milliseconds(),
			TLSHandshake:    resp.Timing.TLSHandshakeTime.Milliseconds(),
			TimeToFirstByte: resp.Timing.TimeToFirstByte.Milliseconds(),
			ContentTransfer: resp.Timing.ContentTransferTime.Milliseconds(),
			Total:           resp.TotalMillis(),
		}
		if body, bodyErr := resp.GetBody(); bodyErr == nil && len(body) > 0 {
			decoder := json.NewDecoder(bytes.NewReader(body))
			decoder.UseNumber()
			var value interface{}
			if decoder.Decode(&value) == nil {
				data.Body = plainNumbers(value)
			} else {
				data.Body = string(body)
			}
		}
	case result.Body != nil:
		data.BodyKind = result.Body.Kind.String()
		if result.Body.Kind == dispatch.BodyJSON {
			data.Body = plainNumbers(result.Body.JSON)
		} else {
			data.Body = result.Body.Text
		}
	}
	return data
}

// Encode serializes data in the given format. FormatText is not a
// structured format and is rejected.
func Encode(format OutputFormat, data *ResultData) (string, error) {
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out) + "\n", nil
	case FormatYAML:
		out, err := yaml.Marshal(data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("format %q is not structured", format)
	}
}

func firstValues(values map[string][]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]string, len(values))
	for key, vs := range values {
		if len(vs) > 0 {
			result[key] = vs[0]
		}
	}
	return result
}

// plainNumbers replaces json.Number values with Go integers or floats so
// every encoder writes them as numbers. Integers keep full precision.
func plainNumbers(v interface{}) interface{} {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
			return u
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[key] = plainNumbers(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = plainNumbers(item)
		}
		return out
	default:
		return v
	}
}
