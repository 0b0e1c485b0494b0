package dispatch

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/tidwall/gjson"

	"github.com/wesleyorama2/restservice/http"
	"github.com/wesleyorama2/restservice/pkg/jsonpath"
	"github.com/wesleyorama2/restservice/pkg/jsonschema"
)

// BodyKind tells how a response body was interpreted.
type BodyKind int

const (
	// BodyText is a body returned verbatim as a string.
	BodyText BodyKind = iota
	// BodyJSON is a body whose Content-Type named application/json.
	BodyJSON
)

func (k BodyKind) String() string {
	if k == BodyJSON {
		return "json"
	}
	return "text"
}

// Body is the unwrapped body of a synchronous call.
type Body struct {
	Kind BodyKind

	// Raw holds the body bytes for both kinds.
	Raw []byte

	// Text is set for BodyText.
	Text string

	// JSON is the decoded value for BodyJSON, with numbers as json.Number.
	// A body that fails to decode yields nil.
	JSON interface{}
}

// Get reads a value out of a JSON body with a path like "$.items[0].id".
func (b *Body) Get(path string) (gjson.Result, error) {
	return jsonpath.Get(b.Raw, path)
}

// Validate checks the body against a JSON Schema document.
func (b *Body) Validate(schema string) error {
	return jsonschema.Validate(b.Raw, schema)
}

// Result is what a verb call returns. Exactly one of its fields is set:
// Fired for fire-and-forget calls, Response for calls made with
// WithFullResponse, Body otherwise.
type Result struct {
	Fired    bool
	Response *http.Response
	Body     *Body
}

// unwrapBody interprets resp by its Content-Type.
func unwrapBody(resp *http.Response) (*Body, error) {
	raw, err := resp.GetBody()
	if err != nil {
		return nil, err
	}

	if !resp.HasJSONBody() {
		return &Body{Kind: BodyText, Raw: raw, Text: string(raw)}, nil
	}

	return &Body{Kind: BodyJSON, Raw: raw, JSON: decodeJSON(raw)}, nil
}

// decodeJSON decodes raw keeping numbers as json.Number, so integers beyond
// float64 precision come back unchanged. Malformed input, including
// trailing data after the first value, yields nil.
func decodeJSON(raw []byte) interface{} {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil
	}
	return value
}
