package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/wesleyorama2/restservice/dispatch"
	"github.com/wesleyorama2/restservice/http"
)

// Formatter renders dispatch descriptors, results and errors as text.
type Formatter struct {
	Verbose bool
	NoColor bool
	scheme  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	scheme := DefaultColorScheme()
	if noColor {
		scheme = NoColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		scheme:  scheme,
	}
}

// FormatDescriptor formats the request a call resolved to.
func (f *Formatter) FormatDescriptor(desc *dispatch.Descriptor) string {
	var buf strings.Builder

	target := desc.URL
	if len(desc.Query) > 0 {
		target += "?" + desc.Query.Encode()
	}
	buf.WriteString(fmt.Sprintf("▶ REQUEST: %s %s\n",
		f.scheme.Method.Sprint(desc.Method), f.scheme.URL.Sprint(target)))

	if f.Verbose || len(desc.Headers) > 0 {
		buf.WriteString("  Headers:\n")
		keys := make([]string, 0, len(desc.Headers))
		for key := range desc.Headers {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			buf.WriteString(fmt.Sprintf("    %s: %s\n", f.scheme.HeaderKey.Sprint(key), desc.Headers[key]))
		}
	}

	if desc.HasBody && desc.JSON != nil {
		if body, err := json.Marshal(desc.JSON); err == nil {
			buf.WriteString("  Body: ")
			buf.WriteString(formatJSONString(string(body)))
			buf.WriteString("\n")
		}
	}

	return buf.String()
}

// FormatResult formats the outcome of a call.
func (f *Formatter) FormatResult(result *dispatch.Result) string {
	switch {
	case result == nil:
		return ""
	case result.Fired:
		return fmt.Sprintf("%s FIRED: request written, response not read\n", f.scheme.Fired.Sprint("◀"))
	case result.Response != nil:
		return f.FormatResponse(result.Response)
	case result.Body != nil:
		return f.formatBody(result.Body)
	}
	return ""
}

// FormatResponse formats a full HTTP response.
func (f *Formatter) FormatResponse(resp *http.Response) string {
	var buf strings.Builder

	statusColor := f.scheme.StatusError
	if resp.IsSuccess() {
		statusColor = f.scheme.StatusOK
	} else if resp.IsRedirect() {
		statusColor = f.scheme.StatusWarn
	}

	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s (%dms)\n", statusColor.Sprint(resp.Status), resp.TotalMillis()))

	if f.Verbose {
		buf.WriteString("  Timing:\n")
		buf.WriteString(fmt.Sprintf("    DNS Lookup:         %dms\n", resp.Timing.DNSLookupTime.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    TCP Connection:     %dms\n", resp.Timing.TCPConnectTime.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    TLS Handshake:      %dms\n", resp.Timing.TLSHandshakeTime.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    Time to First Byte: %dms\n", resp.Timing.TimeToFirstByte.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    Content Transfer:   %dms\n", resp.Timing.ContentTransferTime.Milliseconds()))
	}

	buf.WriteString("  Headers:\n")
	keys := make([]string, 0, len(resp.Headers))
	for key := range resp.Headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, value := range resp.Headers[key] {
			buf.WriteString(fmt.Sprintf("    %s: %s\n", f.scheme.HeaderKey.Sprint(key), value))
		}
	}

	body, err := resp.GetBodyAsString()
	if err == nil && body != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(body))
		buf.WriteString("\n")
	}

	return buf.String()
}

func (f *Formatter) formatBody(body *dispatch.Body) string {
	if body.Kind == dispatch.BodyText {
		if body.Text == "" {
			return ""
		}
		return body.Text + "\n"
	}
	return formatJSONString(string(body.Raw)) + "\n"
}

// FormatError formats a dispatch failure with whatever detail its kind carries.
func (f *Formatter) FormatError(err error) string {
	var (
		respErr   *dispatch.ResponseError
		sockErr   *dispatch.SocketError
		transErr  *dispatch.TransportError
		buf       strings.Builder
		errorIcon = ErrorIcon(f.NoColor)
	)

	switch {
	case errors.As(err, &respErr):
		buf.WriteString(fmt.Sprintf("%s %s\n", errorIcon,
			f.scheme.StatusError.Sprintf("HTTP %d %s", respErr.StatusCode, respErr.Reason)))
		if respErr.Response != nil {
			if body, bodyErr := respErr.Response.GetBodyAsString(); bodyErr == nil && body != "" {
				buf.WriteString(formatJSONString(body))
				buf.WriteString("\n")
			}
		}
	case errors.As(err, &sockErr):
		buf.WriteString(fmt.Sprintf("%s %s", errorIcon, f.scheme.Error.Sprintf("socket error: %s", sockErr.Error())))
		if sockErr.Errno != 0 {
			buf.WriteString(fmt.Sprintf(" (errno %d)", sockErr.Errno))
		}
		buf.WriteString("\n")
	case errors.As(err, &transErr):
		buf.WriteString(fmt.Sprintf("%s %s", errorIcon, f.scheme.Error.Sprintf("transport error: %s", transErr.Message)))
		if transErr.Code != 0 {
			buf.WriteString(fmt.Sprintf(" (code %d)", transErr.Code))
		}
		buf.WriteString("\n")
	default:
		buf.WriteString(fmt.Sprintf("%s %s\n", errorIcon, f.scheme.Error.Sprint(err.Error())))
	}

	return buf.String()
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}
