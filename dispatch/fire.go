package dispatch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Target is the host a fire-and-forget request is written to.
type Target struct {
	Host string
	Port int
	TLS  bool
}

// Addr returns host:port.
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// Connector opens the raw byte stream a fire-and-forget request is written
// to. timeout bounds establishing the connection only.
type Connector interface {
	Connect(ctx context.Context, target Target, timeout time.Duration) (io.WriteCloser, error)
}

// NetConnector dials TCP, wrapped in TLS for https targets.
type NetConnector struct {
	// TLSConfig is cloned for every TLS dial; ServerName defaults to the
	// target host.
	TLSConfig *tls.Config
}

// Connect implements Connector.
func (c *NetConnector) Connect(ctx context.Context, target Target, timeout time.Duration) (io.WriteCloser, error) {
	dialer := &net.Dialer{Timeout: timeout}
	if !target.TLS {
		return dialer.DialContext(ctx, "tcp", target.Addr())
	}

	config := &tls.Config{}
	if c.TLSConfig != nil {
		config = c.TLSConfig.Clone()
	}
	if config.ServerName == "" {
		config.ServerName = target.Host
	}
	tlsDialer := &tls.Dialer{NetDialer: dialer, Config: config}
	return tlsDialer.DialContext(ctx, "tcp", target.Addr())
}

// fire writes desc over a raw connection and returns without reading
// anything back. Success means the bytes were written.
func (d *Dispatcher) fire(ctx context.Context, opts Options, desc *Descriptor) (*Result, error) {
	target, requestURL, err := resolveTarget(desc.URL)
	if err != nil {
		return nil, &SocketError{Addr: desc.URL, Message: err.Error(), Err: err}
	}

	payload, err := json.Marshal(jsonBody(desc.JSON))
	if err != nil {
		return nil, &TransportError{Message: err.Error(), Err: errors.Wrap(err, "encode JSON body")}
	}
	frame := FrameRequest(desc.Method, requestURL, desc.Headers, payload)

	conn, err := d.connector.Connect(ctx, target, opts.ConnectTimeout())
	if err != nil {
		d.logger.Debug().Err(err).Str("addr", target.Addr()).Msg("fire-and-forget connect failed")
		return nil, &SocketError{Addr: target.Addr(), Message: err.Error(), Errno: errnoOf(err), Err: err}
	}
	defer conn.Close()

	if _, err := conn.Write(frame); err != nil {
		d.logger.Debug().Err(err).Str("addr", target.Addr()).Msg("fire-and-forget write failed")
		return nil, &SocketError{Addr: target.Addr(), Message: err.Error(), Errno: errnoOf(err), Err: err}
	}

	d.logger.Debug().
		Str("method", desc.Method).
		Str("addr", target.Addr()).
		Int("bytes", len(frame)).
		Msg("fired request")
	return &Result{Fired: true}, nil
}

// resolveTarget parses rawURL into the connection target. The port is the
// explicit one, else 443 for https and 80 for anything else.
func resolveTarget(rawURL string) (Target, *url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Target{}, nil, errors.Wrap(err, "parse URL")
	}
	if u.Hostname() == "" {
		return Target{}, nil, errors.Newf("URL %q has no host", rawURL)
	}

	target := Target{
		Host: u.Hostname(),
		TLS:  strings.EqualFold(u.Scheme, "https"),
	}
	if port := u.Port(); port != "" {
		target.Port, err = strconv.Atoi(port)
		if err != nil {
			return Target{}, nil, errors.Wrapf(err, "parse port %q", port)
		}
	} else if target.TLS {
		target.Port = 443
	} else {
		target.Port = 80
	}
	return target, u, nil
}

// FrameRequest serializes an HTTP/1.1 request: request line, Host, headers
// in key order, then Content-Type, Content-Length and Connection, a blank
// line and the body. Lines end in CRLF and Content-Length counts bytes.
//
// Host is taken from u unless headers carry one. Content-Type,
// Content-Length and Connection are appended to any value already present
// for the same header, joined with ", ".
func FrameRequest(method string, u *url.URL, headers map[string]string, body []byte) []byte {
	block := newHeaderBlock()
	if !hasHeader(headers, "Host") {
		block.add("Host", hostHeader(u))
	}
	for _, key := range sortedKeys(headers) {
		block.add(key, headers[key])
	}
	block.add("Content-Type", "application/json; charset=utf-8")
	block.add("Content-Length", strconv.Itoa(len(body)))
	block.add("Connection", "Close")

	var buf bytes.Buffer
	buf.WriteString(method)
	buf.WriteByte(' ')
	buf.WriteString(u.RequestURI())
	buf.WriteString(" HTTP/1.1\r\n")
	block.writeTo(&buf)
	buf.WriteString("\r\n")
	buf.Write(body)
	return buf.Bytes()
}

// hostHeader returns the Host value for u, omitting the port when it is
// the default one for the scheme.
func hostHeader(u *url.URL) string {
	port := u.Port()
	if port == "" ||
		(port == "443" && strings.EqualFold(u.Scheme, "https")) ||
		(port == "80" && strings.EqualFold(u.Scheme, "http")) {
		host := u.Hostname()
		if strings.Contains(host, ":") {
			return "[" + host + "]"
		}
		return host
	}
	return u.Host
}

// headerBlock keeps header lines in insertion order with values merged
// case-insensitively by name.
type headerBlock struct {
	names  []string
	values map[string][]string
	index  map[string]string
}

func newHeaderBlock() *headerBlock {
	return &headerBlock{
		values: make(map[string][]string),
		index:  make(map[string]string),
	}
}

func (h *headerBlock) add(name, value string) {
	lower := strings.ToLower(name)
	if existing, ok := h.index[lower]; ok {
		h.values[existing] = append(h.values[existing], value)
		return
	}
	h.index[lower] = name
	h.names = append(h.names, name)
	h.values[name] = []string{value}
}

func (h *headerBlock) writeTo(buf *bytes.Buffer) {
	for _, name := range h.names {
		buf.WriteString(name)
		buf.WriteString(": ")
		buf.WriteString(strings.Join(h.values[name], ", "))
		buf.WriteString("\r\n")
	}
}

func hasHeader(headers map[string]string, name string) bool {
	for key := range headers {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}
