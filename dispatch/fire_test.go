package dispatch

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	nethttp "net/http"
	"net/url"
	"syscall"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/restservice/http"
)

type mockConnector struct {
	mock.Mock
}

func (m *mockConnector) Connect(ctx context.Context, target Target, timeout time.Duration) (io.WriteCloser, error) {
	args := m.Called(ctx, target, timeout)
	conn, _ := args.Get(0).(io.WriteCloser)
	return conn, args.Error(1)
}

// recordingConn is write-only: a fired request has no way to read.
type recordingConn struct {
	buf      bytes.Buffer
	closed   bool
	writeErr error
}

func (c *recordingConn) Write(p []byte) (int, error) {
	if c.closed {
		return 0, errors.New("write after close")
	}
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	return c.buf.Write(p)
}

func (c *recordingConn) Close() error {
	c.closed = true
	return nil
}

func TestFrameRequest(t *testing.T) {
	u, err := url.Parse("https://test.com/posts/1?draft=1")
	require.NoError(t, err)

	frame := FrameRequest("PUT", u, map[string]string{
		"auth-token": "123",
		"Accept":     "application/json",
	}, []byte(`{"id":1,"value":"tést"}`))

	expected := "PUT /posts/1?draft=1 HTTP/1.1\r\n" +
		"Host: test.com\r\n" +
		"Accept: application/json\r\n" +
		"auth-token: 123\r\n" +
		"Content-Type: application/json; charset=utf-8\r\n" +
		"Content-Length: 24\r\n" +
		"Connection: Close\r\n" +
		"\r\n" +
		`{"id":1,"value":"tést"}`
	assert.Equal(t, expected, string(frame))
}

func TestFrameRequest_ParsesAsHTTP(t *testing.T) {
	u, err := url.Parse("http://localhost:8080")
	require.NoError(t, err)
	body := []byte(`{"a":"b"}`)

	frame := FrameRequest("POST", u, nil, body)

	req, err := nethttp.ReadRequest(bufio.NewReader(bytes.NewReader(frame)))
	require.NoError(t, err)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/", req.URL.Path)
	assert.Equal(t, "localhost:8080", req.Host)
	assert.Equal(t, int64(len(body)), req.ContentLength)
	assert.True(t, req.Close)

	got, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestFrameRequest_MergesRepeatedHeaders(t *testing.T) {
	u, err := url.Parse("http://test.com/")
	require.NoError(t, err)

	frame := string(FrameRequest("PATCH", u, map[string]string{
		"Host":         "override.test",
		"content-type": "text/plain",
	}, nil))

	assert.Contains(t, frame, "Host: override.test\r\n")
	assert.NotContains(t, frame, "Host: test.com")
	assert.Contains(t, frame, "content-type: text/plain, application/json; charset=utf-8\r\n")
	assert.Contains(t, frame, "Content-Length: 0\r\n")
}

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		url      string
		expected Target
	}{
		{"https://test.com/posts", Target{Host: "test.com", Port: 443, TLS: true}},
		{"http://test.com/posts", Target{Host: "test.com", Port: 80}},
		{"https://test.com:8443", Target{Host: "test.com", Port: 8443, TLS: true}},
		{"http://127.0.0.1:9000/x", Target{Host: "127.0.0.1", Port: 9000}},
		{"http://[::1]:9000/x", Target{Host: "::1", Port: 9000}},
	}

	for _, tt := range tests {
		target, _, err := resolveTarget(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.expected, target, tt.url)
	}

	_, _, err := resolveTarget("/posts")
	assert.Error(t, err)
}

func TestHostHeader(t *testing.T) {
	tests := map[string]string{
		"https://test.com:443/":  "test.com",
		"http://test.com:80/":    "test.com",
		"http://test.com:8080/":  "test.com:8080",
		"https://test.com:80/":   "test.com:80",
		"http://[::1]/":          "[::1]",
		"http://[::1]:9000/path": "[::1]:9000",
	}

	for raw, expected := range tests {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, expected, hostHeader(u), raw)
	}
}

func TestDispatcher_FireWritesAndCloses(t *testing.T) {
	conn := &recordingConn{}
	connector := &mockConnector{}
	connector.On("Connect", mock.Anything, Target{Host: "test.com", Port: 443, TLS: true}, 200*time.Second).
		Return(conn, nil)
	doer := &mockDoer{}

	d := New(WithDoer(doer), WithConnector(connector))
	opts := DefaultOptions().WithEndpoint(endpoint).WithFireAndForget(true, 200*time.Second)

	result, err := d.Put(context.Background(), opts, "/posts/1", WithParams(map[string]interface{}{"id": 1, "value": "test"}))
	require.NoError(t, err)
	assert.Equal(t, &Result{Fired: true}, result)

	assert.True(t, conn.closed)
	frame := conn.buf.String()
	assert.Contains(t, frame, "PUT /posts/1 HTTP/1.1\r\n")
	assert.Contains(t, frame, "Accept: application/json\r\n")
	assert.Contains(t, frame, "Content-Length: 23\r\n")
	assert.Contains(t, frame, "\r\n\r\n{\"id\":1,\"value\":\"test\"}")

	connector.AssertExpectations(t)
	doer.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestDispatcher_FireOnlyForBodyVerbs(t *testing.T) {
	connector := &mockConnector{}
	doer := respondWith(http.NewResponse(200, nil, []byte("ok")))

	d := New(WithDoer(doer), WithConnector(connector))
	opts := DefaultOptions().WithEndpoint(endpoint).WithFireAndForget(true, time.Second)

	for _, method := range []string{"GET", "HEAD", "DELETE", "PURGE"} {
		result, err := d.Dispatch(context.Background(), method, opts, "/posts")
		require.NoError(t, err, method)
		assert.False(t, result.Fired, method)
	}

	connector.AssertNotCalled(t, "Connect", mock.Anything, mock.Anything, mock.Anything)
	doer.AssertNumberOfCalls(t, "Do", 4)
}

func TestDispatcher_FireConnectFailure(t *testing.T) {
	connector := &mockConnector{}
	connector.On("Connect", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED})

	d := New(WithConnector(connector))
	opts := DefaultOptions().WithEndpoint("http://test.com").WithFireAndForget(true, time.Second)

	result, err := d.Post(context.Background(), opts, "/events")
	assert.Nil(t, result)

	var socketErr *SocketError
	require.True(t, errors.As(err, &socketErr))
	assert.Equal(t, "test.com:80", socketErr.Addr)
	assert.Equal(t, int(syscall.ECONNREFUSED), socketErr.Errno)
	assert.Contains(t, socketErr.Message, "connection refused")
}

func TestDispatcher_FireWriteFailureStillCloses(t *testing.T) {
	conn := &recordingConn{writeErr: syscall.EPIPE}
	connector := &mockConnector{}
	connector.On("Connect", mock.Anything, mock.Anything, mock.Anything).Return(conn, nil)

	d := New(WithConnector(connector))
	opts := DefaultOptions().WithEndpoint(endpoint).WithFireAndForget(true, time.Second)

	_, err := d.Patch(context.Background(), opts, "/posts/1")

	var socketErr *SocketError
	require.True(t, errors.As(err, &socketErr))
	assert.Equal(t, int(syscall.EPIPE), socketErr.Errno)
	assert.True(t, conn.closed)
}

func TestDispatcher_FireOverLoopback(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	received := make(chan *nethttp.Request, 1)
	bodies := make(chan []byte, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		req, err := nethttp.ReadRequest(bufio.NewReader(conn))
		if err != nil {
			return
		}
		body, _ := io.ReadAll(req.Body)
		received <- req
		bodies <- body
	}()

	d := New()
	opts := DefaultOptions().
		WithEndpoint("http://" + listener.Addr().String()).
		WithRequestHeaders(map[string]string{"auth-token": "123"}).
		WithFireAndForget(true, time.Second)

	result, err := d.Post(context.Background(), opts, "/events?source=test", WithParams([]int{1, 2, 3}))
	require.NoError(t, err)
	assert.True(t, result.Fired)

	select {
	case req := <-received:
		assert.Equal(t, "POST", req.Method)
		assert.Equal(t, "/events", req.URL.Path)
		assert.Equal(t, "test", req.URL.Query().Get("source"))
		assert.Equal(t, "123", req.Header.Get("auth-token"))
		assert.Equal(t, "application/json; charset=utf-8", req.Header.Get("Content-Type"))
		assert.Equal(t, "[1,2,3]", string(<-bodies))
	case <-time.After(5 * time.Second):
		t.Fatal("listener never received the request")
	}
}

func TestDispatcher_FireRefusedOverLoopback(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	listener.Close()

	opts := DefaultOptions().WithEndpoint("http://" + addr).WithFireAndForget(true, time.Second)
	_, err = New().Put(context.Background(), opts, "/posts/1")

	var socketErr *SocketError
	require.True(t, errors.As(err, &socketErr))
	assert.Equal(t, addr, socketErr.Addr)
	assert.Equal(t, int(syscall.ECONNREFUSED), socketErr.Errno)
}
