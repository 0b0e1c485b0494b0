// Package dispatch sends verb-named requests (GET, HEAD, DELETE, PURGE,
// POST, PUT, PATCH) against a configurable base endpoint.
//
// Every call takes an Options value naming the endpoint, default headers,
// Accept type and whether body-carrying calls are fired and forgotten:
//
//	d := dispatch.New(dispatch.WithLogger(logger))
//	opts := dispatch.DefaultOptions().
//	    WithEndpoint("https://api.example.com").
//	    WithRequestHeaders(map[string]string{"auth-token": "123"})
//
//	res, err := d.Get(ctx, opts, "/posts", dispatch.WithParams(map[string]string{"page": "2"}))
//	if err != nil {
//	    return err
//	}
//	if res.Body.Kind == dispatch.BodyJSON {
//	    title, _ := res.Body.Get("$[0].title")
//	    fmt.Println(title.String())
//	}
//
// Fire-and-forget:
//
// With WithFireAndForget(true, timeout), POST, PUT and PATCH frame the
// request as raw HTTP/1.1, write it to a TCP (or TLS, for https) connection
// and close it without reading a response. The call succeeds once the
// bytes are written; what the server did with them is not observable.
//
//	opts = opts.WithFireAndForget(true, 2*time.Second)
//	res, err = d.Put(ctx, opts, "/posts/1", dispatch.WithParams(post))
//	// res.Fired == true
//
// Errors:
//
// A call without an endpoint fails with ErrInvalidEndpoint before any I/O.
// 4xx and 5xx answers become *ResponseError, other client failures
// *TransportError, and fire-and-forget connection failures *SocketError.
//
// Session offers the stateful configure, call, reset style on top of a
// Dispatcher for callers that want it.
package dispatch
