// Package http is the HTTP client underneath the dispatcher.
//
// It provides:
//   - A configurable Client built with functional options
//   - A fluent Request builder with query and JSON body support
//   - Responses with a cached body and per-phase timing
//   - A typed StatusError for 4xx and 5xx responses when enabled
//
// Basic Usage:
//
//	client := http.NewClient(
//	    http.WithTimeout(10*time.Second),
//	    http.WithHTTPErrors(true),
//	)
//
//	req := http.NewRequest("PURGE", "https://cache.example.com/posts").
//	    WithHeader("Accept", "application/json").
//	    WithQueryValues(url.Values{"soft": {"1"}})
//
//	resp, err := client.Do(context.Background(), req)
//	var statusErr *http.StatusError
//	if errors.As(err, &statusErr) {
//	    fmt.Println(statusErr.Response.Reason())
//	}
//
// Retries, redirects and connection pooling are left to net/http.
//
// Client is safe for concurrent use.
package http
