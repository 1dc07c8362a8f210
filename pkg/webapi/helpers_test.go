package webapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordedRequest is a request seen by a test server.
type recordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	RawURI   string
	Header   http.Header
	Body     string
}

// recorder is an http.Handler that records requests and delegates to a
// route table keyed by request URI.
type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]http.HandlerFunc
}

func newRecorder() *recorder {
	return &recorder{routes: make(map[string]http.HandlerFunc)}
}

func (r *recorder) handle(uri string, status int, body string) {
	r.routes[uri] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)

	r.mu.Lock()
	r.requests = append(r.requests, recordedRequest{
		Method:   req.Method,
		Path:     req.URL.Path,
		RawQuery: req.URL.RawQuery,
		RawURI:   req.RequestURI,
		Header:   req.Header.Clone(),
		Body:     string(body),
	})
	r.mu.Unlock()

	if h, ok := r.routes[req.RequestURI]; ok {
		h(w, req)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, `{"Errors":["not found"]}`)
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedRequest, len(r.requests))
	copy(out, r.requests)
	return out
}

// newTestClient starts a server for rec and returns a basic-auth client
// pointed at it.
func newTestClient(t *testing.T, rec *recorder) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	client, err := NewClient(ServerConfig{
		BaseURL:    srv.URL,
		AuthMethod: AuthBasic,
		Username:   "operator",
		Password:   "secret",
	})
	require.NoError(t, err)
	return client, srv
}

// countingTransport counts calls and never reaches the network.
type countingTransport struct {
	mu    sync.Mutex
	calls int
	env   *Envelope
	err   error
}

func (c *countingTransport) Do(_ context.Context, _ *Request) (*Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.env, c.err
}

func (c *countingTransport) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
