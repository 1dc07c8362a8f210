package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Request is a fully resolved request, consumed once by a Transport.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Envelope is the raw response of a single request.
type Envelope struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode parses the body as JSON. An empty body decodes to nil.
func (e *Envelope) Decode() (any, error) {
	if len(bytes.TrimSpace(e.Body)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(e.Body, &v); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return v, nil
}

// payload returns the body for error reporting: decoded JSON when the body
// parses, the raw text otherwise.
func (e *Envelope) payload() any {
	if v, err := e.Decode(); err == nil {
		return v
	}
	return strings.TrimSpace(string(e.Body))
}

// Transport issues a single request. Implementations return an error only
// for transport-level failures; any HTTP status is a valid Envelope.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Envelope, error)
}

// HTTPTransport is a Transport backed by net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps client. A nil client uses http.DefaultClient.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{client: client}
}

// Do implements Transport.
func (t *HTTPTransport) Do(ctx context.Context, r *Request) (*Envelope, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Envelope{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}
