package webapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
)

// Data types with dedicated point endpoints. Every other data type addresses
// /streams/{webId}/{dataType}.
const (
	DataTypeValue      = "value"
	DataTypeAttributes = "attributes"
	DataTypeSelf       = "self"
)

// Client resolves identities against one historian Web API server and
// performs reads and writes. It is safe for concurrent use.
type Client struct {
	config    ServerConfig
	endpoint  string
	transport Transport
	fs        afero.Fs
	logger    hclog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the HTTP transport, mostly for tests.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithLogger sets the logger. Default: null logger
func WithLogger(l hclog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithFs sets the filesystem TLS material is read from. Default: OS filesystem
func WithFs(fs afero.Fs) Option {
	return func(c *Client) { c.fs = fs }
}

// QueryOptions selects what a WebId query returns.
type QueryOptions struct {
	// DataType is "attributes", "self", or a stream endpoint such as
	// "value", "recorded" or "interpolated". Default: "value"
	DataType string

	// StartTime and EndTime bound stream queries and are ignored for
	// attributes, self and custom URL reads. Absolute timestamps are
	// normalized to RFC3339, reading zone-less values as UTC. Historian time
	// expressions like "*-1h" are sent unchanged.
	StartTime string
	EndTime   string
}

// NewClient creates a client for cfg.
func NewClient(cfg ServerConfig, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:   cfg,
		endpoint: cfg.Endpoint(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = hclog.NewNullLogger()
	}
	c.logger = c.logger.Named("webapi")

	if c.transport == nil {
		httpClient, err := c.config.NewHTTPClient(c.fs)
		if err != nil {
			return nil, NewConfigErrorf("NewClient", CodeClientUndefined, "%w", err)
		}
		c.transport = NewHTTPTransport(httpClient)
	}

	if cfg.TLS != nil && cfg.TLS.SkipVerify {
		c.logger.Warn("TLS peer verification is disabled", "endpoint", c.endpoint)
	}

	return c, nil
}

// Endpoint returns the absolute base URL requests are resolved against.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// QueryByWebID reads the resource identified by webID.
func (c *Client) QueryByWebID(ctx context.Context, webID string, opts QueryOptions) (any, error) {
	return c.QueryByCustomURL(ctx, webIDQueryPath(webID, opts))
}

func webIDQueryPath(webID string, opts QueryOptions) string {
	dataType := opts.DataType
	if dataType == "" {
		dataType = DataTypeValue
	}

	id := url.PathEscape(webID)
	switch dataType {
	case DataTypeAttributes:
		return "/points/" + id + "/" + DataTypeAttributes
	case DataTypeSelf:
		return "/points/" + id
	}

	path := "/streams/" + id + "/" + dataType
	params := url.Values{}
	if opts.StartTime != "" {
		params.Set("startTime", normalizeTime(opts.StartTime))
	}
	if opts.EndTime != "" {
		params.Set("endTime", normalizeTime(opts.EndTime))
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return path
}

func normalizeTime(s string) string {
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return s
	}
	return t.UTC().Format(time.RFC3339)
}

// QueryByPath looks up the point at \\database\tag.
func (c *Client) QueryByPath(ctx context.Context, database, tag string) (any, error) {
	return c.QueryByCustomURL(ctx, PointLookupPath(database, tag))
}

// ResolveWebID looks up the point at \\database\tag and returns its WebId.
func (c *Client) ResolveWebID(ctx context.Context, database, tag string) (string, error) {
	result, err := c.QueryByPath(ctx, database, tag)
	if err != nil {
		return "", err
	}

	obj, ok := result.(map[string]any)
	if !ok {
		return "", newDecodeError("ResolveWebID", fmt.Errorf("point lookup returned %T, want object", result))
	}
	webID, ok := obj["WebId"].(string)
	if !ok || webID == "" {
		return "", newDecodeError("ResolveWebID", fmt.Errorf("point lookup result has no WebId"))
	}

	c.logger.Debug("resolved point path", "path", PointPath(database, tag), "web_id", webID)
	return webID, nil
}

// QueryByCustomURL issues a GET against target, which is relative to the
// base URL or absolute. Only 200 OK is a success.
func (c *Client) QueryByCustomURL(ctx context.Context, target string) (any, error) {
	const op = "QueryByCustomURL"

	req, err := c.newRequest(op, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	env, err := c.do(ctx, op, req)
	if err != nil {
		return nil, err
	}
	if env.StatusCode != http.StatusOK {
		return nil, newStatusError(op, env.StatusCode, env.payload())
	}

	result, err := env.Decode()
	if err != nil {
		return nil, newDecodeError(op, err)
	}
	return result, nil
}

// WriteByWebID writes data to the value of the stream identified by webID.
func (c *Client) WriteByWebID(ctx context.Context, webID, method string, data any) (any, error) {
	return c.WriteByCustomURL(ctx, "/streams/"+url.PathEscape(webID)+"/value", method, data)
}

// WriteByCustomURL sends data as JSON to target with the given method.
// Only 202 Accepted is a success.
func (c *Client) WriteByCustomURL(ctx context.Context, target, method string, data any) (any, error) {
	const op = "WriteByCustomURL"

	method = strings.ToUpper(method)
	if method == "" {
		method = http.MethodPost
	}

	body, err := json.Marshal(data)
	if err != nil {
		return nil, NewConfigErrorf(op, CodeCheckMsgFormat, "failed to marshal request body: %w", err)
	}

	req, err := c.newRequest(op, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	env, err := c.do(ctx, op, req)
	if err != nil {
		return nil, err
	}
	if env.StatusCode != http.StatusAccepted {
		return nil, newStatusError(op, env.StatusCode, env.payload())
	}

	result, err := env.Decode()
	if err != nil {
		return nil, newDecodeError(op, err)
	}
	return result, nil
}

// Query reads the resource named by id. Path identities are resolved to a
// WebId first; if that lookup fails its failure is returned unchanged.
func (c *Client) Query(ctx context.Context, id Identity, opts QueryOptions) (any, error) {
	switch id.Kind() {
	case IdentityWebID:
		if id.WebID() == "" {
			return nil, NewConfigError("Query", CodeWebIDMissing)
		}
		return c.QueryByWebID(ctx, id.WebID(), opts)
	case IdentityPath:
		if id.Database() == "" || id.Tag() == "" {
			return nil, NewConfigError("Query", CodePathElementMissing)
		}
		webID, err := c.ResolveWebID(ctx, id.Database(), id.Tag())
		if err != nil {
			return nil, err
		}
		return c.QueryByWebID(ctx, webID, opts)
	case IdentityCustom:
		return c.QueryByCustomURL(ctx, id.URL())
	}
	return nil, NewConfigErrorf("Query", CodeQueryMethodMissing, "invalid identity")
}

// Write sends body to the resource named by id. Path identities are resolved
// to a WebId first.
func (c *Client) Write(ctx context.Context, id Identity, method string, body any) (any, error) {
	switch id.Kind() {
	case IdentityWebID:
		if id.WebID() == "" {
			return nil, NewConfigError("Write", CodeWebIDMissing)
		}
		return c.WriteByWebID(ctx, id.WebID(), method, body)
	case IdentityPath:
		if id.Database() == "" || id.Tag() == "" {
			return nil, NewConfigError("Write", CodePathElementMissing)
		}
		webID, err := c.ResolveWebID(ctx, id.Database(), id.Tag())
		if err != nil {
			return nil, err
		}
		return c.WriteByWebID(ctx, webID, method, body)
	case IdentityCustom:
		return c.WriteByCustomURL(ctx, id.URL(), method, body)
	}
	return nil, NewConfigErrorf("Write", CodeWriteMethodMissing, "invalid identity")
}

// resolveURL joins a relative target to the endpoint. Absolute http(s)
// targets are used verbatim.
func (c *Client) resolveURL(target string) string {
	lower := strings.ToLower(target)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return target
	}
	if target != "" && !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return c.endpoint + target
}

func (c *Client) newRequest(op, method, target string, body []byte) (*Request, error) {
	auth, err := AuthHeader(c.config.AuthMethod, c.config.Credentials())
	if err != nil {
		return nil, err
	}
	if c.config.AuthMethod == AuthBasic && auth == "" {
		return nil, NewConfigErrorf(op, CodeAuthMethodMissing, "basic authentication requires credentials")
	}

	header := make(http.Header)
	if auth != "" {
		header.Set("Authorization", auth)
	}
	header.Set("Content-Type", "application/json")
	header.Set("Cache-Control", "no-cache")

	return &Request{
		Method: method,
		URL:    c.resolveURL(target),
		Header: header,
		Body:   body,
	}, nil
}

func (c *Client) do(ctx context.Context, op string, req *Request) (*Envelope, error) {
	c.logger.Debug("sending request", "method", req.Method, "url", req.URL)

	env, err := c.transport.Do(ctx, req)
	if err != nil {
		c.logger.Debug("request failed", "method", req.Method, "url", req.URL, "error", err)
		return nil, newTransportError(op, err)
	}

	c.logger.Debug("received response", "method", req.Method, "url", req.URL, "status", env.StatusCode)
	return env, nil
}
