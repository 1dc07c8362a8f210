package config

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"

	"github.com/sensetecnic/webapi-bridge/pkg/dispatch"
	"github.com/sensetecnic/webapi-bridge/pkg/webapi"
)

// Config is the bridge configuration file.
type Config struct {
	// LogLevel is one of trace, debug, info, warn or error. Default: info
	LogLevel string `hcl:"log_level,optional"`

	Servers []*Server `hcl:"server,block"`
	Queries []*Query  `hcl:"query,block"`
	Writes  []*Write  `hcl:"write,block"`

	// Bridge configures the Kafka host used by the serve command.
	Bridge *Bridge `hcl:"bridge,block"`
}

// Server configures one historian Web API server.
type Server struct {
	Name string `hcl:"name,label"`

	// BaseURL is the Web API root, with or without scheme, e.g.
	// "historian.example.com/piwebapi".
	BaseURL string `hcl:"base_url"`

	// UseTLS selects https when BaseURL has no scheme.
	UseTLS bool `hcl:"use_tls,optional"`

	// AuthMethod is "basic" or "anonymous".
	AuthMethod string `hcl:"auth_method,optional"`
	Username   string `hcl:"username,optional"`
	Password   string `hcl:"password,optional"`

	// Timeout bounds each request, e.g. "10s". Default: 30s
	Timeout string `hcl:"timeout,optional"`

	TLS *TLS `hcl:"tls,block"`
}

// TLS configures client certificates and trust for a server.
type TLS struct {
	CertFile   string `hcl:"cert_file,optional"`
	KeyFile    string `hcl:"key_file,optional"`
	CAFile     string `hcl:"ca_file,optional"`
	SkipVerify bool   `hcl:"skip_verify,optional"`
}

// Query configures a querier node.
type Query struct {
	Name   string `hcl:"name,label"`
	Server string `hcl:"server"`
	Method string `hcl:"method"`

	WebID     string `hcl:"web_id,optional"`
	DataType  string `hcl:"data_type,optional"`
	StartTime string `hcl:"start_time,optional"`
	EndTime   string `hcl:"end_time,optional"`

	Database string `hcl:"database,optional"`
	Tag      string `hcl:"tag,optional"`

	CustomURL string `hcl:"custom_url,optional"`
	OrderBy   string `hcl:"order_by,optional"`
}

// Write configures a writer node.
type Write struct {
	Name   string `hcl:"name,label"`
	Server string `hcl:"server"`
	Method string `hcl:"method"`

	// RequestMethod is the HTTP method used for the write. Default: POST
	RequestMethod string `hcl:"request_method,optional"`

	WebID     string `hcl:"web_id,optional"`
	Database  string `hcl:"database,optional"`
	Tag       string `hcl:"tag,optional"`
	CustomURL string `hcl:"custom_url,optional"`
}

// Bridge configures the Kafka invocation bridge.
type Bridge struct {
	Brokers          []string `hcl:"brokers,optional"`
	InvocationTopic  string   `hcl:"invocation_topic,optional"`
	ResultTopic      string   `hcl:"result_topic,optional"`
	ErrorTopic       string   `hcl:"error_topic,optional"`
	ConsumerGroup    string   `hcl:"consumer_group,optional"`
	ConsumeFromStart bool     `hcl:"consume_from_start,optional"`
}

// Load reads and decodes the HCL (or HCL JSON) file at path from fs.
func Load(fs afero.Fs, path string) (*Config, error) {
	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := hclsimple.Decode(path, src, nil, &cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	return &cfg, nil
}

// LookupServer returns the server block named name.
func (c *Config) LookupServer(name string) (*Server, bool) {
	for _, s := range c.Servers {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Validate checks the whole file and reports every problem found.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := validation.Validate(strings.ToLower(c.LogLevel),
		validation.In("", "trace", "debug", "info", "warn", "error")); err != nil {
		result = multierror.Append(result, fmt.Errorf("log_level: %w", err))
	}

	seen := make(map[string]string)
	unique := func(kind, name string) {
		if prev, ok := seen[name]; ok {
			result = multierror.Append(result,
				fmt.Errorf("%s %q: name already used by a %s block", kind, name, prev))
			return
		}
		seen[name] = kind
	}

	servers := make(map[string]bool)
	for _, s := range c.Servers {
		if servers[s.Name] {
			result = multierror.Append(result, fmt.Errorf("server %q: duplicate name", s.Name))
		}
		servers[s.Name] = true

		if _, err := s.ServerConfig(); err != nil {
			result = multierror.Append(result, fmt.Errorf("server %q: %w", s.Name, err))
		}
	}

	for _, q := range c.Queries {
		unique("query", q.Name)
		if !servers[q.Server] {
			result = multierror.Append(result, fmt.Errorf("query %q: unknown server %q", q.Name, q.Server))
		}
		if _, err := q.QueryConfig(nil); err != nil {
			result = multierror.Append(result, fmt.Errorf("query %q: %w", q.Name, err))
		}
	}

	for _, w := range c.Writes {
		unique("write", w.Name)
		if !servers[w.Server] {
			result = multierror.Append(result, fmt.Errorf("write %q: unknown server %q", w.Name, w.Server))
		}
		if _, err := w.WriteConfig(nil); err != nil {
			result = multierror.Append(result, fmt.Errorf("write %q: %w", w.Name, err))
		}
	}

	if c.Bridge != nil {
		if err := c.Bridge.Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("bridge: %w", err))
		}
	}

	return result.ErrorOrNil()
}

// ServerConfig converts the block into a validated client configuration.
func (s *Server) ServerConfig() (webapi.ServerConfig, error) {
	cfg := webapi.ServerConfig{
		BaseURL:    s.BaseURL,
		UseTLS:     s.UseTLS,
		AuthMethod: webapi.AuthMethod(strings.ToLower(s.AuthMethod)),
		Username:   s.Username,
		Password:   s.Password,
	}

	if s.Timeout != "" {
		d, err := time.ParseDuration(s.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("invalid timeout %q: %w", s.Timeout, err)
		}
		cfg.Timeout = d
	}

	if s.TLS != nil {
		cfg.TLS = &webapi.TLSConfig{
			CertFile:   s.TLS.CertFile,
			KeyFile:    s.TLS.KeyFile,
			CAFile:     s.TLS.CAFile,
			SkipVerify: s.TLS.SkipVerify,
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// QueryConfig converts the block into a querier configuration bound to
// server. Mode and sort order are parsed and a time window is rejected where
// it would be ignored; other mode-specific fields are checked by the querier
// itself.
func (q *Query) QueryConfig(server dispatch.Server) (dispatch.QueryConfig, error) {
	mode, err := dispatch.ParseQueryMode(q.Method)
	if err != nil {
		return dispatch.QueryConfig{}, webapi.NewConfigErrorf("Query", webapi.CodeQueryMethodMissing, "%w", err)
	}

	order, err := dispatch.ParseSortOrder(q.OrderBy)
	if err != nil {
		return dispatch.QueryConfig{}, fmt.Errorf("order_by: %w", err)
	}

	if (q.StartTime != "" || q.EndTime != "") && !mode.TakesTimeWindow(q.DataType) {
		return dispatch.QueryConfig{}, fmt.Errorf(
			"start_time and end_time apply only to stream reads by webId or path, not method %q with data_type %q",
			mode, q.DataType)
	}

	return dispatch.QueryConfig{
		Server:    server,
		Mode:      mode,
		WebID:     q.WebID,
		DataType:  q.DataType,
		StartTime: q.StartTime,
		EndTime:   q.EndTime,
		Database:  q.Database,
		Tag:       q.Tag,
		CustomURL: q.CustomURL,
		Order:     order,
	}, nil
}

// WriteConfig converts the block into a writer configuration bound to
// server.
func (w *Write) WriteConfig(server dispatch.Server) (dispatch.WriteConfig, error) {
	mode, err := dispatch.ParseWriteMode(w.Method)
	if err != nil {
		return dispatch.WriteConfig{}, webapi.NewConfigErrorf("Write", webapi.CodeWriteMethodMissing, "%w", err)
	}

	return dispatch.WriteConfig{
		Server:        server,
		Mode:          mode,
		RequestMethod: w.RequestMethod,
		WebID:         w.WebID,
		Database:      w.Database,
		Tag:           w.Tag,
		CustomURL:     w.CustomURL,
	}, nil
}

// Validate checks the bridge block. Empty fields fall back to environment
// variables and defaults, so only set values are checked.
func (b *Bridge) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Brokers, validation.Each(validation.Required)),
		validation.Field(&b.ResultTopic, validation.By(differsFrom(b.InvocationTopic, "invocation_topic"))),
		validation.Field(&b.ErrorTopic, validation.By(differsFrom(b.InvocationTopic, "invocation_topic"))),
	)
}

func differsFrom(other, name string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != "" && s == other {
			return fmt.Errorf("must differ from %s", name)
		}
		return nil
	}
}
