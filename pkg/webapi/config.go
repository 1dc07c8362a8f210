package webapi

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/afero"
)

// DefaultTimeout bounds every request when ServerConfig.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// ServerConfig describes one historian Web API endpoint.
type ServerConfig struct {
	// BaseURL is the Web API root, e.g. "historian.example.com/piwebapi".
	// When it carries no scheme, UseTLS selects http or https.
	BaseURL string `json:"baseUrl"`

	// UseTLS selects https for a BaseURL without scheme.
	UseTLS bool `json:"useTls"`

	// AuthMethod is "basic" or "anonymous".
	AuthMethod AuthMethod `json:"authMethod"`

	// Username and Password are only used by basic authentication.
	Username string `json:"username"`
	Password string `json:"-"`

	// TLS holds optional client certificate and CA material.
	TLS *TLSConfig `json:"tls,omitempty"`

	// Timeout for a single request. Default: 30 seconds
	Timeout time.Duration `json:"timeout,omitempty"`
}

// TLSConfig holds TLS material. Paths are read when the transport is built.
type TLSConfig struct {
	CertFile string `json:"certFile,omitempty"`
	KeyFile  string `json:"keyFile,omitempty"`
	CAFile   string `json:"caFile,omitempty"`

	// SkipVerify disables peer certificate verification. Only for servers
	// with self-signed certificates that cannot be added through CAFile.
	SkipVerify bool `json:"skipVerify,omitempty"`
}

// Validate implements validation.Validatable.
func (t *TLSConfig) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.CertFile, validation.When(t.KeyFile != "", validation.Required.Error("is required when keyFile is set"))),
		validation.Field(&t.KeyFile, validation.When(t.CertFile != "", validation.Required.Error("is required when certFile is set"))),
	)
}

// Credentials returns the configured basic credentials, or nil.
func (c *ServerConfig) Credentials() *Credentials {
	if c.Username == "" {
		return nil
	}
	return &Credentials{Username: c.Username, Password: c.Password}
}

// Validate checks that the configuration can be used to build a client.
func (c *ServerConfig) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, validation.By(validBaseURL)),
		validation.Field(&c.AuthMethod, validation.Required, validation.In(AuthBasic, AuthAnonymous)),
		validation.Field(&c.Username, validation.When(c.AuthMethod == AuthBasic, validation.Required)),
		validation.Field(&c.TLS),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
	if err == nil {
		return nil
	}

	code := CodeClientUndefined
	var errs validation.Errors
	if errors.As(err, &errs) {
		if _, ok := errs["authMethod"]; ok {
			code = CodeAuthMethodMissing
		} else if _, ok := errs["username"]; ok {
			code = CodeAuthMethodMissing
		}
	}
	return NewConfigErrorf("ServerConfig.Validate", code, "%w", err)
}

func validBaseURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https scheme, got: %s", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}

// Endpoint returns the absolute base URL without trailing slash.
func (c *ServerConfig) Endpoint() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if strings.Contains(base, "://") {
		return base
	}
	if c.UseTLS {
		return "https://" + base
	}
	return "http://" + base
}

// TLSClientConfig builds the TLS settings for this server, reading certificate
// material from fs. Peer verification stays on unless TLS.SkipVerify is set.
func (c *ServerConfig) TLSClientConfig(fs afero.Fs) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if c.TLS == nil {
		return cfg, nil
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}

	if c.TLS.CertFile != "" {
		certPEM, err := afero.ReadFile(fs, c.TLS.CertFile)
		if err != nil {
			return nil, fmt.Errorf("read client certificate: %w", err)
		}
		keyPEM, err := afero.ReadFile(fs, c.TLS.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("read client key: %w", err)
		}
		pair, err := tls.X509KeyPair(certPEM, keyPEM)
		if err != nil {
			return nil, fmt.Errorf("tls pair: %w", err)
		}
		cfg.Certificates = []tls.Certificate{pair}
	}

	if c.TLS.CAFile != "" {
		caPEM, err := afero.ReadFile(fs, c.TLS.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("no certificates found in %s", c.TLS.CAFile)
		}
		cfg.RootCAs = pool
	}

	cfg.InsecureSkipVerify = c.TLS.SkipVerify
	return cfg, nil
}

// NewHTTPClient creates the HTTP client used by HTTPTransport.
func (c *ServerConfig) NewHTTPClient(fs afero.Fs) (*http.Client, error) {
	tlsConfig, err := c.TLSClientConfig(fs)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig:     tlsConfig,
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}
