package config

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"github.com/sensetecnic/webapi-bridge/pkg/dispatch"
	"github.com/sensetecnic/webapi-bridge/pkg/webapi"
)

// Level returns the configured log level, or Info when unset or unknown.
func (c *Config) Level() hclog.Level {
	level := hclog.LevelFromString(c.LogLevel)
	if level == hclog.NoLevel {
		return hclog.Info
	}
	return level
}

// Clients creates one Web API client per server block, keyed by name.
func (c *Config) Clients(fs afero.Fs, logger hclog.Logger) (map[string]*webapi.Client, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	clients := make(map[string]*webapi.Client, len(c.Servers))
	var result *multierror.Error

	for _, s := range c.Servers {
		cfg, err := s.ServerConfig()
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("server %q: %w", s.Name, err))
			continue
		}

		client, err := webapi.NewClient(cfg,
			webapi.WithFs(fs),
			webapi.WithLogger(logger.With("server", s.Name)),
		)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("server %q: %w", s.Name, err))
			continue
		}
		clients[s.Name] = client
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return clients, nil
}

// Nodes builds every query and write block into a validated node bound to
// its server's client.
func (c *Config) Nodes(clients map[string]*webapi.Client, logger hclog.Logger) ([]dispatch.Node, error) {
	var (
		nodes  []dispatch.Node
		result *multierror.Error
	)

	lookup := func(name string) dispatch.Server {
		if client, ok := clients[name]; ok {
			return client
		}
		return nil
	}

	add := func(kind, name string, n dispatch.Node, err error) {
		if err == nil {
			err = n.Validate()
		}
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s %q: %w", kind, name, err))
			return
		}
		nodes = append(nodes, n)
	}

	for _, q := range c.Queries {
		cfg, err := q.QueryConfig(lookup(q.Server))
		add("query", q.Name, dispatch.NewQuerier(q.Name, cfg, logger), err)
	}
	for _, w := range c.Writes {
		cfg, err := w.WriteConfig(lookup(w.Server))
		add("write", w.Name, dispatch.NewWriter(w.Name, cfg, logger), err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return nodes, nil
}
