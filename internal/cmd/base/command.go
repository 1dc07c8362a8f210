package base

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/sensetecnic/webapi-bridge/internal/config"
	"github.com/sensetecnic/webapi-bridge/pkg/dispatch"
	"github.com/sensetecnic/webapi-bridge/pkg/webapi"
)

// EnvConfig names the config file when -config is not given.
const EnvConfig = "WEBAPI_BRIDGE_CONFIG"

// Command holds what every subcommand needs.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui

	// Fs is where config files and TLS material are read from.
	Fs afero.Fs

	flagConfig   string
	flagLogLevel string
}

// NewCommand returns a Command reading from the OS filesystem.
func NewCommand(log hclog.Logger, ui cli.Ui) *Command {
	return &Command{
		Log: log,
		UI:  ui,
		Fs:  afero.NewOsFs(),
	}
}

// ConfigFlags registers the flags shared by commands that read a config file.
func (c *Command) ConfigFlags(f *FlagSet) {
	f.StringVar(
		&c.flagConfig, "config", "",
		"["+EnvConfig+"] Path to the bridge config file",
	)
	f.StringVar(
		&c.flagLogLevel, "log-level", "",
		"Log level (trace, debug, info, warn, error). Overrides log_level in the config file",
	)
}

// LoadConfig reads and validates the config file and applies its log level.
func (c *Command) LoadConfig() (*config.Config, error) {
	path := c.flagConfig
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		return nil, errors.New("config file is required (-config or " + EnvConfig + ")")
	}

	cfg, err := config.Load(c.Fs, path)
	if err != nil {
		return nil, err
	}

	level := cfg.Level()
	if c.flagLogLevel != "" {
		l := hclog.LevelFromString(c.flagLogLevel)
		if l == hclog.NoLevel {
			return nil, fmt.Errorf("invalid log level %q", c.flagLogLevel)
		}
		level = l
	}
	c.Log.SetLevel(level)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Nodes builds the clients and nodes declared in cfg.
func (c *Command) Nodes(cfg *config.Config) ([]dispatch.Node, map[string]*webapi.Client, error) {
	clients, err := cfg.Clients(c.Fs, c.Log)
	if err != nil {
		return nil, nil, err
	}
	nodes, err := cfg.Nodes(clients, c.Log)
	if err != nil {
		return nil, nil, err
	}
	return nodes, clients, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
