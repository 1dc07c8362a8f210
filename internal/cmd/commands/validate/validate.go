package validate

import (
	"flag"
	"fmt"

	"github.com/sensetecnic/webapi-bridge/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Check a config file without contacting any server"
}

func (c *Command) Help() string {
	return `Usage: webapi-bridge validate -config=bridge.hcl

  Loads the config file, reports every problem found and builds each
  server, query and write block. No request is sent.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("validate", flag.ContinueOnError))
	c.ConfigFlags(f)
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		c.UI.Error(fmt.Sprintf("invalid config: %v", err))
		return 1
	}

	nodes, clients, err := c.Nodes(cfg)
	if err != nil {
		c.UI.Error(fmt.Sprintf("invalid config: %v", err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("Configuration is valid: %d server(s), %d node(s)", len(clients), len(nodes)))
	return 0
}
