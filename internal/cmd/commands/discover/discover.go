package discover

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sensetecnic/webapi-bridge/internal/cmd/base"
	"github.com/sensetecnic/webapi-bridge/pkg/dispatch"
)

var targets = map[string]dispatch.QueryMode{
	"asset-servers":   dispatch.QueryListAllAssetServers,
	"data-servers":    dispatch.QueryListAllDataServers,
	"asset-databases": dispatch.QueryListAllAssetDb,
	"points":          dispatch.QueryListAllPoints,
}

type Command struct {
	*base.Command

	flagServer string
}

func (c *Command) Synopsis() string {
	return "List servers, asset databases or points"
}

func (c *Command) Help() string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)

	return `Usage: webapi-bridge discover -config=bridge.hcl -server=<name> <target>

  Lists what a server exposes. <target> is one of: ` + strings.Join(names, ", ") + `.
  asset-databases and points query every asset or data server in parallel
  and print one listing per server.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("discover", flag.ContinueOnError))
	c.ConfigFlags(f)

	f.StringVar(
		&c.flagServer, "server", "",
		"(Required) Name of the server block to query",
	)

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	if f.NArg() != 1 {
		c.UI.Error("expected exactly one discovery target")
		return 1
	}
	mode, ok := targets[f.Arg(0)]
	if !ok {
		c.UI.Error(fmt.Sprintf("unknown discovery target %q", f.Arg(0)))
		return 1
	}
	if c.flagServer == "" {
		c.UI.Error("server flag is required")
		return 1
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading config: %v", err))
		return 1
	}

	clients, err := cfg.Clients(c.Fs, c.Log)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error building clients: %v", err))
		return 1
	}
	client, ok := clients[c.flagServer]
	if !ok {
		c.UI.Error(fmt.Sprintf("no server named %q", c.flagServer))
		return 1
	}

	name := "discover-" + f.Arg(0)
	querier := dispatch.NewQuerier(name, dispatch.QueryConfig{Server: client, Mode: mode}, c.Log)

	emitter := &base.UIEmitter{UI: c.UI}
	d, err := dispatch.NewDispatcher(emitter, c.Log, querier)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	ctx, cancel := base.SignalContext()
	defer cancel()

	if err := d.Dispatch(ctx, name, dispatch.Message{ID: uuid.NewString()}); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	if emitter.Failed {
		return 1
	}
	return 0
}
