package query

import (
	"flag"
	"fmt"

	"github.com/google/uuid"

	"github.com/sensetecnic/webapi-bridge/internal/cmd/base"
	"github.com/sensetecnic/webapi-bridge/pkg/dispatch"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Run a configured query once"
}

func (c *Command) Help() string {
	return `Usage: webapi-bridge query -config=bridge.hcl <name>

  Runs the query block <name> against its server and prints the JSON result.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("query", flag.ContinueOnError))
	c.ConfigFlags(f)
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	if f.NArg() != 1 {
		c.UI.Error("expected exactly one query name")
		return 1
	}

	isQuerier := func(n dispatch.Node) bool {
		_, ok := n.(*dispatch.Querier)
		return ok
	}
	return c.RunNode(f.Arg(0), "query", isQuerier, dispatch.Message{ID: uuid.NewString()})
}
