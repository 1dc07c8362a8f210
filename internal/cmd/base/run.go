package base

import (
	"fmt"

	"github.com/sensetecnic/webapi-bridge/pkg/dispatch"
)

// RunNode loads the config, runs msg through the node named name once and
// prints the outcome. accept rejects nodes of the wrong kind.
func (c *Command) RunNode(name, kind string, accept func(dispatch.Node) bool, msg dispatch.Message) int {
	cfg, err := c.LoadConfig()
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading config: %v", err))
		return 1
	}

	nodes, _, err := c.Nodes(cfg)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error building nodes: %v", err))
		return 1
	}

	emitter := &UIEmitter{UI: c.UI}
	d, err := dispatch.NewDispatcher(emitter, c.Log, nodes...)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error building dispatcher: %v", err))
		return 1
	}

	n, ok := d.Node(name)
	if !ok || !accept(n) {
		c.UI.Error(fmt.Sprintf("no %s named %q", kind, name))
		return 1
	}

	ctx, cancel := SignalContext()
	defer cancel()

	if err := d.Dispatch(ctx, name, msg); err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	if emitter.Failed {
		return 1
	}
	return 0
}
