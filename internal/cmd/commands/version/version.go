package version

import (
	"github.com/sensetecnic/webapi-bridge/internal/cmd/base"
	"github.com/sensetecnic/webapi-bridge/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return "Usage: webapi-bridge version"
}

func (c *Command) Run(_ []string) int {
	c.UI.Output("webapi-bridge " + version.FullVersion())
	return 0
}
