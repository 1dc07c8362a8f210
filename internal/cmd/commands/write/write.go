package write

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/sensetecnic/webapi-bridge/internal/cmd/base"
	"github.com/sensetecnic/webapi-bridge/pkg/dispatch"
)

type Command struct {
	*base.Command

	flagPayload     string
	flagPayloadFile string
}

func (c *Command) Synopsis() string {
	return "Run a configured write once"
}

func (c *Command) Help() string {
	return `Usage: webapi-bridge write -config=bridge.hcl -payload='{"Value": 42}' <name>

  Sends a JSON payload through the write block <name> and prints the JSON
  response. Without -payload or -payload-file the write is rejected.` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("write", flag.ContinueOnError))
	c.ConfigFlags(f)

	f.StringVar(
		&c.flagPayload, "payload", "",
		"JSON value to write",
	)
	f.StringVar(
		&c.flagPayloadFile, "payload-file", "",
		"Path to a file holding the JSON value to write",
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
		c.UI.Error("expected exactly one write name")
		return 1
	}
	if c.flagPayload != "" && c.flagPayloadFile != "" {
		c.UI.Error("-payload and -payload-file are mutually exclusive")
		return 1
	}

	msg := dispatch.Message{ID: uuid.NewString()}

	raw := []byte(c.flagPayload)
	if c.flagPayloadFile != "" {
		var err error
		raw, err = afero.ReadFile(c.Fs, c.flagPayloadFile)
		if err != nil {
			c.UI.Error(fmt.Sprintf("error reading payload file: %v", err))
			return 1
		}
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &msg.Payload); err != nil {
			c.UI.Error(fmt.Sprintf("error parsing payload: %v", err))
			return 1
		}
		msg.HasPayload = true
	}

	isWriter := func(n dispatch.Node) bool {
		_, ok := n.(*dispatch.Writer)
		return ok
	}
	return c.RunNode(f.Arg(0), "write", isWriter, msg)
}
