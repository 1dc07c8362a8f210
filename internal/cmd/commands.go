package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/sensetecnic/webapi-bridge/internal/cmd/base"
	"github.com/sensetecnic/webapi-bridge/internal/cmd/commands/discover"
	"github.com/sensetecnic/webapi-bridge/internal/cmd/commands/query"
	"github.com/sensetecnic/webapi-bridge/internal/cmd/commands/serve"
	"github.com/sensetecnic/webapi-bridge/internal/cmd/commands/validate"
	"github.com/sensetecnic/webapi-bridge/internal/cmd/commands/version"
	"github.com/sensetecnic/webapi-bridge/internal/cmd/commands/write"
)

// Commands is the mapping of all available commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := base.NewCommand(log, ui)

	Commands = map[string]cli.CommandFactory{
		"discover": func() (cli.Command, error) {
			return &discover.Command{Command: b}, nil
		},
		"query": func() (cli.Command, error) {
			return &query.Command{Command: b}, nil
		},
		"serve": func() (cli.Command, error) {
			return &serve.Command{Command: b}, nil
		},
		"validate": func() (cli.Command, error) {
			return &validate.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
		"write": func() (cli.Command, error) {
			return &write.Command{Command: b}, nil
		},
	}
}
