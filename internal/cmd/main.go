package cmd

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/sensetecnic/webapi-bridge/internal/version"
)

// EnvLogFormat selects the log encoding: "json" or the default text format.
const EnvLogFormat = "WEBAPI_BRIDGE_LOG_FORMAT"

// Main runs the CLI with the given arguments and returns the exit code.
func Main(args []string) int {
	name := args[0]
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	// Logs go to stderr so stdout carries only results.
	log := newLogger(name, os.Stderr, os.Getenv(EnvLogFormat))

	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(os.Stdin),
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}
	initCommands(log, ui)

	rest := args[1:]
	if len(rest) == 1 && (rest[0] == "-version" || rest[0] == "-v") {
		rest = []string{"version"}
	}

	c := &cli.CLI{
		Name:     name,
		Args:     rest,
		Version:  version.FullVersion(),
		Commands: Commands,
		HelpFunc: cli.BasicHelpFunc(name),
	}

	exitCode, err := c.Run()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	return exitCode
}

func newLogger(name string, w io.Writer, format string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.Info,
		Output:     w,
		JSONFormat: strings.EqualFold(format, "json"),
	})
}
