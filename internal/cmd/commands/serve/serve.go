package serve

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/sensetecnic/webapi-bridge/internal/cmd/base"
	"github.com/sensetecnic/webapi-bridge/internal/config"
	"github.com/sensetecnic/webapi-bridge/pkg/bridge"
	"github.com/sensetecnic/webapi-bridge/pkg/kafka"
)

type Command struct {
	*base.Command

	flagConsumeFromStart bool
}

func (c *Command) Synopsis() string {
	return "Serve invocations from Redpanda"
}

func (c *Command) Help() string {
	return `Usage: webapi-bridge serve -config=bridge.hcl

  Consumes invocation records from the invocation topic, runs each through
  the named query or write block and publishes the outcome.

  Invocation record:
    {"id": "optional-correlation-id", "node": "temperature", "payload": {...}}

  Results go to the result topic and failures to the error topic. Brokers,
  topics and the consumer group come from the bridge block and can be
  overridden with:
    ` + kafka.EnvBrokers + `, ` + kafka.EnvInvocationTopic + `,
    ` + kafka.EnvResultTopic + `, ` + kafka.EnvErrorTopic + `,
    ` + kafka.EnvConsumerGroup +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("serve", flag.ContinueOnError))
	c.ConfigFlags(f)

	f.BoolVar(
		&c.flagConsumeFromStart, "from-start", false,
		"Consume from the earliest offset when the consumer group has none",
	)

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
		c.UI.Error(fmt.Sprintf("error loading config: %v", err))
		return 1
	}

	nodes, _, err := c.Nodes(cfg)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error building nodes: %v", err))
		return 1
	}
	if len(nodes) == 0 {
		c.UI.Error("config declares no query or write blocks")
		return 1
	}

	bc := bridgeConfig(cfg.Bridge)
	bc.Nodes = nodes
	bc.Logger = c.Log
	bc.ConsumeFromStart = bc.ConsumeFromStart || c.flagConsumeFromStart

	consumer, err := bridge.New(bc)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating bridge: %v", err))
		return 1
	}
	defer consumer.Stop()

	ctx, cancel := base.SignalContext()
	defer cancel()

	c.Log.Info("serving invocations",
		"brokers", bc.Brokers,
		"invocation_topic", bc.InvocationTopic,
		"result_topic", bc.ResultTopic,
		"error_topic", bc.ErrorTopic,
		"nodes", len(nodes),
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		c.UI.Error(fmt.Sprintf("bridge stopped: %v", err))
		return 1
	}

	c.Log.Info("bridge stopped gracefully")
	return 0
}

// bridgeConfig resolves broker and topic settings, environment first.
func bridgeConfig(b *config.Bridge) bridge.Config {
	bc := bridge.Config{
		Brokers:         kafka.GetBrokers(b),
		InvocationTopic: kafka.GetInvocationTopic(b),
		ResultTopic:     kafka.GetResultTopic(b),
		ErrorTopic:      kafka.GetErrorTopic(b),
		ConsumerGroup:   kafka.GetConsumerGroup(b),
	}
	if b != nil {
		bc.ConsumeFromStart = b.ConsumeFromStart
	}
	return bc
}
