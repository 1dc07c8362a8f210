package kafka

import (
	"os"
	"strings"

	"github.com/sensetecnic/webapi-bridge/internal/config"
)

// Environment variables that override the bridge block.
const (
	EnvBrokers         = "WEBAPI_BRIDGE_BROKERS"
	EnvInvocationTopic = "WEBAPI_BRIDGE_INVOCATION_TOPIC"
	EnvResultTopic     = "WEBAPI_BRIDGE_RESULT_TOPIC"
	EnvErrorTopic      = "WEBAPI_BRIDGE_ERROR_TOPIC"
	EnvConsumerGroup   = "WEBAPI_BRIDGE_CONSUMER_GROUP"
)

const (
	DefaultBroker          = "localhost:19092"
	DefaultInvocationTopic = "webapi.invocations"
	DefaultResultTopic     = "webapi.results"
	DefaultErrorTopic      = "webapi.errors"
	DefaultConsumerGroup   = "webapi-bridge"
)

// GetBrokers returns the Kafka/Redpanda broker addresses.
// It checks environment variables first, then falls back to config, then default.
// The environment variable holds a comma separated list.
func GetBrokers(cfg *config.Bridge) []string {
	if brokers := os.Getenv(EnvBrokers); brokers != "" {
		var out []string
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				out = append(out, b)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	if cfg != nil && len(cfg.Brokers) > 0 {
		return cfg.Brokers
	}

	return []string{DefaultBroker}
}

// GetInvocationTopic returns the topic invocations are consumed from.
func GetInvocationTopic(cfg *config.Bridge) string {
	var fromConfig string
	if cfg != nil {
		fromConfig = cfg.InvocationTopic
	}
	return lookup(EnvInvocationTopic, fromConfig, DefaultInvocationTopic)
}

// GetResultTopic returns the topic successful results are produced to.
func GetResultTopic(cfg *config.Bridge) string {
	var fromConfig string
	if cfg != nil {
		fromConfig = cfg.ResultTopic
	}
	return lookup(EnvResultTopic, fromConfig, DefaultResultTopic)
}

// GetErrorTopic returns the topic failures are produced to.
func GetErrorTopic(cfg *config.Bridge) string {
	var fromConfig string
	if cfg != nil {
		fromConfig = cfg.ErrorTopic
	}
	return lookup(EnvErrorTopic, fromConfig, DefaultErrorTopic)
}

// GetConsumerGroup returns the consumer group name for bridge workers.
// It checks environment variables first, then falls back to config, then default.
func GetConsumerGroup(cfg *config.Bridge) string {
	var fromConfig string
	if cfg != nil {
		fromConfig = cfg.ConsumerGroup
	}
	return lookup(EnvConsumerGroup, fromConfig, DefaultConsumerGroup)
}

func lookup(env, fromConfig, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	if fromConfig != "" {
		return fromConfig
	}
	return def
}
