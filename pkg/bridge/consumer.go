package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/sensetecnic/webapi-bridge/pkg/dispatch"
)

// Consumer consumes invocations from Redpanda, dispatches them to nodes and
// publishes the outcomes.
type Consumer struct {
	kafkaClient *kgo.Client
	handler     *handler
	logger      hclog.Logger
	stopCh      chan struct{}
}

// Config holds configuration for the consumer.
type Config struct {
	// Kafka/Redpanda configuration
	Brokers         []string
	InvocationTopic string
	ResultTopic     string
	ErrorTopic      string
	ConsumerGroup   string

	// Consumer offset configuration (optional, defaults to AtEnd for new consumers)
	ConsumeFromStart bool

	// Nodes receive invocations by name.
	Nodes []dispatch.Node

	// Logger
	Logger hclog.Logger
}

// New creates a new bridge consumer.
func New(cfg Config) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.InvocationTopic == "" {
		return nil, fmt.Errorf("invocation topic is required")
	}
	if cfg.ResultTopic == "" || cfg.ErrorTopic == "" {
		return nil, fmt.Errorf("result and error topics are required")
	}
	if cfg.ConsumerGroup == "" {
		cfg.ConsumerGroup = "webapi-bridge"
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	logger := cfg.Logger.Named("bridge")

	offset := kgo.NewOffset().AtEnd()
	if cfg.ConsumeFromStart {
		offset = kgo.NewOffset().AtStart()
	}

	// One client consumes invocations and produces outcomes.
	kafkaClient, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.ConsumerGroup),
		kgo.ConsumeTopics(cfg.InvocationTopic),

		// Consumer configuration
		kgo.ConsumeResetOffset(offset),
		kgo.SessionTimeout(10*time.Second),
		kgo.RebalanceTimeout(30*time.Second),
		kgo.DisableAutoCommit(), // Committed after the outcome is published

		// Fetch configuration
		kgo.FetchMaxWait(500*time.Millisecond),
		kgo.FetchMinBytes(1),
		kgo.FetchMaxBytes(5<<20), // 5MB

		// Producer durability settings
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(10*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	emitter := NewEmitter(kafkaClient, cfg.ResultTopic, cfg.ErrorTopic, logger)
	dispatcher, err := dispatch.NewDispatcher(emitter, logger, cfg.Nodes...)
	if err != nil {
		kafkaClient.Close()
		return nil, err
	}

	return &Consumer{
		kafkaClient: kafkaClient,
		handler:     &handler{dispatcher: dispatcher, emitter: emitter, logger: logger},
		logger:      logger,
		stopCh:      make(chan struct{}),
	}, nil
}

// Start starts the consumer polling loop.
// Blocks until Stop() is called or context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	group, _ := c.kafkaClient.GroupMetadata()
	c.logger.Info("starting bridge consumer",
		"consumer_group", group,
		"nodes", c.handler.dispatcher.Names(),
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("bridge consumer stopped by context")
			return ctx.Err()

		case <-c.stopCh:
			c.logger.Info("bridge consumer stopped")
			return nil

		default:
			fetches := c.kafkaClient.PollFetches(ctx)

			if errs := fetches.Errors(); len(errs) > 0 {
				for _, err := range errs {
					c.logger.Error("kafka fetch error", "error", err.Err)
				}
				continue
			}

			fetches.EachPartition(func(p kgo.FetchTopicPartition) {
				c.handler.handlePartition(ctx, c.kafkaClient, p)
			})
		}
	}
}

// Stop gracefully stops the consumer.
func (c *Consumer) Stop() {
	select {
	case <-c.stopCh:
		// Already stopped
		return
	default:
		close(c.stopCh)
		c.kafkaClient.Close()
	}
}

// handler turns one record into one published outcome.
type handler struct {
	dispatcher *dispatch.Dispatcher
	emitter    dispatch.Emitter
	logger     hclog.Logger
}

// offsetTracker commits handled records and rewinds a partition. *kgo.Client
// implements it.
type offsetTracker interface {
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
	SetOffsets(offsets map[string]map[int32]kgo.EpochOffset)
}

// handlePartition handles p's records in order, committing each after its
// outcome is published. On a publish failure the rest of the batch is
// skipped and the partition is rewound to the failed record, so the next
// poll redelivers it and nothing past it is committed.
func (h *handler) handlePartition(ctx context.Context, offsets offsetTracker, p kgo.FetchTopicPartition) {
	for _, record := range p.Records {
		if err := h.handle(ctx, record); err != nil {
			h.logger.Error("failed to publish outcome, rewinding partition",
				"topic", record.Topic,
				"partition", record.Partition,
				"offset", record.Offset,
				"error", err,
			)
			offsets.SetOffsets(map[string]map[int32]kgo.EpochOffset{
				record.Topic: {record.Partition: {Epoch: record.LeaderEpoch, Offset: record.Offset}},
			})
			return
		}

		if err := offsets.CommitRecords(ctx, record); err != nil {
			h.logger.Warn("failed to commit Kafka offset",
				"partition", record.Partition,
				"offset", record.Offset,
				"error", err)
		}
	}
}

// handle dispatches record. Undecodable records are reported to the error
// topic so they do not block the partition. The returned error is a publish
// failure.
func (h *handler) handle(ctx context.Context, record *kgo.Record) error {
	h.logger.Debug("processing record",
		"partition", record.Partition,
		"offset", record.Offset,
		"key", string(record.Key),
	)

	inv, err := DecodeInvocation(record.Value)
	if err != nil {
		h.logger.Warn("rejecting invocation", "offset", record.Offset, "error", err)
		return h.emitter.Error(ctx, inv.Node, dispatch.Message{ID: string(record.Key)}, err)
	}

	return h.dispatcher.Dispatch(ctx, inv.Node, inv.Message())
}
