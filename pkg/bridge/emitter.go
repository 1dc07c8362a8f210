package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/sensetecnic/webapi-bridge/pkg/dispatch"
	"github.com/sensetecnic/webapi-bridge/pkg/webapi"
)

// Producer publishes records synchronously. *kgo.Client implements it.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// defaultProduceRetries bounds how often an outcome record is re-published
// before the consumer rewinds to the invocation for redelivery.
const defaultProduceRetries = 5

// Emitter publishes dispatch outcomes to the result and error topics.
type Emitter struct {
	producer    Producer
	resultTopic string
	errorTopic  string
	logger      hclog.Logger

	// newBackOff builds the retry policy for one publish.
	newBackOff func() backoff.BackOff
	now        func() time.Time
}

var _ dispatch.Emitter = (*Emitter)(nil)

// NewEmitter returns an emitter publishing through producer.
func NewEmitter(producer Producer, resultTopic, errorTopic string, logger hclog.Logger) *Emitter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Emitter{
		producer:    producer,
		resultTopic: resultTopic,
		errorTopic:  errorTopic,
		logger:      logger.Named("emitter"),
		newBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), defaultProduceRetries)
		},
		now: time.Now,
	}
}

// Send publishes a ResultEvent.
func (e *Emitter) Send(ctx context.Context, node string, msg dispatch.Message, result any) error {
	return e.publish(ctx, e.resultTopic, msg.ID, node, "result", ResultEvent{
		ID:        msg.ID,
		Node:      node,
		Result:    result,
		Timestamp: e.now().UTC(),
	})
}

// Error publishes an ErrorEvent. Structured failures keep their kind, code,
// status and payload.
func (e *Emitter) Error(ctx context.Context, node string, msg dispatch.Message, err error) error {
	event := ErrorEvent{
		ID:        msg.ID,
		Node:      node,
		Error:     err.Error(),
		Timestamp: e.now().UTC(),
	}
	kind := "error"
	if f, ok := webapi.AsFailure(err); ok {
		event.Failure = f
		kind = string(f.Kind)
	}
	return e.publish(ctx, e.errorTopic, msg.ID, node, kind, event)
}

func (e *Emitter) publish(ctx context.Context, topic, key, node, kind string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "node", Value: []byte(node)},
			{Key: "kind", Value: []byte(kind)},
		},
	}

	attempt := 0
	op := func() error {
		attempt++
		err := e.producer.ProduceSync(ctx, record).FirstErr()
		if err != nil {
			e.logger.Warn("failed to publish event",
				"topic", topic,
				"key", key,
				"attempt", attempt,
				"error", err,
			)
		}
		return err
	}

	if err := backoff.Retry(op, backoff.WithContext(e.newBackOff(), ctx)); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	e.logger.Debug("published event", "topic", topic, "key", key, "kind", kind)
	return nil
}
