package dispatch

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/sensetecnic/webapi-bridge/pkg/webapi"
)

// Emitter receives the outcome of each dispatched message.
type Emitter interface {
	// Send delivers a successful result.
	Send(ctx context.Context, node string, msg Message, result any) error

	// Error delivers a failure.
	Error(ctx context.Context, node string, msg Message, err error) error
}

// Dispatcher routes messages to named nodes.
type Dispatcher struct {
	nodes   map[string]Node
	emitter Emitter
	logger  hclog.Logger
}

// NewDispatcher registers nodes by name. Names must be unique.
func NewDispatcher(emitter Emitter, logger hclog.Logger, nodes ...Node) (*Dispatcher, error) {
	if emitter == nil {
		return nil, fmt.Errorf("emitter is required")
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	d := &Dispatcher{
		nodes:   make(map[string]Node, len(nodes)),
		emitter: emitter,
		logger:  logger.Named("dispatch"),
	}
	for _, n := range nodes {
		if _, exists := d.nodes[n.Name()]; exists {
			return nil, fmt.Errorf("duplicate node name %q", n.Name())
		}
		d.nodes[n.Name()] = n
	}
	return d, nil
}

// Node returns the node registered as name.
func (d *Dispatcher) Node(name string) (Node, bool) {
	n, ok := d.nodes[name]
	return n, ok
}

// Names returns the registered node names in sorted order.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.nodes))
	for name := range d.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs msg through the named node and hands the outcome to the
// emitter. The returned error is the emitter's, never the node's.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, msg Message) error {
	result, err := d.run(ctx, name, msg)
	if err != nil {
		d.logger.Warn("invocation failed", "node", name, "msg_id", msg.ID, "error", err)
		return d.emitter.Error(ctx, name, msg, err)
	}

	d.logger.Debug("invocation succeeded", "node", name, "msg_id", msg.ID)
	return d.emitter.Send(ctx, name, msg, result)
}

func (d *Dispatcher) run(ctx context.Context, name string, msg Message) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("node panicked", "node", name, "panic", r)
			result, err = nil, fmt.Errorf("node %q panicked: %v", name, r)
		}
	}()

	n, ok := d.nodes[name]
	if !ok {
		return nil, webapi.NewConfigErrorf("Dispatch", webapi.CodeClientUndefined, "no node named %q", name)
	}
	return n.Handle(ctx, msg)
}
