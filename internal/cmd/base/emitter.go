package base

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/cli"

	"github.com/sensetecnic/webapi-bridge/pkg/dispatch"
	"github.com/sensetecnic/webapi-bridge/pkg/webapi"
)

// UIEmitter prints results as indented JSON and failures as errors.
type UIEmitter struct {
	UI cli.Ui

	// Failed is set once any failure was emitted.
	Failed bool
}

var _ dispatch.Emitter = (*UIEmitter)(nil)

func (e *UIEmitter) Send(_ context.Context, _ string, _ dispatch.Message, result any) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	e.UI.Output(string(out))
	return nil
}

func (e *UIEmitter) Error(_ context.Context, node string, _ dispatch.Message, err error) error {
	e.Failed = true
	e.UI.Error(fmt.Sprintf("%s: %v", node, err))

	if f, ok := webapi.AsFailure(err); ok && f.Payload != nil {
		if out, jerr := json.MarshalIndent(f.Payload, "", "  "); jerr == nil {
			e.UI.Error(string(out))
		}
	}
	return nil
}
