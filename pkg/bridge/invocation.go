package bridge

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/sensetecnic/webapi-bridge/pkg/dispatch"
	"github.com/sensetecnic/webapi-bridge/pkg/webapi"
)

// Invocation is a record on the invocation topic:
//
//	{"id": "...", "node": "temperature", "payload": {...}}
//
// The id is optional; one is assigned when absent.
type Invocation struct {
	ID      string `mapstructure:"id"`
	Node    string `mapstructure:"node"`
	Payload any    `mapstructure:"payload"`

	hasPayload bool
}

// Message converts the invocation into a dispatch message.
func (i Invocation) Message() dispatch.Message {
	return dispatch.Message{ID: i.ID, Payload: i.Payload, HasPayload: i.hasPayload}
}

// DecodeInvocation parses a record value.
func DecodeInvocation(value []byte) (Invocation, error) {
	var raw map[string]any
	if err := json.Unmarshal(value, &raw); err != nil {
		return Invocation{}, fmt.Errorf("failed to unmarshal invocation: %w", err)
	}

	// Weak typing accepts numeric ids.
	var inv Invocation
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &inv,
	})
	if err != nil {
		return Invocation{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Invocation{}, fmt.Errorf("failed to decode invocation: %w", err)
	}
	if inv.Node == "" {
		return inv, fmt.Errorf("invocation has no node")
	}

	_, inv.hasPayload = raw["payload"]
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	return inv, nil
}

// ResultEvent is produced to the result topic after a successful invocation.
type ResultEvent struct {
	ID        string    `json:"id"`
	Node      string    `json:"node"`
	Result    any       `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorEvent is produced to the error topic after a failed invocation.
type ErrorEvent struct {
	ID        string          `json:"id,omitempty"`
	Node      string          `json:"node,omitempty"`
	Error     string          `json:"error"`
	Failure   *webapi.Failure `json:"failure,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
