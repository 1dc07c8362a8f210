package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensetecnic/webapi-bridge/pkg/webapi"
)

// panicNode blows up on every message.
type panicNode struct{}

func (panicNode) Name() string    { return "boom" }
func (panicNode) Validate() error { return nil }
func (panicNode) Handle(context.Context, Message) (any, error) {
	panic("unexpected")
}

func TestNewDispatcher(t *testing.T) {
	_, err := NewDispatcher(nil, nil)
	assert.Error(t, err)

	server := &fakeServer{}
	_, err = NewDispatcher(&captureEmitter{}, nil,
		NewQuerier("same", QueryConfig{Server: server, Mode: QueryListAllPoints}, nil),
		NewWriter("same", WriteConfig{Server: server, Mode: WriteCustom}, nil),
	)
	assert.ErrorContains(t, err, `duplicate node name "same"`)

	d, err := NewDispatcher(&captureEmitter{}, nil,
		NewWriter("b", WriteConfig{}, nil),
		NewQuerier("a", QueryConfig{}, nil),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, d.Names())

	n, ok := d.Node("a")
	require.True(t, ok)
	assert.Equal(t, "a", n.Name())
}

func TestDispatcher_Dispatch(t *testing.T) {
	server := &fakeServer{result: map[string]any{"Value": 1.5}}
	emitter := &captureEmitter{}

	d, err := NewDispatcher(emitter, nil,
		NewQuerier("temp", QueryConfig{Server: server, Mode: QueryByWebID, WebID: "W1"}, nil),
		NewWriter("setpoint", WriteConfig{Server: server, Mode: WriteByWebID, WebID: "W2"}, nil),
	)
	require.NoError(t, err)

	require.NoError(t, d.Dispatch(context.Background(), "temp", Message{ID: "m1"}))
	require.Len(t, emitter.sent, 1)
	assert.Equal(t, "temp", emitter.sent[0].Node)
	assert.Equal(t, "m1", emitter.sent[0].Msg.ID)
	assert.Equal(t, map[string]any{"Value": 1.5}, emitter.sent[0].Result)

	// A writer without payload fails before reaching the server.
	require.NoError(t, d.Dispatch(context.Background(), "setpoint", Message{ID: "m2"}))
	require.Len(t, emitter.failed, 1)
	assert.Equal(t, webapi.CodeCheckMsgFormat, webapi.ConfigCode(emitter.failed[0].Err))
	assert.Len(t, server.seen(), 1)
}

func TestDispatcher_UnknownNode(t *testing.T) {
	emitter := &captureEmitter{}
	d, err := NewDispatcher(emitter, nil)
	require.NoError(t, err)

	require.NoError(t, d.Dispatch(context.Background(), "missing", Message{ID: "m1"}))
	require.Len(t, emitter.failed, 1)
	assert.Equal(t, webapi.CodeClientUndefined, webapi.ConfigCode(emitter.failed[0].Err))
	assert.Contains(t, emitter.failed[0].Err.Error(), `"missing"`)
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	emitter := &captureEmitter{}
	d, err := NewDispatcher(emitter, nil, panicNode{})
	require.NoError(t, err)

	require.NotPanics(t, func() {
		require.NoError(t, d.Dispatch(context.Background(), "boom", Message{ID: "m1"}))
	})
	require.Len(t, emitter.failed, 1)
	assert.ErrorContains(t, emitter.failed[0].Err, "panicked")
}

func TestDispatcher_RemoteFailureRoutedToError(t *testing.T) {
	remote := &webapi.Failure{Kind: webapi.KindRemoteStatus, StatusCode: 404}
	server := &fakeServer{err: remote}
	emitter := &captureEmitter{}

	d, err := NewDispatcher(emitter, nil,
		NewQuerier("temp", QueryConfig{Server: server, Mode: QueryByWebID, WebID: "W1"}, nil))
	require.NoError(t, err)

	require.NoError(t, d.Dispatch(context.Background(), "temp", Message{}))
	assert.Empty(t, emitter.sent)
	require.Len(t, emitter.failed, 1)
	assert.True(t, errors.Is(emitter.failed[0].Err, webapi.ErrRemoteStatus))
}
