package dispatch

import (
	"context"
	"sync"

	"github.com/sensetecnic/webapi-bridge/pkg/webapi"
)

// call is one request seen by fakeServer.
type call struct {
	Op     string
	ID     webapi.Identity
	Opts   webapi.QueryOptions
	Method string
	Body   any
}

// fakeServer records calls and answers with a canned result.
type fakeServer struct {
	mu     sync.Mutex
	calls  []call
	result any
	list   []any
	err    error
}

func (f *fakeServer) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeServer) seen() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeServer) Query(_ context.Context, id webapi.Identity, opts webapi.QueryOptions) (any, error) {
	f.record(call{Op: "Query", ID: id, Opts: opts})
	return f.result, f.err
}

func (f *fakeServer) Write(_ context.Context, id webapi.Identity, method string, body any) (any, error) {
	f.record(call{Op: "Write", ID: id, Method: method, Body: body})
	return f.result, f.err
}

func (f *fakeServer) ListAllAssetServers(context.Context) (any, error) {
	f.record(call{Op: "ListAllAssetServers"})
	return f.result, f.err
}

func (f *fakeServer) ListAllDataServers(context.Context) (any, error) {
	f.record(call{Op: "ListAllDataServers"})
	return f.result, f.err
}

func (f *fakeServer) ListAllAssetDatabases(context.Context) ([]any, error) {
	f.record(call{Op: "ListAllAssetDatabases"})
	return f.list, f.err
}

func (f *fakeServer) ListAllPoints(context.Context) ([]any, error) {
	f.record(call{Op: "ListAllPoints"})
	return f.list, f.err
}

// outcome is one emitted result or error.
type outcome struct {
	Node   string
	Msg    Message
	Result any
	Err    error
}

// captureEmitter stores every outcome it receives.
type captureEmitter struct {
	mu     sync.Mutex
	sent   []outcome
	failed []outcome
}

func (e *captureEmitter) Send(_ context.Context, node string, msg Message, result any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = append(e.sent, outcome{Node: node, Msg: msg, Result: result})
	return nil
}

func (e *captureEmitter) Error(_ context.Context, node string, msg Message, err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failed = append(e.failed, outcome{Node: node, Msg: msg, Err: err})
	return nil
}
