package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensetecnic/webapi-bridge/pkg/webapi"
)

func TestWriter_Validate(t *testing.T) {
	server := &fakeServer{}

	tests := []struct {
		name string
		cfg  WriteConfig
		code string
	}{
		{"valid webId", WriteConfig{Server: server, Mode: WriteByWebID, WebID: "W1"}, ""},
		{"valid path", WriteConfig{Server: server, Mode: WriteByPath, Database: "db", Tag: "t"}, ""},
		{"valid custom", WriteConfig{Server: server, Mode: WriteCustom, CustomURL: "/x"}, ""},
		{"no server", WriteConfig{Mode: WriteByWebID, WebID: "W1"}, webapi.CodeAuthMethodMissing},
		{"typed nil server", WriteConfig{Server: (*webapi.Client)(nil), Mode: WriteByWebID, WebID: "W1"}, webapi.CodeAuthMethodMissing},
		{"no mode", WriteConfig{Server: server}, webapi.CodeWriteMethodMissing},
		{"unknown mode", WriteConfig{Server: server, Mode: "listAllPoints"}, webapi.CodeWriteMethodMissing},
		{"no webId", WriteConfig{Server: server, Mode: WriteByWebID}, webapi.CodeWebIDMissing},
		{"no tag", WriteConfig{Server: server, Mode: WriteByPath, Database: "db"}, webapi.CodePathElementMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewWriter("w", tt.cfg, nil).Validate()
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, webapi.ErrConfig))
			assert.Equal(t, tt.code, webapi.ConfigCode(err))
		})
	}
}

func TestWriter_HandleConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  WriteConfig
		msg  Message
		code string
	}{
		{"no server", WriteConfig{Mode: WriteByWebID, WebID: "W1"}, NewMessage("1", 5), webapi.CodeClientUndefined},
		{"no mode", WriteConfig{}, NewMessage("1", 5), webapi.CodeWriteMethodMissing},
		{"no payload", WriteConfig{Mode: WriteByWebID, WebID: "W1"}, Message{ID: "1"}, webapi.CodeCheckMsgFormat},
		{"no webId", WriteConfig{Mode: WriteByWebID}, NewMessage("1", 5), webapi.CodeWebIDMissing},
		{"no database", WriteConfig{Mode: WriteByPath, Tag: "t"}, NewMessage("1", 5), webapi.CodePathElementMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := &fakeServer{}
			if tt.code != webapi.CodeClientUndefined {
				tt.cfg.Server = server
			}

			result, err := NewWriter("w", tt.cfg, nil).Handle(context.Background(), tt.msg)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, tt.code, webapi.ConfigCode(err))
			assert.Empty(t, server.seen())
		})
	}
}

func TestWriter_HandleModes(t *testing.T) {
	tests := []struct {
		name   string
		cfg    WriteConfig
		wantID webapi.Identity
		method string
	}{
		{"webId", WriteConfig{Mode: WriteByWebID, WebID: "W1"}, webapi.ByWebID("W1"), "POST"},
		{"path", WriteConfig{Mode: WriteByPath, Database: "Plant1", Tag: "Temp01", RequestMethod: "put"}, webapi.ByPath("Plant1", "Temp01"), "PUT"},
		{"custom", WriteConfig{Mode: WriteCustom, CustomURL: "/streams/W9/value", RequestMethod: "PATCH"}, webapi.Custom("/streams/W9/value"), "PATCH"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := &fakeServer{result: map[string]any{"ok": true}}
			tt.cfg.Server = server

			payload := map[string]any{"Value": 42.5}
			result, err := NewWriter("w", tt.cfg, nil).Handle(context.Background(), NewMessage("m1", payload))
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"ok": true}, result)

			calls := server.seen()
			require.Len(t, calls, 1)
			assert.Equal(t, "Write", calls[0].Op)
			assert.Equal(t, tt.wantID, calls[0].ID)
			assert.Equal(t, tt.method, calls[0].Method)
			assert.Equal(t, payload, calls[0].Body)
		})
	}
}

func TestWriter_NullPayloadIsWritten(t *testing.T) {
	server := &fakeServer{}
	w := NewWriter("w", WriteConfig{Server: server, Mode: WriteByWebID, WebID: "W1"}, nil)

	_, err := w.Handle(context.Background(), NewMessage("m1", nil))
	require.NoError(t, err)
	require.Len(t, server.seen(), 1)
	assert.Nil(t, server.seen()[0].Body)
}

func TestWriter_RemoteFailurePassesThrough(t *testing.T) {
	remote := errors.New("boom")
	server := &fakeServer{err: remote}
	w := NewWriter("w", WriteConfig{Server: server, Mode: WriteByWebID, WebID: "W1"}, nil)

	_, err := w.Handle(context.Background(), NewMessage("m1", 1))
	assert.Same(t, remote, err)
}

func TestQuerier_Validate(t *testing.T) {
	server := &fakeServer{}

	tests := []struct {
		name string
		cfg  QueryConfig
		code string
	}{
		{"valid webId", QueryConfig{Server: server, Mode: QueryByWebID, WebID: "W1"}, ""},
		{"valid list", QueryConfig{Server: server, Mode: QueryListAllPoints}, ""},
		{"no server", QueryConfig{Mode: QueryListAllPoints}, webapi.CodeAuthMethodMissing},
		{"no mode", QueryConfig{Server: server}, webapi.CodeQueryMethodMissing},
		{"unknown mode", QueryConfig{Server: server, Mode: "everything"}, webapi.CodeQueryMethodMissing},
		{"no webId", QueryConfig{Server: server, Mode: QueryByWebID}, webapi.CodeWebIDMissing},
		{"no database", QueryConfig{Server: server, Mode: QueryByPath, Tag: "t"}, webapi.CodePathElementMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewQuerier("q", tt.cfg, nil).Validate()
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.code, webapi.ConfigCode(err))
		})
	}
}

func TestQuerier_HandleConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  QueryConfig
		code string
	}{
		{"no server", QueryConfig{Mode: QueryListAllPoints}, webapi.CodeClientUndefined},
		{"unknown mode", QueryConfig{Mode: "everything"}, webapi.CodeQueryMethodMissing},
		{"no webId", QueryConfig{Mode: QueryByWebID}, webapi.CodeWebIDMissing},
		{"no tag", QueryConfig{Mode: QueryByPath, Database: "db"}, webapi.CodePathElementMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := &fakeServer{}
			if tt.code != webapi.CodeClientUndefined {
				tt.cfg.Server = server
			}

			_, err := NewQuerier("q", tt.cfg, nil).Handle(context.Background(), Message{})
			require.Error(t, err)
			assert.Equal(t, tt.code, webapi.ConfigCode(err))
			assert.Empty(t, server.seen())
		})
	}
}

func TestQuerier_HandleModes(t *testing.T) {
	tests := []struct {
		name   string
		cfg    QueryConfig
		op     string
		wantID webapi.Identity
	}{
		{"webId", QueryConfig{Mode: QueryByWebID, WebID: "W1", DataType: "recorded"}, "Query", webapi.ByWebID("W1")},
		{"path", QueryConfig{Mode: QueryByPath, Database: "Plant1", Tag: "Temp01"}, "Query", webapi.ByPath("Plant1", "Temp01")},
		{"custom ascending", QueryConfig{Mode: QueryCustom, CustomURL: "/assetdatabases/D1/elements", Order: SortAscending}, "Query",
			webapi.Custom("/assetdatabases/D1/elements?sortField=Name&sortOrder=Ascending")},
		{"custom with query", QueryConfig{Mode: QueryCustom, CustomURL: "/elements?maxCount=5"}, "Query",
			webapi.Custom("/elements?maxCount=5&sortField=Name&sortOrder=Descending")},
		{"asset servers", QueryConfig{Mode: QueryListAllAssetServers}, "ListAllAssetServers", webapi.Identity{}},
		{"data servers", QueryConfig{Mode: QueryListAllDataServers}, "ListAllDataServers", webapi.Identity{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := &fakeServer{result: "ok"}
			tt.cfg.Server = server

			result, err := NewQuerier("q", tt.cfg, nil).Handle(context.Background(), Message{ID: "m1"})
			require.NoError(t, err)
			assert.Equal(t, "ok", result)

			calls := server.seen()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.op, calls[0].Op)
			assert.Equal(t, tt.wantID, calls[0].ID)
			assert.Equal(t, tt.cfg.DataType, calls[0].Opts.DataType)
		})
	}
}

func TestQuerier_HandleFanOut(t *testing.T) {
	server := &fakeServer{list: []any{"a", "b"}}
	q := NewQuerier("q", QueryConfig{Server: server, Mode: QueryListAllAssetDb}, nil)

	result, err := q.Handle(context.Background(), Message{})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, result)

	server = &fakeServer{list: nil, err: errors.New("child failed")}
	q = NewQuerier("q", QueryConfig{Server: server, Mode: QueryListAllPoints}, nil)

	result, err = q.Handle(context.Background(), Message{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "ListAllPoints", server.seen()[0].Op)
}
